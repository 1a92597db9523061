// Package export writes the dashboard's aggregates and default figures to
// disk so they can be published without running the server.
package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"house-dashboard/charts"
	"house-dashboard/models"
	"house-dashboard/services"
	"house-dashboard/storage"
	"house-dashboard/utils"
)

// File names written by Run.
const (
	YearTableFile      = "mean_price_by_year.csv"
	ConditionTableFile = "mean_price_by_condition.csv"
)

// Exporter renders every figure with the controls at their default values.
type Exporter struct {
	dir            string
	maxConcurrency int
	logger         *utils.Logger
}

func New(dir string, maxConcurrency int, logger *utils.Logger) *Exporter {
	return &Exporter{dir: dir, maxConcurrency: maxConcurrency, logger: logger}
}

type job struct {
	name string
	run  func() error
}

// Run writes both aggregate tables and one PNG per chart kind. Jobs run on a
// worker pool; the first failure is returned after all jobs finish.
func (e *Exporter) Run(summary *models.Summary, d *services.Dispatcher) ([]string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: create %s: %w", e.dir, err)
	}

	initial, err := d.Initial()
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	figures := make(map[string]any, len(initial))
	for _, u := range initial {
		figures[u.Target] = u.Figure
	}

	jobs := []job{
		{YearTableFile, func() error {
			return storage.WriteTable(e.path(YearTableFile), []string{"yr_built", "mean_price"}, storage.YearPriceRows(summary.ByYear))
		}},
		{ConditionTableFile, func() error {
			return storage.WriteTable(e.path(ConditionTableFile), []string{"condition", "mean_price"}, storage.BucketPriceRows(summary.ByCondition))
		}},
	}
	for _, kind := range charts.Kinds {
		name := string(kind) + ".png"
		jobs = append(jobs, job{name, func() error {
			return e.renderChart(name, kind, summary, figures)
		}})
	}

	pool := utils.NewWorkerPool(e.maxConcurrency, 0)
	var errs utils.ErrorGroup
	written := make([]string, len(jobs))

	for i, j := range jobs {
		pool.Submit(func() {
			if err := j.run(); err != nil {
				e.logger.Error("[export] %s: %v", j.name, err)
				errs.Set(fmt.Errorf("export: %s: %w", j.name, err))
				return
			}
			written[i] = e.path(j.name)
			e.logger.Info("[export] wrote %s", written[i])
		})
	}
	pool.Wait()

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return written, nil
}

func (e *Exporter) renderChart(name string, kind charts.Kind, summary *models.Summary, figures map[string]any) error {
	var buf bytes.Buffer
	var err error

	switch kind {
	case charts.KindPriceByYear:
		err = charts.PriceByYear(&buf, summary.ByYear)
	case charts.KindCondition:
		err = charts.ConditionBars(&buf, summary.ByCondition)
	case charts.KindMap:
		err = charts.Map(&buf, figures[services.TargetMap].(models.MapView))
	case charts.KindScatter:
		err = charts.Scatter(&buf, figures[services.TargetScatter].(models.ScatterView))
	case charts.KindBar:
		err = charts.Bars(&buf, figures[services.TargetBar].(models.BarView))
	default:
		err = fmt.Errorf("unknown chart kind %q", kind)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(e.path(name), buf.Bytes(), 0o644)
}

func (e *Exporter) path(name string) string {
	return filepath.Join(e.dir, name)
}
