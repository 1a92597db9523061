package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/shopspring/decimal"

	"house-dashboard/models"
	"house-dashboard/utils"
)

const (
	colYearBuilt = "yr_built"
	colPrice     = "price"
	colBucket    = "condition_"
	colMeanPrice = "price_MEAN"
)

// Aggregator computes the dashboard's startup aggregates.
type Aggregator struct {
	logger *utils.Logger
}

func NewAggregator(logger *utils.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Summarize computes both aggregates concurrently and bundles them.
func (a *Aggregator) Summarize(ds *models.Dataset) (*models.Summary, error) {
	summary := &models.Summary{TotalHouses: ds.Len()}
	pool := utils.NewWorkerPool(2, 0)
	var errs utils.ErrorGroup

	pool.Submit(func() {
		byYear, err := a.MeanPriceByYear(ds)
		errs.Set(err)
		summary.ByYear = byYear
	})
	pool.Submit(func() {
		byCondition, err := a.MeanPriceByCondition(ds)
		errs.Set(err)
		summary.ByCondition = byCondition
	})
	pool.Wait()

	if err := errs.Err(); err != nil {
		return nil, err
	}
	a.logger.Info("[aggregates] %d houses, %d build years, %d condition buckets",
		summary.TotalHouses, len(summary.ByYear), len(summary.ByCondition))
	return summary, nil
}

// MeanPriceByYear returns one entry per distinct build year, ascending.
func (a *Aggregator) MeanPriceByYear(ds *models.Dataset) ([]models.YearPrice, error) {
	if ds.Len() == 0 {
		return []models.YearPrice{}, nil
	}

	years := make([]int, ds.Len())
	prices := make([]float64, ds.Len())
	ds.Each(func(i int, h models.House) {
		years[i] = h.YearBuilt
		prices[i] = h.Price
	})

	df := dataframe.New(
		series.New(years, series.Int, colYearBuilt),
		series.New(prices, series.Float, colPrice),
	)
	agg := df.GroupBy(colYearBuilt).
		Aggregation([]dataframe.AggregationType{dataframe.Aggregation_MEAN}, []string{colPrice})
	if agg.Err != nil {
		return nil, fmt.Errorf("aggregates: mean price by year: %w", agg.Err)
	}
	agg = agg.Arrange(dataframe.Sort(colYearBuilt))
	if agg.Err != nil {
		return nil, fmt.Errorf("aggregates: sort by year: %w", agg.Err)
	}

	groupYears, err := agg.Col(colYearBuilt).Int()
	if err != nil {
		return nil, fmt.Errorf("aggregates: read years: %w", err)
	}
	means := agg.Col(colMeanPrice).Float()

	out := make([]models.YearPrice, len(groupYears))
	for i := range groupYears {
		out[i] = models.YearPrice{Year: groupYears[i], MeanPrice: means[i]}
	}
	return out, nil
}

// MeanPriceByCondition returns the mean price of each non-empty condition
// bucket in low, medium, high order.
func (a *Aggregator) MeanPriceByCondition(ds *models.Dataset) ([]models.BucketPrice, error) {
	if ds.Len() == 0 {
		return []models.BucketPrice{}, nil
	}

	prices := make([]float64, ds.Len())
	buckets := make([]string, ds.Len())
	ds.Each(func(i int, h models.House) {
		prices[i] = h.Price
		buckets[i] = string(models.BucketFor(h.Condition))
	})

	df := dataframe.New(series.New(prices, series.Float, colPrice)).
		Mutate(series.New(buckets, series.String, colBucket))
	if df.Err != nil {
		return nil, fmt.Errorf("aggregates: add condition bucket: %w", df.Err)
	}

	agg := df.GroupBy(colBucket).
		Aggregation([]dataframe.AggregationType{dataframe.Aggregation_MEAN}, []string{colPrice})
	if agg.Err != nil {
		return nil, fmt.Errorf("aggregates: mean price by condition: %w", agg.Err)
	}

	labels := agg.Col(colBucket).Records()
	means := agg.Col(colMeanPrice).Float()
	byBucket := make(map[models.ConditionBucket]float64, len(labels))
	for i, l := range labels {
		byBucket[models.ConditionBucket(l)] = means[i]
	}

	out := make([]models.BucketPrice, 0, len(models.ConditionBuckets))
	for _, b := range models.ConditionBuckets {
		if mean, ok := byBucket[b]; ok {
			out = append(out, models.BucketPrice{Bucket: b, MeanPrice: mean})
		}
	}
	return out, nil
}

// Print writes a console report of the summary.
func (a *Aggregator) Print(w io.Writer, s *models.Summary) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  HOUSE PRICE INSIGHTS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Houses loaded : \033[1m%d\033[0m\n", s.TotalHouses)
	if n := len(s.ByYear); n > 0 {
		fmt.Fprintf(w, "  Build years   : \033[1m%d–%d\033[0m (%d distinct)\n",
			s.ByYear[0].Year, s.ByYear[n-1].Year, n)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Mean Price per Condition\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(s.ByCondition) == 0 {
		fmt.Fprintf(w, "  No condition data\n")
	}
	for _, b := range s.ByCondition {
		fmt.Fprintf(w, "  %-8s \033[1;32m$%s\033[0m\n", b.Bucket, money(b.MeanPrice))
	}
	fmt.Fprintln(w)

	if top, ok := priciestYear(s.ByYear); ok {
		fmt.Fprintf(w, "\033[1;33m  Priciest Build Year\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  %d : \033[1;31m$%s\033[0m\n", top.Year, money(top.MeanPrice))
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func priciestYear(years []models.YearPrice) (models.YearPrice, bool) {
	if len(years) == 0 {
		return models.YearPrice{}, false
	}
	top := years[0]
	for _, y := range years[1:] {
		if y.MeanPrice > top.MeanPrice {
			top = y
		}
	}
	return top, true
}

// money formats a price to cents.
func money(f float64) string {
	return decimal.NewFromFloat(f).StringFixed(2)
}
