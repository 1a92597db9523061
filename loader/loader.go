// Package loader fetches the house-sales CSV and turns it into a Dataset.
package loader

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"house-dashboard/models"
	"house-dashboard/utils"
)

// columnTypes pins the type of every column the dashboard reads so that
// type detection cannot turn ids into ints or prices into strings.
var columnTypes = map[string]series.Type{
	"id":          series.String,
	"price":       series.Float,
	"yr_built":    series.Int,
	"bedrooms":    series.Int,
	"bathrooms":   series.Float,
	"sqft_living": series.Float,
	"condition":   series.Int,
	"waterfront":  series.Int,
	"view":        series.Int,
	"lat":         series.Float,
	"long":        series.Float,
}

var requiredColumns = []string{
	"id", "price", "yr_built", "bedrooms", "bathrooms", "sqft_living",
	"condition", "waterfront", "view", "lat", "long",
}

// Loader reads the dataset once at startup. It never retries: a failed load
// is fatal to the caller.
type Loader struct {
	client *http.Client
	logger *utils.Logger
}

// New creates a Loader whose HTTP client verifies TLS certificates normally
// and gives up after timeout.
func New(timeout time.Duration, logger *utils.Logger) *Loader {
	return &Loader{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// WithClient swaps the HTTP client, e.g. for a test server's client.
func (l *Loader) WithClient(c *http.Client) *Loader {
	l.client = c
	return l
}

// Load reads the dataset from an http(s) URL or a local file path.
func (l *Loader) Load(ctx context.Context, location string) (*models.Dataset, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return l.Fetch(ctx, location)
	}

	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("loader: open %q: %w", location, err)
	}
	defer f.Close()

	ds, err := Parse(f)
	if err != nil {
		return nil, err
	}
	l.logger.Info("[loader] Loaded %d houses from %s", ds.Len(), location)
	return ds, nil
}

// Fetch downloads and parses the CSV at url.
func (l *Loader) Fetch(ctx context.Context, url string) (*models.Dataset, error) {
	l.logger.Info("[loader] Fetching dataset from %s", url)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("loader: build request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("loader: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("loader: fetch %s: unexpected status %s", url, resp.Status)
	}

	ds, err := Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	l.logger.Info("[loader] Loaded %d houses in %v", ds.Len(), time.Since(start).Round(time.Millisecond))
	return ds, nil
}

// Parse reads a CSV stream into a Dataset. Every required column must be
// present and every value in it must parse.
func Parse(r io.Reader) (*models.Dataset, error) {
	df := dataframe.ReadCSV(r, dataframe.WithTypes(columnTypes))
	if df.Err != nil {
		return nil, fmt.Errorf("loader: parse csv: %w", df.Err)
	}

	if err := validateColumns(df.Names()); err != nil {
		return nil, err
	}

	houses, err := fromFrame(df)
	if err != nil {
		return nil, err
	}
	return models.NewDataset(houses), nil
}

func validateColumns(names []string) error {
	present := make(map[string]struct{}, len(names))
	for _, n := range names {
		present[n] = struct{}{}
	}

	var missing []string
	for _, req := range requiredColumns {
		if _, ok := present[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("loader: missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

func fromFrame(df dataframe.DataFrame) ([]models.House, error) {
	idCol := df.Col("id")
	ids := idCol.Records()
	missing := idCol.IsNaN()
	for i, id := range ids {
		if missing[i] || id == "" {
			return nil, fmt.Errorf("loader: column \"id\" row %d: missing identifier", i+1)
		}
	}

	floats := make(map[string][]float64)
	for _, name := range []string{"price", "bathrooms", "sqft_living", "lat", "long"} {
		vals, err := floatColumn(df, name)
		if err != nil {
			return nil, err
		}
		floats[name] = vals
	}

	ints := make(map[string][]int)
	for _, name := range []string{"yr_built", "bedrooms", "condition", "waterfront", "view"} {
		vals, err := df.Col(name).Int()
		if err != nil {
			return nil, fmt.Errorf("loader: column %q: %w", name, err)
		}
		ints[name] = vals
	}

	houses := make([]models.House, len(ids))
	for i := range ids {
		houses[i] = models.House{
			ID:         ids[i],
			Price:      floats["price"][i],
			YearBuilt:  ints["yr_built"][i],
			Bedrooms:   ints["bedrooms"][i],
			Bathrooms:  floats["bathrooms"][i],
			SqftLiving: floats["sqft_living"][i],
			Condition:  ints["condition"][i],
			Waterfront: ints["waterfront"][i],
			View:       ints["view"][i],
			Lat:        floats["lat"][i],
			Long:       floats["long"][i],
		}
	}
	return houses, nil
}

func floatColumn(df dataframe.DataFrame, name string) ([]float64, error) {
	vals := df.Col(name).Float()
	for i, v := range vals {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("loader: column %q row %d: missing or non-numeric value", name, i+1)
		}
	}
	return vals, nil
}
