package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"house-dashboard/models"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return records
}

func TestWriteTableYearPrices(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "price_by_year.csv")
	rows := YearPriceRows([]models.YearPrice{{Year: 1955, MeanPrice: 300000}, {Year: 2001, MeanPrice: 900000.5}})

	if err := WriteTable(path, []string{"yr_built", "price"}, rows); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}

	got := readCSV(t, path)
	want := [][]string{
		{"yr_built", "price"},
		{"1955", "300000.00"},
		{"2001", "900000.50"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("csv: got %v, want %v", got, want)
	}
}

func TestCSVWriterAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "price_by_condition.csv")
	w, err := NewCSVWriter(path, []string{"condition_", "price"})
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}

	if err := w.WriteRows(BucketPriceRows([]models.BucketPrice{{Bucket: models.BucketLow, MeanPrice: 1}})); err != nil {
		t.Fatalf("WriteRows: %v", err)
	}
	if err := w.WriteRows(BucketPriceRows([]models.BucketPrice{{Bucket: models.BucketHigh, MeanPrice: 2}})); err != nil {
		t.Fatalf("WriteRows: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got := readCSV(t, path)
	if len(got) != 3 {
		t.Fatalf("rows: got %d, want 3", len(got))
	}
	if got[1][0] != "low" || got[2][0] != "high" {
		t.Errorf("rows: got %v", got)
	}
}
