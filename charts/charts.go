// Package charts renders dashboard figures to PNG.
package charts

import (
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"house-dashboard/models"
)

// Kind identifies one of the dashboard's figures.
type Kind string

const (
	KindPriceByYear Kind = "price-by-year"
	KindCondition   Kind = "condition"
	KindMap         Kind = "map"
	KindScatter     Kind = "scatter"
	KindBar         Kind = "bar"
)

// Kinds lists every figure in page order.
var Kinds = []Kind{KindPriceByYear, KindMap, KindScatter, KindCondition, KindBar}

var (
	lineColor   = drawing.ColorFromHex("6f83a7")
	barFill     = drawing.Color{R: 158, G: 202, B: 225, A: 153}
	barStroke   = drawing.Color{R: 8, G: 48, B: 107, A: 255}
	background  = chart.Style{FillColor: drawing.ColorWhite, Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}}
	invisible   = chart.Style{StrokeWidth: chart.Disabled}
	mapBoundsX  = [2]float64{-122.52, -121.31}
	mapBoundsY  = [2]float64{47.15, 47.78}
	minDotWidth = 1.5
	maxDotWidth = 9.0
)

// PriceByYear draws the mean price per build year as a line.
func PriceByYear(w io.Writer, points []models.YearPrice) error {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = float64(p.Year)
		ys[i] = p.MeanPrice
	}

	graph := chart.Chart{
		Title:      "Average prices for the year of construction of the properties",
		Width:      1150,
		Height:     300,
		Background: background,
		XAxis:      chart.XAxis{Name: "Year Built", Range: paddedRange(xs, 0), ValueFormatter: integerFormatter},
		YAxis:      chart.YAxis{Name: "Price", Range: paddedRange(ys, 0.05), ValueFormatter: priceFormatter},
		Series: withAnchor(xs, ys, chart.ContinuousSeries{
			Name:    "Mean price",
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: lineColor, StrokeWidth: 2},
		}),
	}
	return render(w, graph)
}

// ConditionBars draws the mean price of each condition bucket.
func ConditionBars(w io.Writer, buckets []models.BucketPrice) error {
	bars := make([]chart.Value, 0, len(buckets))
	for _, b := range buckets {
		bars = append(bars, chart.Value{
			Label: string(b.Bucket),
			Value: b.MeanPrice,
			Style: chart.Style{FillColor: lineColor, StrokeColor: lineColor, StrokeWidth: 1},
		})
	}
	return renderBars(w, "Mean price per condition", bars)
}

// Map draws the price-filtered houses by longitude and latitude. Tiles are
// not drawn. The axes span the county so filtering does not rescale, and
// widen only when a house lies outside it.
func Map(w io.Writer, v models.MapView) error {
	xs := make([]float64, len(v.Points))
	ys := make([]float64, len(v.Points))
	sizes := make([]float64, len(v.Points))
	prices := make([]float64, len(v.Points))
	for i, p := range v.Points {
		xs[i], ys[i] = p.Long, p.Lat
		sizes[i], prices[i] = p.SqftLiving, p.Price
	}
	xr := spanning(mapBoundsX, xs)
	yr := spanning(mapBoundsY, ys)

	graph := chart.Chart{
		Title:      fmt.Sprintf("Location of the houses by price %s", v.Range),
		Width:      620,
		Height:     400,
		Background: background,
		XAxis:      chart.XAxis{Name: "Longitude", Range: xr},
		YAxis:      chart.YAxis{Name: "Latitude", Range: yr},
		Series:     scatterSeries(xs, ys, sizes, prices, xr, yr),
	}
	return render(w, graph)
}

// Scatter draws price against the selected bedrooms/bathrooms axis.
func Scatter(w io.Writer, v models.ScatterView) error {
	xs := make([]float64, len(v.Points))
	ys := make([]float64, len(v.Points))
	sizes := make([]float64, len(v.Points))
	colors := make([]float64, len(v.Points))
	for i, p := range v.Points {
		xs[i], ys[i] = p.X, p.Price
		sizes[i], colors[i] = p.Size, p.Color
	}
	xr := paddedRange(xs, 0.05)
	yr := paddedRange(ys, 0.05)

	graph := chart.Chart{
		Title:      "Relationship between bedrooms or bathrooms per price and sqft living",
		Width:      900,
		Height:     400,
		Background: background,
		XAxis:      chart.XAxis{Name: axisTitle(v.Axis), Range: xr},
		YAxis:      chart.YAxis{Name: "Price", Range: yr, ValueFormatter: priceFormatter},
		Series:     scatterSeries(xs, ys, sizes, colors, xr, yr),
	}
	return render(w, graph)
}

// Bars draws the waterfront/view chart, one bar per label at the label's
// mean price.
func Bars(w io.Writer, v models.BarView) error {
	bars := make([]chart.Value, 0, len(v.Groups))
	for _, g := range v.Groups {
		bars = append(bars, chart.Value{
			Label: g.Label,
			Value: g.MeanPrice,
			Style: chart.Style{FillColor: barFill, StrokeColor: barStroke, StrokeWidth: 1.5},
		})
	}
	return renderBars(w, "Waterfront and View per price", bars)
}

func renderBars(w io.Writer, title string, bars []chart.Value) error {
	if len(bars) == 0 {
		bars = []chart.Value{{Label: "no data", Value: 0}}
	}
	top := 0.0
	for _, b := range bars {
		top = math.Max(top, b.Value)
	}
	if top <= 0 {
		top = 1
	}

	graph := chart.BarChart{
		Title:      title,
		Width:      650,
		Height:     450,
		BarWidth:   60,
		Background: background,
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: 0, Max: top * 1.1},
			ValueFormatter: priceFormatter,
		},
		Bars: bars,
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("charts: render %q: %w", title, err)
	}
	return nil
}

func render(w io.Writer, graph chart.Chart) error {
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("charts: render %q: %w", graph.Title, err)
	}
	return nil
}

func scatterSeries(xs, ys, sizes, colors []float64, xr, yr *chart.ContinuousRange) []chart.Series {
	sizeMin, sizeMax := bounds(sizes)
	colorMin, colorMax := bounds(colors)

	points := chart.ContinuousSeries{
		Name:    "Houses",
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    minDotWidth,
			DotWidthProvider: func(_, _ chart.Range, i int, _, _ float64) float64 {
				return minDotWidth + (maxDotWidth-minDotWidth)*normalize(sizes[i], sizeMin, sizeMax)
			},
			DotColorProvider: func(_, _ chart.Range, i int, _, _ float64) drawing.Color {
				return RdBu(normalize(colors[i], colorMin, colorMax))
			},
		},
	}
	if len(xs) == 0 {
		return []chart.Series{anchor(xr, yr)}
	}
	return []chart.Series{points}
}

// withAnchor returns s, or an invisible placeholder when there is nothing to
// plot; go-chart refuses series without values.
func withAnchor(xs, ys []float64, s chart.ContinuousSeries) []chart.Series {
	if len(xs) == 0 || len(ys) == 0 {
		return []chart.Series{anchor(paddedRange(xs, 0), paddedRange(ys, 0))}
	}
	return []chart.Series{s}
}

func anchor(xr, yr *chart.ContinuousRange) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		XValues: []float64{xr.Min, xr.Max},
		YValues: []float64{yr.Min, yr.Max},
		Style:   invisible,
	}
}

// paddedRange spans vals with pad (as a fraction of the span) on each side.
// Empty or constant inputs still produce a non-zero range.
func paddedRange(vals []float64, pad float64) *chart.ContinuousRange {
	if len(vals) == 0 {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	lo, hi := bounds(vals)
	if lo == hi {
		return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	span := (hi - lo) * pad
	return &chart.ContinuousRange{Min: lo - span, Max: hi + span}
}

// spanning returns frame, stretched to cover every value in vals.
func spanning(frame [2]float64, vals []float64) *chart.ContinuousRange {
	r := &chart.ContinuousRange{Min: frame[0], Max: frame[1]}
	if len(vals) == 0 {
		return r
	}
	lo, hi := bounds(vals)
	r.Min = math.Min(r.Min, lo)
	r.Max = math.Max(r.Max, hi)
	return r
}

func bounds(vals []float64) (lo, hi float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	lo, hi = vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func normalize(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0.5
	}
	return (v - lo) / (hi - lo)
}

func axisTitle(a models.ScatterAxis) string {
	if a == models.AxisBathrooms {
		return "Bathrooms"
	}
	return "Bedrooms"
}

func priceFormatter(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return ""
	}
	if math.Abs(f) >= 1e6 {
		return fmt.Sprintf("%.1fM", f/1e6)
	}
	return fmt.Sprintf("%.0fk", f/1e3)
}

func integerFormatter(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%.0f", f)
}
