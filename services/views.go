package services

import "house-dashboard/models"

const (
	LabelWaterfront    = "Waterfront"
	LabelNonWaterfront = "Non-Waterfront"
	LabelViewFallback  = "Very Bad View"
)

var viewLabels = []string{"Very Bad", "Bad", "Satisfactory", "Good", "Very Good"}

// MapView keeps the houses whose price lies in r, bounds inclusive. It always
// starts from the full dataset, so successive calls never narrow each other.
func MapView(ds *models.Dataset, r models.PriceRange) models.MapView {
	points := make([]models.MapPoint, 0)
	ds.Each(func(_ int, h models.House) {
		if !r.Contains(h.Price) {
			return
		}
		points = append(points, models.MapPoint{
			ID:         h.ID,
			Lat:        h.Lat,
			Long:       h.Long,
			Price:      h.Price,
			SqftLiving: h.SqftLiving,
		})
	})
	return models.MapView{Range: r, Points: points}
}

// FeatureScatter plots price against bedrooms or bathrooms for every house.
func FeatureScatter(ds *models.Dataset, axis models.ScatterAxis) models.ScatterView {
	points := make([]models.ScatterPoint, 0, ds.Len())
	ds.Each(func(_ int, h models.House) {
		points = append(points, models.ScatterPoint{
			X:     axis.Value(h),
			Price: h.Price,
			Size:  h.SqftLiving,
			Color: h.Price,
		})
	})
	return models.ScatterView{Axis: axis, Points: points}
}

// WaterfrontLabel names a waterfront flag.
func WaterfrontLabel(waterfront int) string {
	if waterfront == 1 {
		return LabelWaterfront
	}
	return LabelNonWaterfront
}

// ViewLabel names a view grade; grades outside 0–4 get the fallback label.
func ViewLabel(view int) string {
	if view >= 0 && view < len(viewLabels) {
		return viewLabels[view]
	}
	return LabelViewFallback
}

// BarLabels returns every label axis can produce, in display order.
func BarLabels(axis models.BarAxis) []string {
	if axis == models.AxisView {
		return append(append([]string{}, viewLabels...), LabelViewFallback)
	}
	return []string{LabelNonWaterfront, LabelWaterfront}
}

// WaterfrontViewBars labels every house by waterfront or view and pairs the
// label with its price. No record is dropped or merged; Groups adds the mean
// per label on top.
func WaterfrontViewBars(ds *models.Dataset, axis models.BarAxis) models.BarView {
	label := func(h models.House) string { return WaterfrontLabel(h.Waterfront) }
	if axis == models.AxisView {
		label = func(h models.House) string { return ViewLabel(h.View) }
	}

	points := make([]models.BarPoint, 0, ds.Len())
	sums := make(map[string]float64)
	counts := make(map[string]int)
	ds.Each(func(_ int, h models.House) {
		l := label(h)
		points = append(points, models.BarPoint{Label: l, Price: h.Price})
		sums[l] += h.Price
		counts[l]++
	})

	groups := make([]models.LabelMean, 0, len(counts))
	for _, l := range BarLabels(axis) {
		n := counts[l]
		if n == 0 {
			continue
		}
		groups = append(groups, models.LabelMean{Label: l, Count: n, MeanPrice: sums[l] / float64(n)})
	}

	return models.BarView{Axis: axis, Points: points, Groups: groups}
}
