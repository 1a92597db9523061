package models

// YearPrice is one point of the mean-price-by-year line.
type YearPrice struct {
	Year      int     `json:"year"`
	MeanPrice float64 `json:"mean_price"`
}

// BucketPrice is one bar of the mean-price-by-condition chart.
type BucketPrice struct {
	Bucket    ConditionBucket `json:"bucket"`
	MeanPrice float64         `json:"mean_price"`
}

// Summary holds the aggregates computed once at startup.
type Summary struct {
	TotalHouses int           `json:"total_houses"`
	ByYear      []YearPrice   `json:"by_year"`
	ByCondition []BucketPrice `json:"by_condition"`
}

// MapPoint is one marker on the price-filtered map.
type MapPoint struct {
	ID         string  `json:"id"`
	Lat        float64 `json:"lat"`
	Long       float64 `json:"long"`
	Price      float64 `json:"price"`
	SqftLiving float64 `json:"sqft_living"`
}

// MapView is the output of the price-filter control.
type MapView struct {
	Range  PriceRange `json:"range"`
	Points []MapPoint `json:"points"`
}

// ScatterPoint carries the x value plus the size and colour encodings.
type ScatterPoint struct {
	X     float64 `json:"x"`
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
	Color float64 `json:"color"`
}

// ScatterView is the output of the x-axis-dropdown control.
type ScatterView struct {
	Axis   ScatterAxis    `json:"axis"`
	Points []ScatterPoint `json:"points"`
}

// BarPoint is one record of the waterfront/view chart.
type BarPoint struct {
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

// LabelMean is the mean price of all records sharing a label.
type LabelMean struct {
	Label     string  `json:"label"`
	Count     int     `json:"count"`
	MeanPrice float64 `json:"mean_price"`
}

// BarView is the output of the x-dropdown control. Points keeps one entry per
// record; Groups summarises them per label.
type BarView struct {
	Axis   BarAxis     `json:"axis"`
	Points []BarPoint  `json:"points"`
	Groups []LabelMean `json:"groups"`
}
