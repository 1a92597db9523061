package models

import "fmt"

// House is one row of the house-sales dataset. Values are never modified
// after the loader builds them.
type House struct {
	ID         string
	Price      float64
	YearBuilt  int
	Bedrooms   int
	Bathrooms  float64
	SqftLiving float64
	Condition  int
	Waterfront int
	View       int
	Lat        float64
	Long       float64
}

// Dataset is the read-only, ordered collection of houses shared by every view.
// It is built once and handed to consumers explicitly.
type Dataset struct {
	houses []House
}

// NewDataset copies the given houses into a new Dataset so later changes to
// the caller's slice cannot leak in.
func NewDataset(houses []House) *Dataset {
	cp := make([]House, len(houses))
	copy(cp, houses)
	return &Dataset{houses: cp}
}

// Len returns the number of houses.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.houses)
}

// At returns the house at position i.
func (d *Dataset) At(i int) House {
	return d.houses[i]
}

// Each calls fn for every house in load order.
func (d *Dataset) Each(fn func(i int, h House)) {
	if d == nil {
		return
	}
	for i, h := range d.houses {
		fn(i, h)
	}
}

// Houses returns a copy of the underlying rows.
func (d *Dataset) Houses() []House {
	if d == nil {
		return nil
	}
	cp := make([]House, len(d.houses))
	copy(cp, d.houses)
	return cp
}

// ConditionBucket is the three-level grouping of the ordinal condition field.
type ConditionBucket string

const (
	BucketLow    ConditionBucket = "low"
	BucketMedium ConditionBucket = "medium"
	BucketHigh   ConditionBucket = "high"
)

// ConditionBuckets lists the buckets in display order.
var ConditionBuckets = []ConditionBucket{BucketLow, BucketMedium, BucketHigh}

// BucketFor maps a condition value to its bucket. Anything that is not 2, 3
// or 4 lands in "high", including 1.
func BucketFor(condition int) ConditionBucket {
	switch condition {
	case 2:
		return BucketLow
	case 3, 4:
		return BucketMedium
	default:
		return BucketHigh
	}
}

// PriceRange is the map slider selection, in millions.
type PriceRange struct {
	LowMillions  float64 `json:"low"`
	HighMillions float64 `json:"high"`
}

// DefaultPriceRange is the slider's initial value.
var DefaultPriceRange = PriceRange{LowMillions: 2, HighMillions: 10}

// Contains reports whether price lies inside the range, bounds included.
func (r PriceRange) Contains(price float64) bool {
	return price >= r.LowMillions*1e6 && price <= r.HighMillions*1e6
}

func (r PriceRange) String() string {
	return fmt.Sprintf("[%gM, %gM]", r.LowMillions, r.HighMillions)
}

// ScatterAxis selects the X field of the bedrooms/bathrooms scatter.
type ScatterAxis string

const (
	AxisBedrooms  ScatterAxis = "bedrooms"
	AxisBathrooms ScatterAxis = "bathrooms"
)

// ParseScatterAxis validates a dropdown value.
func ParseScatterAxis(s string) (ScatterAxis, error) {
	switch ScatterAxis(s) {
	case AxisBedrooms, AxisBathrooms:
		return ScatterAxis(s), nil
	}
	return "", fmt.Errorf("unknown scatter axis %q", s)
}

// Value reads the selected field from h.
func (a ScatterAxis) Value(h House) float64 {
	if a == AxisBathrooms {
		return h.Bathrooms
	}
	return float64(h.Bedrooms)
}

// BarAxis selects the category of the waterfront/view bar chart.
type BarAxis string

const (
	AxisWaterfront BarAxis = "waterfront"
	AxisView       BarAxis = "view"
)

// ParseBarAxis validates a dropdown value.
func ParseBarAxis(s string) (BarAxis, error) {
	switch BarAxis(s) {
	case AxisWaterfront, AxisView:
		return BarAxis(s), nil
	}
	return "", fmt.Errorf("unknown bar axis %q", s)
}
