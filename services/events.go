package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"house-dashboard/models"
	"house-dashboard/utils"
)

// ControlID names an interactive control on the dashboard.
type ControlID string

const (
	ControlPriceFilter ControlID = "price-filter"
	ControlScatterAxis ControlID = "x-axis-dropdown"
	ControlBarAxis     ControlID = "x-dropdown"
)

// Figure identifiers updated by the controls.
const (
	TargetMap     = "scatter-plot"
	TargetScatter = "fig3"
	TargetBar     = "fig5"
)

var (
	ErrUnknownControl = errors.New("unknown control")
	ErrInvalidValue   = errors.New("invalid control value")
)

// Event is a single control change carrying exactly one value.
type Event struct {
	Control ControlID       `json:"control"`
	Value   json.RawMessage `json:"value"`
}

// Update is the recomputed figure data for the control's target.
type Update struct {
	Control ControlID `json:"control"`
	Target  string    `json:"target"`
	Figure  any       `json:"figure"`
}

// UpdateFunc recomputes a view from the dataset and the raw control value.
type UpdateFunc func(ds *models.Dataset, value json.RawMessage) (any, error)

// Option is one dropdown entry.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Subscription binds a control to the figure it updates.
type Subscription struct {
	Control ControlID         `json:"id"`
	Target  string            `json:"target"`
	Kind    string            `json:"kind"`
	Default any               `json:"default"`
	Options []Option          `json:"options,omitempty"`
	Min     float64           `json:"min,omitempty"`
	Max     float64           `json:"max,omitempty"`
	Step    float64           `json:"step,omitempty"`
	Marks   map[string]string `json:"marks,omitempty"`
	Update  UpdateFunc        `json:"-"`
}

// Dispatcher routes control events to their update functions. The table is
// filled at construction and only read afterwards, so Dispatch is safe for
// concurrent use.
type Dispatcher struct {
	ds     *models.Dataset
	logger *utils.Logger
	order  []ControlID
	table  map[ControlID]Subscription
}

// NewDispatcher builds a Dispatcher with the dashboard's three controls.
func NewDispatcher(ds *models.Dataset, logger *utils.Logger, extra ...Subscription) *Dispatcher {
	d := &Dispatcher{
		ds:     ds,
		logger: logger,
		table:  make(map[ControlID]Subscription),
	}
	for _, s := range append(DefaultSubscriptions(), extra...) {
		if _, exists := d.table[s.Control]; !exists {
			d.order = append(d.order, s.Control)
		}
		d.table[s.Control] = s
	}
	return d
}

// DefaultSubscriptions returns the price filter, scatter axis and bar axis
// controls with their initial values.
func DefaultSubscriptions() []Subscription {
	marks := make(map[string]string, 10)
	for i := 1; i <= 10; i++ {
		marks[fmt.Sprint(i)] = fmt.Sprintf("%dM", i)
	}

	return []Subscription{
		{
			Control: ControlPriceFilter,
			Target:  TargetMap,
			Kind:    "range-slider",
			Default: []float64{models.DefaultPriceRange.LowMillions, models.DefaultPriceRange.HighMillions},
			Min:     1,
			Max:     10,
			Step:    0.1,
			Marks:   marks,
			Update:  updateMap,
		},
		{
			Control: ControlScatterAxis,
			Target:  TargetScatter,
			Kind:    "dropdown",
			Default: string(models.AxisBedrooms),
			Options: []Option{
				{Label: "Bedrooms", Value: string(models.AxisBedrooms)},
				{Label: "Bathrooms", Value: string(models.AxisBathrooms)},
			},
			Update: updateScatter,
		},
		{
			Control: ControlBarAxis,
			Target:  TargetBar,
			Kind:    "dropdown",
			Default: string(models.AxisWaterfront),
			Options: []Option{
				{Label: "Waterfront", Value: string(models.AxisWaterfront)},
				{Label: "View", Value: string(models.AxisView)},
			},
			Update: updateBar,
		},
	}
}

// Controls lists the subscriptions in registration order.
func (d *Dispatcher) Controls() []Subscription {
	out := make([]Subscription, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.table[id])
	}
	return out
}

// Dispatch runs the update function subscribed to ev.Control.
func (d *Dispatcher) Dispatch(ev Event) (*Update, error) {
	sub, ok := d.table[ev.Control]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownControl, ev.Control)
	}

	start := time.Now()
	fig, err := sub.Update(d.ds, ev.Value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ev.Control, err)
	}
	d.logger.Debug("[events] %s -> %s in %v", ev.Control, sub.Target, time.Since(start))

	return &Update{Control: ev.Control, Target: sub.Target, Figure: fig}, nil
}

// Initial computes every target from its control's default value, the same
// way the page does on first load.
func (d *Dispatcher) Initial() ([]Update, error) {
	updates := make([]Update, 0, len(d.order))
	for _, sub := range d.Controls() {
		raw, err := json.Marshal(sub.Default)
		if err != nil {
			return nil, fmt.Errorf("events: encode default for %s: %w", sub.Control, err)
		}
		u, err := d.Dispatch(Event{Control: sub.Control, Value: raw})
		if err != nil {
			return nil, err
		}
		updates = append(updates, *u)
	}
	return updates, nil
}

// DecodePriceRange parses a [low, high] slider value.
func DecodePriceRange(raw json.RawMessage) (models.PriceRange, error) {
	var v []float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return models.PriceRange{}, fmt.Errorf("%w: want [low, high]: %v", ErrInvalidValue, err)
	}
	if len(v) != 2 {
		return models.PriceRange{}, fmt.Errorf("%w: want 2 numbers, got %d", ErrInvalidValue, len(v))
	}
	return models.PriceRange{LowMillions: v[0], HighMillions: v[1]}, nil
}

func decodeString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: want a string: %v", ErrInvalidValue, err)
	}
	return s, nil
}

func updateMap(ds *models.Dataset, raw json.RawMessage) (any, error) {
	r, err := DecodePriceRange(raw)
	if err != nil {
		return nil, err
	}
	return MapView(ds, r), nil
}

func updateScatter(ds *models.Dataset, raw json.RawMessage) (any, error) {
	s, err := decodeString(raw)
	if err != nil {
		return nil, err
	}
	axis, err := models.ParseScatterAxis(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return FeatureScatter(ds, axis), nil
}

func updateBar(ds *models.Dataset, raw json.RawMessage) (any, error) {
	s, err := decodeString(raw)
	if err != nil {
		return nil, err
	}
	axis, err := models.ParseBarAxis(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return WaterfrontViewBars(ds, axis), nil
}
