// Package models provides domain models for the revenue comparison report.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entity is one of the companies being compared.
type Entity struct {
	Name   string `mapstructure:"name" json:"name"`
	Symbol string `mapstructure:"symbol" json:"symbol"`
	Color  string `mapstructure:"color" json:"color"` // #RRGGBB
}

// SeriesKey identifies a revenue point by reporting date and entity.
// Two entities reporting on the same date have distinct keys.
type SeriesKey struct {
	Date   time.Time
	Entity string
}

// RevenuePoint is one quarterly revenue figure for an entity.
type RevenuePoint struct {
	Date   time.Time
	Value  decimal.Decimal
	Entity string
}

// Key returns the compound (date, entity) key of the point.
func (p RevenuePoint) Key() SeriesKey {
	return SeriesKey{Date: p.Date, Entity: p.Entity}
}

// ValuationRow is the trailing P/E snapshot for one entity.
// An invalid Ratio means the provider had no value.
type ValuationRow struct {
	Entity string
	Ratio  decimal.NullDecimal
}

// HasRatio reports whether the provider returned a ratio.
func (r ValuationRow) HasRatio() bool {
	return r.Ratio.Valid
}

// ChartData is everything the renderer needs for one run.
type ChartData struct {
	Entities []Entity

	// Combined is every shaped point of every entity, sorted by date.
	Combined []RevenuePoint

	// Window is the chart-ready sequence: the last N points of each
	// entity, merged and sorted by date.
	Window []RevenuePoint

	Valuations []ValuationRow
}

// PointsFor returns the window points of one entity in date order.
func (d *ChartData) PointsFor(entity string) []RevenuePoint {
	var out []RevenuePoint
	for _, p := range d.Window {
		if p.Entity == entity {
			out = append(out, p)
		}
	}
	return out
}
