package pipeline

import (
	"sort"

	"github.com/rs/zerolog"

	"revcompare/internal/logging"
	"revcompare/internal/models"
)

// Combine concatenates the series and sorts the result by date. Points
// sharing a date are ordered by the position of their entity in order.
// The inputs are not modified.
func Combine(order []string, series ...[]models.RevenuePoint) []models.RevenuePoint {
	rank := make(map[string]int, len(order))
	for i, name := range order {
		rank[name] = i
	}

	var total int
	for _, s := range series {
		total += len(s)
	}
	out := make([]models.RevenuePoint, 0, total)
	for _, s := range series {
		out = append(out, s...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return rank[out[i].Entity] < rank[out[j].Entity]
	})
	return out
}

// Window returns the last n points of a chronologically sorted series,
// or all of them when the series is shorter. The result is a copy.
func Window(points []models.RevenuePoint, n int) []models.RevenuePoint {
	if n < 0 {
		n = 0
	}
	start := 0
	if len(points) > n {
		start = len(points) - n
	}
	out := make([]models.RevenuePoint, len(points)-start)
	copy(out, points[start:])
	return out
}

// Valuations builds one row per snapshot in snapshot order, keeping an
// absent ratio absent.
func Valuations(snapshots []models.Snapshot) []models.ValuationRow {
	rows := make([]models.ValuationRow, 0, len(snapshots))
	for _, s := range snapshots {
		rows = append(rows, models.ValuationRow{
			Entity: s.Entity.Name,
			Ratio:  s.TrailingPE,
		})
	}
	return rows
}

// Aggregator assembles ChartData from fetched snapshots.
type Aggregator struct {
	window int
	logger zerolog.Logger
}

// NewAggregator creates an Aggregator keeping window points per entity.
func NewAggregator(window int, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		window: window,
		logger: logging.WithStage(logger, "aggregate"),
	}
}

// Aggregate shapes every snapshot, windows each entity independently and
// merges the windows into the chart-ready sequence.
func (a *Aggregator) Aggregate(snapshots []models.Snapshot) (*models.ChartData, error) {
	entities := make([]models.Entity, 0, len(snapshots))
	order := make([]string, 0, len(snapshots))
	shaped := make([][]models.RevenuePoint, 0, len(snapshots))
	windows := make([][]models.RevenuePoint, 0, len(snapshots))

	for _, s := range snapshots {
		points, err := Shape(s.Statement, s.Entity)
		if err != nil {
			return nil, err
		}
		w := Window(points, a.window)

		a.logger.Debug().
			Str("entity", s.Entity.Name).
			Int("quarters", len(points)).
			Int("window", len(w)).
			Msg("Revenue series shaped")

		entities = append(entities, s.Entity)
		order = append(order, s.Entity.Name)
		shaped = append(shaped, points)
		windows = append(windows, w)
	}

	data := &models.ChartData{
		Entities:   entities,
		Combined:   Combine(order, shaped...),
		Window:     Combine(order, windows...),
		Valuations: Valuations(snapshots),
	}

	a.logger.Info().
		Int("combined", len(data.Combined)).
		Int("chart_points", len(data.Window)).
		Msg("Chart data assembled")

	return data, nil
}
