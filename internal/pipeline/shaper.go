// Package pipeline turns raw statement tables into the chart-ready
// revenue sequence and valuation table.
package pipeline

import (
	"sort"
	"time"

	apperrors "revcompare/internal/errors"
	"revcompare/internal/models"
)

// Shape isolates the "Total Revenue" row of table and converts it into
// revenue points tagged with entity, oldest first. A table without the
// row is an error, never an empty series.
func Shape(table *models.StatementTable, entity models.Entity) ([]models.RevenuePoint, error) {
	return ShapeLine(table, entity, models.LineTotalRevenue)
}

// ShapeLine is Shape for an arbitrary statement line. A period column in
// which the line has no value produces no point, so the window counts
// reported quarters only.
func ShapeLine(table *models.StatementTable, entity models.Entity, line string) ([]models.RevenuePoint, error) {
	if table == nil {
		return nil, apperrors.NewMissingLineError(entity.Name, entity.Symbol, line)
	}
	row, ok := table.Row(line)
	if !ok {
		return nil, apperrors.NewMissingLineError(entity.Name, entity.Symbol, line)
	}

	points := make([]models.RevenuePoint, 0, len(row))
	for date, value := range row {
		points = append(points, models.RevenuePoint{
			Date:   normalizeDate(date),
			Value:  value,
			Entity: entity.Name,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	return points, nil
}

// normalizeDate maps a period end to midnight UTC of its calendar day.
func normalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
