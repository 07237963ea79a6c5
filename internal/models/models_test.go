package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatementTable_SetKeepsColumnsSortedAndUnique(t *testing.T) {
	tbl := NewStatementTable("NVDA")
	d1 := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2023, 10, 31, 0, 0, 0, 0, time.UTC)

	tbl.Set(LineTotalRevenue, d1, decimal.NewFromInt(22))
	tbl.Set(LineTotalRevenue, d2, decimal.NewFromInt(18))
	tbl.Set(LineNetIncome, d1, decimal.NewFromInt(12))

	assert.Equal(t, []time.Time{d2, d1}, tbl.Columns)
	assert.Equal(t, []string{LineNetIncome, LineTotalRevenue}, tbl.Lines())

	row, ok := tbl.Row(LineTotalRevenue)
	require.True(t, ok)
	assert.True(t, row[d2].Equal(decimal.NewFromInt(18)))

	_, ok = tbl.Row(LineGrossProfit)
	assert.False(t, ok)
}

func TestChartData_PointsFor(t *testing.T) {
	d := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	data := &ChartData{Window: []RevenuePoint{
		{Date: d, Entity: "NVIDIA", Value: decimal.NewFromInt(1)},
		{Date: d, Entity: "AMD", Value: decimal.NewFromInt(2)},
		{Date: d.AddDate(0, 3, 0), Entity: "NVIDIA", Value: decimal.NewFromInt(3)},
	}}

	nv := data.PointsFor("NVIDIA")
	require.Len(t, nv, 2)
	assert.NotEqual(t, data.Window[0].Key(), data.Window[1].Key(), "same date, different entity")
	assert.Empty(t, data.PointsFor("Intel"))
}

func TestValuationRow_HasRatio(t *testing.T) {
	assert.False(t, ValuationRow{Entity: "AMD"}.HasRatio())
	assert.True(t, ValuationRow{Entity: "NVIDIA", Ratio: decimal.NewNullDecimal(decimal.NewFromFloat(45.67))}.HasRatio())
}
