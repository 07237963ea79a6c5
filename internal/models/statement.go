package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Statement line labels as exposed by the provider.
const (
	LineTotalRevenue    = "Total Revenue"
	LineGrossProfit     = "Gross Profit"
	LineOperatingIncome = "Operating Income"
	LineNetIncome       = "Net Income"
)

// StatementTable is a quarterly financial statement: one row per line item,
// one column per period end date.
type StatementTable struct {
	Symbol  string
	Columns []time.Time
	Rows    map[string]map[time.Time]decimal.Decimal
}

// NewStatementTable creates an empty statement table for symbol.
func NewStatementTable(symbol string) *StatementTable {
	return &StatementTable{
		Symbol: symbol,
		Rows:   make(map[string]map[time.Time]decimal.Decimal),
	}
}

// Set stores a value and registers its column if it is new.
func (t *StatementTable) Set(line string, date time.Time, value decimal.Decimal) {
	row, ok := t.Rows[line]
	if !ok {
		row = make(map[time.Time]decimal.Decimal)
		t.Rows[line] = row
	}
	row[date] = value

	for _, c := range t.Columns {
		if c.Equal(date) {
			return
		}
	}
	t.Columns = append(t.Columns, date)
	sort.Slice(t.Columns, func(i, j int) bool { return t.Columns[i].Before(t.Columns[j]) })
}

// Row returns the values of a line item and whether the row exists.
func (t *StatementTable) Row(line string) (map[time.Time]decimal.Decimal, bool) {
	row, ok := t.Rows[line]
	return row, ok
}

// Lines returns the line item labels in sorted order.
func (t *StatementTable) Lines() []string {
	lines := make([]string, 0, len(t.Rows))
	for l := range t.Rows {
		lines = append(lines, l)
	}
	sort.Strings(lines)
	return lines
}

// Snapshot is the raw provider output for one entity.
type Snapshot struct {
	Entity     Entity
	Statement  *StatementTable
	TrailingPE decimal.NullDecimal
}
