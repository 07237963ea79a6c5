package cli

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"revcompare/internal/chart"
)

// FormatRevenue formats a revenue figure in billions of dollars.
func FormatRevenue(v decimal.Decimal) string {
	return chart.FormatBillions(v.InexactFloat64())
}

// FormatRatio formats a valuation ratio to two decimals, or the
// unavailable marker when the provider returned none.
func FormatRatio(r decimal.NullDecimal) string {
	if !r.Valid {
		return chart.UnavailableLabel
	}
	return r.Decimal.StringFixed(2)
}

// FormatQuarter formats a fiscal period end date.
func FormatQuarter(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatGrowth formats the change from prev to cur as a percentage.
// It returns "-" when there is no previous value to compare against.
func FormatGrowth(prev, cur decimal.Decimal) string {
	if prev.IsZero() {
		return "-"
	}
	pct := cur.Sub(prev).Div(prev.Abs()).Mul(decimal.NewFromInt(100))
	return FormatPercent(pct.InexactFloat64())
}

// FormatDuration formats a duration in human-readable form.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	} else if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}
