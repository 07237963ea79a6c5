package cli

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

// Revenue is always rendered as dollars in billions with one decimal.
func TestProperty_RevenueFormatting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	pattern := regexp.MustCompile(`^\$-?\d+\.\dB$`)

	properties.Property("FormatRevenue produces $N.NB", prop.ForAll(
		func(millions int64) bool {
			v := decimal.NewFromInt(millions).Mul(decimal.NewFromInt(1_000_000))
			formatted := FormatRevenue(v)
			if !pattern.MatchString(formatted) {
				t.Logf("unexpected format for %s: %s", v, formatted)
				return false
			}
			return true
		},
		gen.Int64Range(0, 500_000),
	))

	properties.Property("FormatRatio keeps two decimals", prop.ForAll(
		func(hundredths int64) bool {
			r := decimal.NewNullDecimal(decimal.New(hundredths, -2))
			formatted := FormatRatio(r)
			parts := strings.Split(formatted, ".")
			return len(parts) == 2 && len(parts[1]) == 2
		},
		gen.Int64Range(-100_000, 100_000),
	))

	properties.TestingRun(t)
}

// Growth has the sign of the change between quarters.
func TestProperty_GrowthSign(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("FormatGrowth sign matches direction", prop.ForAll(
		func(prev, cur int64) bool {
			g := FormatGrowth(decimal.NewFromInt(prev), decimal.NewFromInt(cur))
			switch {
			case cur > prev:
				return strings.HasPrefix(g, "+")
			case cur < prev:
				return strings.HasPrefix(g, "-")
			default:
				return g == "0.00%"
			}
		},
		gen.Int64Range(1, 1_000_000),
		gen.Int64Range(1, 1_000_000),
	))

	properties.TestingRun(t)
}

func TestFormatHelpers(t *testing.T) {
	if got := FormatRatio(decimal.NullDecimal{}); got != "Data Unavailable" {
		t.Errorf("FormatRatio(absent) = %q", got)
	}
	if got := FormatRatio(decimal.NewNullDecimal(decimal.RequireFromString("45.67"))); got != "45.67" {
		t.Errorf("FormatRatio(45.67) = %q", got)
	}
	if got := FormatRevenue(decimal.NewFromInt(12_000_000_000)); got != "$12.0B" {
		t.Errorf("FormatRevenue = %q", got)
	}
	if got := FormatGrowth(decimal.Zero, decimal.NewFromInt(5)); got != "-" {
		t.Errorf("FormatGrowth from zero = %q", got)
	}
	if got := FormatQuarter(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)); got != "2024-03-31" {
		t.Errorf("FormatQuarter = %q", got)
	}
	if got := FormatDuration(1500 * time.Millisecond); got != "1.5s" {
		t.Errorf("FormatDuration = %q", got)
	}
}
