package chart

import (
	"fmt"
	"time"

	"gonum.org/v1/plot"

	"revcompare/internal/models"
)

// UnavailableLabel marks a bar whose ratio the provider did not return.
const UnavailableLabel = "Data Unavailable"

// FormatBillions formats a currency amount in billions, e.g. "$12.3B".
func FormatBillions(v float64) string {
	return fmt.Sprintf("$%.1fB", v/1e9)
}

// Annotation is the text drawn over one valuation bar.
type Annotation struct {
	X       float64
	Y       float64
	Text    string
	Missing bool
}

// Annotations returns one label per valuation row: the ratio to two
// decimals above a present bar, or UnavailableLabel at the base of an
// absent one.
func Annotations(rows []models.ValuationRow) []Annotation {
	out := make([]Annotation, 0, len(rows))
	for i, r := range rows {
		if !r.HasRatio() {
			out = append(out, Annotation{X: float64(i), Y: 0, Text: UnavailableLabel, Missing: true})
			continue
		}
		out = append(out, Annotation{
			X:    float64(i),
			Y:    r.Ratio.Decimal.InexactFloat64(),
			Text: r.Ratio.Decimal.StringFixed(2),
		})
	}
	return out
}

// barHeights maps rows to bar values; an absent ratio is a zero-height bar.
func barHeights(rows []models.ValuationRow) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		if r.HasRatio() {
			out[i] = r.Ratio.Decimal.InexactFloat64()
		}
	}
	return out
}

// billionsTicks labels the default major ticks with FormatBillions.
type billionsTicks struct{}

func (billionsTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = FormatBillions(ticks[i].Value)
		}
	}
	return ticks
}

// quarterTicks places a labelled tick on every quarter start month
// ("Jan 06") between min and max, which are Unix seconds. The step widens
// to keep the axis readable on long ranges.
type quarterTicks struct {
	Format string
}

func (q quarterTicks) Ticks(min, max float64) []plot.Tick {
	from := time.Unix(int64(min), 0).UTC()
	to := time.Unix(int64(max), 0).UTC()

	start := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	for (start.Month()-1)%3 != 0 || start.Before(from) {
		start = start.AddDate(0, 1, 0)
	}

	months := (to.Year()-start.Year())*12 + int(to.Month()-start.Month())
	step := 3
	for months/step > 24 {
		step *= 2
	}

	format := q.Format
	if format == "" {
		format = "Jan 06"
	}

	var ticks []plot.Tick
	for t := start; !t.After(to); t = t.AddDate(0, step, 0) {
		ticks = append(ticks, plot.Tick{Value: float64(t.Unix()), Label: t.Format(format)})
	}
	return ticks
}
