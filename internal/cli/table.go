package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"revcompare/internal/logging"
	"revcompare/internal/models"
	"revcompare/internal/pipeline"
)

type tableRow struct {
	Quarter string `json:"quarter"`
	Entity  string `json:"entity"`
	Value   string `json:"value"`
	Growth  string `json:"growth"`
}

type valuationJSON struct {
	Entity string `json:"entity"`
	Ratio  string `json:"pe_ratio"`
}

func newTableCmd(app *App) *cobra.Command {
	var line string

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the windowed revenue and P/E tables",
		Long: `Run the same fetch and aggregation as 'chart' and print the result in the
terminal. --line selects another statement line (e.g. "Net Income") for
the first table; the window and ordering rules stay the same.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			logger := app.runLogger()
			ctx := logging.WithLogger(cmd.Context(), logger)

			data, snapshots, err := app.runReport(ctx)
			if err != nil {
				return err
			}

			points := data.Window
			if line != models.LineTotalRevenue {
				points, err = lineWindow(snapshots, line, app.Config.Window)
				if err != nil {
					return err
				}
			}

			rows := buildRows(points)
			valuations := make([]valuationJSON, len(data.Valuations))
			for i, v := range data.Valuations {
				valuations[i] = valuationJSON{Entity: v.Entity, Ratio: FormatRatio(v.Ratio)}
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"line":       line,
					"series":     rows,
					"valuations": valuations,
				})
			}

			colors := make(map[string]string, len(data.Entities))
			for _, e := range data.Entities {
				colors[e.Name] = e.Color
			}

			output.Bold("%s, last %d quarters", line, app.Config.Window)
			table := NewTable(output, "Quarter", "Company", "Value", "QoQ")
			for _, r := range rows {
				table.AddRow(r.Quarter, output.Paint(EntityColor(colors[r.Entity]), r.Entity), r.Value, r.Growth)
			}
			table.Render()
			output.Println()

			output.Bold("P/E Ratio Comparison")
			vt := NewTable(output, "Company", "P/E Ratio")
			for i, v := range valuations {
				ratio := v.Ratio
				if !data.Valuations[i].HasRatio() {
					ratio = output.Paint(color.New(color.Faint), ratio)
				}
				vt.AddRow(output.Paint(EntityColor(colors[v.Entity]), v.Entity), ratio)
			}
			vt.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&line, "line", models.LineTotalRevenue, "statement line to tabulate")
	return cmd
}

// lineWindow shapes another statement line with the same window and
// ordering rules the chart uses for revenue.
func lineWindow(snapshots []models.Snapshot, line string, window int) ([]models.RevenuePoint, error) {
	order := make([]string, 0, len(snapshots))
	series := make([][]models.RevenuePoint, 0, len(snapshots))
	for _, s := range snapshots {
		points, err := pipeline.ShapeLine(s.Statement, s.Entity, line)
		if err != nil {
			return nil, fmt.Errorf("tabulating %q: %w", line, err)
		}
		order = append(order, s.Entity.Name)
		series = append(series, pipeline.Window(points, window))
	}
	return pipeline.Combine(order, series...), nil
}

// buildRows formats points and computes growth against the same entity's
// previous quarter within the window.
func buildRows(points []models.RevenuePoint) []tableRow {
	rows := make([]tableRow, 0, len(points))
	last := make(map[string]models.RevenuePoint)
	for _, p := range points {
		growth := "-"
		if prev, ok := last[p.Entity]; ok {
			growth = FormatGrowth(prev.Value, p.Value)
		}
		last[p.Entity] = p
		rows = append(rows, tableRow{
			Quarter: FormatQuarter(p.Date),
			Entity:  p.Entity,
			Value:   FormatRevenue(p.Value),
			Growth:  growth,
		})
	}
	return rows
}
