package cli

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"revcompare/internal/chart"
	"revcompare/internal/logging"
	"revcompare/internal/marketdata"
	"revcompare/internal/models"
	"revcompare/internal/pipeline"
)

// runReport fetches both companies and aggregates them into chart data.
// It returns the raw snapshots too, for commands that show other lines.
func (a *App) runReport(ctx context.Context) (*models.ChartData, []models.Snapshot, error) {
	start := time.Now()
	logger := logging.FromContext(ctx)

	provider, err := a.NewProvider(a.Config.Fetch, logger)
	if err != nil {
		return nil, nil, err
	}

	fetcher := marketdata.NewFetcher(provider, a.Config.Fetch.Concurrent, logger)
	snapshots, err := fetcher.FetchAll(ctx, a.Config.Entities)
	if err != nil {
		return nil, nil, err
	}

	agg := pipeline.NewAggregator(a.Config.Window, logger)
	data, err := agg.Aggregate(snapshots)
	if err != nil {
		return nil, nil, err
	}

	logger.Info().
		Int("points", len(data.Window)).
		Str("elapsed", FormatDuration(time.Since(start))).
		Msg("Report data ready")
	return data, snapshots, nil
}

func (a *App) runLogger() zerolog.Logger {
	return logging.WithRunID(a.Logger, uuid.NewString())
}

func newChartCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Fetch data and draw the revenue and P/E chart",
		Long: `Fetch quarterly revenue and trailing P/E for both companies and draw the
two-panel chart. The figure opens in the system image viewer unless
--output names a PNG file to write instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			logger := app.runLogger()
			ctx := logging.WithLogger(cmd.Context(), logger)

			data, _, err := app.runReport(ctx)
			if err != nil {
				return err
			}

			style, err := chart.NewStyle(app.Config.Chart, app.Config.Entities)
			if err != nil {
				return err
			}
			img, err := chart.Render(data, style)
			if err != nil {
				return err
			}

			dest := app.Config.Chart.Output
			if out, _ := cmd.Flags().GetString("output"); out != "" {
				dest = out
			}
			path, err := chart.NewPresenter(dest, logging.WithStage(logger, "display")).Present(img)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{"path": path})
			}
			output.Success("✓ Chart written to %s", path)
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "write the chart to this PNG file instead of opening a viewer")
	return cmd
}
