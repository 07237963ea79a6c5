package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revcompare/internal/config"
	apperrors "revcompare/internal/errors"
	"revcompare/internal/marketdata"
	"revcompare/internal/models"
)

type fakeProvider struct {
	quarters map[string]int
	pe       map[string]decimal.NullDecimal
}

func (f *fakeProvider) QuarterlyFinancials(ctx context.Context, symbol string) (*models.StatementTable, error) {
	n, ok := f.quarters[symbol]
	if !ok {
		return nil, apperrors.NewFetchError(symbol, "financials", 404, apperrors.ErrSymbolNotFound)
	}
	t := models.NewStatementTable(symbol)
	for i := 0; i < n; i++ {
		d := time.Date(2019, time.Month(3*(i%4)+1), 1, 0, 0, 0, 0, time.UTC).AddDate(i/4, 0, -1)
		t.Set(models.LineTotalRevenue, d, decimal.NewFromInt(int64(5+i)*1_000_000_000))
		t.Set(models.LineNetIncome, d, decimal.NewFromInt(int64(1+i)*100_000_000))
	}
	return t, nil
}

func (f *fakeProvider) TrailingPE(ctx context.Context, symbol string) (decimal.NullDecimal, error) {
	return f.pe[symbol], nil
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	provider := &fakeProvider{
		quarters: map[string]int{"NVDA": 25, "AMD": 15},
		pe:       map[string]decimal.NullDecimal{"NVDA": decimal.NewNullDecimal(decimal.RequireFromString("45.67"))},
	}
	return &App{
		ConfigDir: t.TempDir(),
		Logger:    zerolog.Nop(),
		NewProvider: func(config.FetchConfig, zerolog.Logger) (marketdata.Provider, error) {
			return provider, nil
		},
	}
}

func execute(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTableCommand_JSON(t *testing.T) {
	app := newTestApp(t)

	out, err := execute(t, app, "table", "--json")
	require.NoError(t, err)

	var got struct {
		Line       string          `json:"line"`
		Series     []tableRow      `json:"series"`
		Valuations []valuationJSON `json:"valuations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, models.LineTotalRevenue, got.Line)
	counts := map[string]int{}
	for _, r := range got.Series {
		counts[r.Entity]++
	}
	assert.Equal(t, 20, counts["NVIDIA"])
	assert.Equal(t, 15, counts["AMD"])

	require.Len(t, got.Valuations, 2)
	assert.Equal(t, valuationJSON{Entity: "NVIDIA", Ratio: "45.67"}, got.Valuations[0])
	assert.Equal(t, valuationJSON{Entity: "AMD", Ratio: "Data Unavailable"}, got.Valuations[1])
}

func TestTableCommand_OtherLine(t *testing.T) {
	app := newTestApp(t)

	out, err := execute(t, app, "table", "--json", "--line", models.LineNetIncome)
	require.NoError(t, err)
	assert.Contains(t, out, `"line": "Net Income"`)

	_, err = execute(t, newTestApp(t), "table", "--line", "Free Cash Flow")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMissingLineItem)
}

func TestTableCommand_Text(t *testing.T) {
	out, err := execute(t, newTestApp(t), "table")
	require.NoError(t, err)
	assert.Contains(t, out, "P/E Ratio Comparison")
	assert.Contains(t, out, "45.67")
	assert.Contains(t, out, "Data Unavailable")
	assert.Contains(t, out, "$")
}

func TestChartCommand_WritesPNG(t *testing.T) {
	app := newTestApp(t)
	path := filepath.Join(t.TempDir(), "out.png")

	_, err := execute(t, app, "chart", "--output", path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRootCommand_DefaultsToChart(t *testing.T) {
	app := newTestApp(t)
	path := filepath.Join(t.TempDir(), "default.png")

	_, err := execute(t, app, "-o", path)
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestChartCommand_UnknownSymbolAborts(t *testing.T) {
	app := newTestApp(t)
	app.NewProvider = func(config.FetchConfig, zerolog.Logger) (marketdata.Provider, error) {
		return &fakeProvider{quarters: map[string]int{"NVDA": 4}}, nil
	}
	path := filepath.Join(t.TempDir(), "none.png")

	_, err := execute(t, app, "chart", "-o", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSymbolNotFound)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no chart for a failed run")
}

func TestFailedReport_LeavesOutputToCaller(t *testing.T) {
	for _, args := range [][]string{
		{"chart", "--json", "-o", filepath.Join(t.TempDir(), "x.png")},
		{"table", "--json"},
		{"table"},
	} {
		app := newTestApp(t)
		app.NewProvider = func(config.FetchConfig, zerolog.Logger) (marketdata.Provider, error) {
			return &fakeProvider{quarters: map[string]int{"NVDA": 4}}, nil
		}

		out, err := execute(t, app, args...)
		require.Error(t, err, args)
		assert.Empty(t, out, "the error is reported once, by the caller: %v", args)
	}

	app := newTestApp(t)
	require.NoError(t, os.WriteFile(config.ConfigPath(app.ConfigDir), []byte("window = 0\n"), 0644))
	out, err := execute(t, app, "config", "validate")
	require.Error(t, err)
	assert.Empty(t, out)
}

func TestConfigCommands(t *testing.T) {
	app := newTestApp(t)

	out, err := execute(t, app, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, config.ConfigPath(app.ConfigDir))

	_, err = execute(t, app, "config", "init")
	assert.Error(t, err, "init refuses to overwrite without --force")
	_, err = execute(t, app, "config", "init", "--force")
	assert.NoError(t, err)

	out, err = execute(t, app, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "valid")

	out, err = execute(t, app, "config", "show", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"symbol": "NVDA"`)
}

func TestConfigValidate_Invalid(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, os.WriteFile(config.ConfigPath(app.ConfigDir), []byte("window = 0\n"), 0644))

	_, err := execute(t, app, "config", "validate")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConfigInvalid)

	out, err := execute(t, app, "config", "path")
	require.NoError(t, err, "path works with a broken config")
	assert.Contains(t, out, "config.toml")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, newTestApp(t), "version", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}

func TestBuildRows_Growth(t *testing.T) {
	d := func(m int) time.Time { return time.Date(2024, time.Month(m), 1, 0, 0, 0, 0, time.UTC) }
	rows := buildRows([]models.RevenuePoint{
		{Date: d(1), Entity: "A", Value: decimal.NewFromInt(10)},
		{Date: d(2), Entity: "B", Value: decimal.NewFromInt(4)},
		{Date: d(4), Entity: "A", Value: decimal.NewFromInt(15)},
	})
	require.Len(t, rows, 3)
	assert.Equal(t, "-", rows[0].Growth)
	assert.Equal(t, "-", rows[1].Growth)
	assert.Equal(t, "+50.00%", rows[2].Growth)
}
