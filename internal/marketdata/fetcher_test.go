package marketdata

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "revcompare/internal/errors"
	"revcompare/internal/models"
)

type stubProvider struct {
	mu     sync.Mutex
	calls  []string
	ratios map[string]decimal.NullDecimal
	failOn string
}

func (s *stubProvider) QuarterlyFinancials(ctx context.Context, symbol string) (*models.StatementTable, error) {
	s.mu.Lock()
	s.calls = append(s.calls, symbol)
	s.mu.Unlock()

	if symbol == s.failOn {
		return nil, apperrors.NewFetchError(symbol, "quarterly_financials", 0, apperrors.ErrSymbolNotFound)
	}
	table := models.NewStatementTable(symbol)
	table.Set(models.LineTotalRevenue, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(1))
	return table, nil
}

func (s *stubProvider) TrailingPE(ctx context.Context, symbol string) (decimal.NullDecimal, error) {
	return s.ratios[symbol], nil
}

var testEntities = []models.Entity{
	{Name: "NVIDIA", Symbol: "NVDA", Color: "#76B900"},
	{Name: "AMD", Symbol: "AMD", Color: "#ED1C24"},
}

func TestFetcher_FetchAllKeepsEntityOrder(t *testing.T) {
	for _, concurrent := range []bool{false, true} {
		stub := &stubProvider{ratios: map[string]decimal.NullDecimal{
			"NVDA": {Decimal: decimal.RequireFromString("45.67"), Valid: true},
		}}
		f := NewFetcher(stub, concurrent, zerolog.Nop())

		snaps, err := f.FetchAll(context.Background(), testEntities)
		require.NoError(t, err)
		require.Len(t, snaps, 2)

		assert.Equal(t, "NVIDIA", snaps[0].Entity.Name)
		assert.Equal(t, "NVDA", snaps[0].Statement.Symbol)
		assert.True(t, snaps[0].TrailingPE.Valid)
		assert.Equal(t, "AMD", snaps[1].Entity.Name)
		assert.False(t, snaps[1].TrailingPE.Valid)
		assert.ElementsMatch(t, []string{"NVDA", "AMD"}, stub.calls)
	}
}

func TestFetcher_FailFast(t *testing.T) {
	stub := &stubProvider{failOn: "NVDA"}
	f := NewFetcher(stub, false, zerolog.Nop())

	snaps, err := f.FetchAll(context.Background(), testEntities)
	require.Error(t, err)
	assert.Nil(t, snaps)
	assert.True(t, apperrors.Is(err, apperrors.ErrSymbolNotFound))
	assert.Equal(t, []string{"NVDA"}, stub.calls, "sequential fetch stops at the first failure")
}
