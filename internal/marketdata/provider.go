// Package marketdata fetches quarterly statements and valuation ratios
// from a market data provider.
package marketdata

import (
	"context"

	"github.com/shopspring/decimal"

	"revcompare/internal/models"
)

// Provider defines the market data operations the report needs.
type Provider interface {
	// QuarterlyFinancials returns the quarterly statement table for symbol.
	QuarterlyFinancials(ctx context.Context, symbol string) (*models.StatementTable, error)

	// TrailingPE returns the trailing price/earnings ratio. An invalid
	// NullDecimal with a nil error means the provider has no value.
	TrailingPE(ctx context.Context, symbol string) (decimal.NullDecimal, error)
}
