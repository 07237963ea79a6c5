package marketdata

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"revcompare/internal/logging"
	"revcompare/internal/models"
)

// Fetcher retrieves the statement and valuation snapshot of each entity.
type Fetcher struct {
	provider   Provider
	concurrent bool
	logger     zerolog.Logger
}

// NewFetcher creates a Fetcher. When concurrent is set the entities are
// fetched in parallel; results keep the entity order either way.
func NewFetcher(provider Provider, concurrent bool, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		provider:   provider,
		concurrent: concurrent,
		logger:     logging.WithStage(logger, "fetch"),
	}
}

// FetchAll fetches a snapshot for every entity. The first failure aborts
// the whole fetch; no retries are attempted.
func (f *Fetcher) FetchAll(ctx context.Context, entities []models.Entity) ([]models.Snapshot, error) {
	snapshots := make([]models.Snapshot, len(entities))

	if !f.concurrent {
		for i, e := range entities {
			snap, err := f.fetchOne(ctx, e)
			if err != nil {
				return nil, err
			}
			snapshots[i] = snap
		}
		return snapshots, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, e := range entities {
		i, e := i, e
		g.Go(func() error {
			snap, err := f.fetchOne(gctx, e)
			if err != nil {
				return err
			}
			snapshots[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, entity models.Entity) (models.Snapshot, error) {
	log := logging.WithSymbol(f.logger, entity.Symbol)
	log.Info().Str("entity", entity.Name).Msg("Fetching quarterly financials")

	table, err := f.provider.QuarterlyFinancials(ctx, entity.Symbol)
	if err != nil {
		return models.Snapshot{}, err
	}

	pe, err := f.provider.TrailingPE(ctx, entity.Symbol)
	if err != nil {
		return models.Snapshot{}, err
	}

	event := log.Info().Int("quarters", len(table.Columns))
	if pe.Valid {
		event = event.Str("trailing_pe", pe.Decimal.StringFixed(2))
	} else {
		event = event.Bool("trailing_pe_missing", true)
	}
	event.Msg("Snapshot fetched")

	return models.Snapshot{
		Entity:     entity,
		Statement:  table,
		TrailingPE: pe,
	}, nil
}
