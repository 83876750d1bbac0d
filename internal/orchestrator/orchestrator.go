// Package orchestrator ties scheduled scrape runs to the catalog: it
// resolves a logical source name to its adapter, runs the extraction,
// and hands the batch to the upsert engine.
package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/eco-catalog/backend/internal/catalog"
	"github.com/eco-catalog/backend/internal/domain"
	"github.com/eco-catalog/backend/internal/scraper"
)

// Upserter reconciles a scrape batch against the catalog
type Upserter interface {
	Upsert(ctx context.Context, batch []domain.RawProduct) (catalog.UpsertStats, error)
}

// Orchestrator runs scrape jobs against the adapter registry
type Orchestrator struct {
	registry *scraper.Registry
	store    Upserter
	logger   *zap.Logger
}

// New creates an orchestrator over an adapter registry and a catalog
func New(registry *scraper.Registry, store Upserter, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{registry: registry, store: store, logger: logger}
}

// RunScrape executes one scrape-and-save run for a source and returns
// the number of items handed to the upsert engine. An unknown source
// is a configuration error, reported and not retried. When the adapter
// fails partway, everything extracted before the failure is still
// persisted and the count reflects it.
func (o *Orchestrator) RunScrape(ctx context.Context, source domain.Source) (int, error) {
	adapter, ok := o.registry.Get(source)
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrUnknownSource, source)
	}

	result, scrapeErr := adapter.Scrape(ctx)
	if result == nil {
		result = &scraper.ScrapeResult{}
	}

	stats, upsertErr := o.store.Upsert(ctx, result.Products)

	o.logger.Info("Products processed",
		zap.String("source", string(source)),
		zap.Int("processed", len(result.Products)),
		zap.Int("upserted", stats.Upserted),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
		zap.Int("cardErrors", len(result.Errors)),
	)

	if scrapeErr != nil {
		return len(result.Products), fmt.Errorf("scrape %s failed: %w", source, scrapeErr)
	}
	if upsertErr != nil {
		return len(result.Products), fmt.Errorf("upsert for %s failed: %w", source, upsertErr)
	}
	return len(result.Products), nil
}
