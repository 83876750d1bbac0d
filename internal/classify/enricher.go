package classify

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eco-catalog/backend/internal/domain"
)

// Store is the catalog surface the enricher needs
type Store interface {
	Unclassified(ctx context.Context, limit int) ([]domain.Product, error)
	SetClassification(ctx context.Context, id uuid.UUID, category, subCategory string) error
}

// Classifier produces a label for one product title
type Classifier interface {
	Classify(ctx context.Context, title string) (domain.Classification, error)
}

// Enricher is the scheduled sweep that labels products still lacking a
// category. It is fully decoupled from scraping and may lag behind
// newly scraped rows by one scheduling interval.
type Enricher struct {
	store     Store
	client    Classifier
	cache     *Cache
	logger    *zap.Logger
	batchSize int
}

// NewEnricher creates the classification sweep job
func NewEnricher(store Store, client Classifier, cache *Cache, batchSize int, logger *zap.Logger) *Enricher {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Enricher{
		store:     store,
		client:    client,
		cache:     cache,
		logger:    logger,
		batchSize: batchSize,
	}
}

// Run labels one batch of unclassified products sequentially. Titles
// whose replies cannot be parsed are left for manual review; call
// failures are left for the next scheduled sweep. Returns the number
// of products labeled.
func (e *Enricher) Run(ctx context.Context) (int, error) {
	products, err := e.store.Unclassified(ctx, e.batchSize)
	if err != nil {
		return 0, err
	}
	if len(products) == 0 {
		e.logger.Debug("No products awaiting classification")
		return 0, nil
	}

	e.logger.Info("Classification sweep starting", zap.Int("pending", len(products)))

	labeled := 0
	for _, p := range products {
		if ctx.Err() != nil {
			return labeled, ctx.Err()
		}

		cls, err := e.cache.Get(ctx, p.Title)
		if err != nil {
			cls, err = e.client.Classify(ctx, p.Title)
			switch {
			case errors.Is(err, domain.ErrParseFailure):
				// Recorded, product stays unlabeled. Not retried here.
				e.logger.Warn("Unparseable classifier reply",
					zap.String("title", p.Title),
					zap.String("raw", cls.Raw),
				)
				continue
			case err != nil:
				e.logger.Error("Classification call failed",
					zap.String("title", p.Title),
					zap.Error(err),
				)
				continue
			}
			e.cache.Set(ctx, p.Title, cls)
		}

		if cls.Category == "" && cls.SubCategory == "" {
			continue
		}

		if err := e.store.SetClassification(ctx, p.ID, cls.Category, cls.SubCategory); err != nil {
			e.logger.Error("Failed to write classification",
				zap.String("productLink", p.ProductLink),
				zap.Error(err),
			)
			continue
		}
		labeled++
	}

	e.logger.Info("Classification sweep completed",
		zap.Int("pending", len(products)),
		zap.Int("labeled", labeled),
	)
	return labeled, nil
}
