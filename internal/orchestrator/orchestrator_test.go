package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eco-catalog/backend/internal/catalog"
	"github.com/eco-catalog/backend/internal/domain"
	"github.com/eco-catalog/backend/internal/scraper"
)

// memStore mirrors the catalog upsert contract: insert-or-overwrite
// keyed by product_link, scraped_at frozen at first insert, items
// missing title or link skipped.
type memStore struct {
	rows map[string]domain.Product
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]domain.Product)}
}

func (m *memStore) Upsert(ctx context.Context, batch []domain.RawProduct) (catalog.UpsertStats, error) {
	var stats catalog.UpsertStats
	for _, item := range batch {
		if item.Title == "" || item.ProductLink == "" {
			stats.Skipped++
			continue
		}
		scrapedAt := time.Now()
		if existing, ok := m.rows[item.ProductLink]; ok {
			scrapedAt = existing.ScrapedAt
		}
		m.rows[item.ProductLink] = domain.Product{
			Title:        item.Title,
			ProductLink:  item.ProductLink,
			SellingPrice: item.SellingPrice,
			Seller:       item.Seller,
			ScrapedAt:    scrapedAt,
		}
		stats.Upserted++
	}
	return stats, nil
}

type stubAdapter struct {
	source   domain.Source
	products []domain.RawProduct
	err      error
}

func (a *stubAdapter) Name() string          { return string(a.source) }
func (a *stubAdapter) Source() domain.Source { return a.source }
func (a *stubAdapter) Scrape(ctx context.Context) (*scraper.ScrapeResult, error) {
	return &scraper.ScrapeResult{
		Products: a.products,
		Total:    len(a.products),
		Scraped:  len(a.products),
	}, a.err
}

func TestRunScrapeUnknownSource(t *testing.T) {
	o := New(scraper.NewRegistry(), newMemStore(), zap.NewNop())

	_, err := o.RunScrape(context.Background(), domain.Source("nope"))
	assert.ErrorIs(t, err, domain.ErrUnknownSource)
}

func TestRunScrapeEndToEnd(t *testing.T) {
	store := newMemStore()
	adapter := &stubAdapter{
		source: domain.SourceEcoyaan,
		products: []domain.RawProduct{
			{Title: "Bamboo Brush", ProductLink: "https://x/p/1", Seller: "https://x/"},
			{Title: "", ProductLink: "https://x/p/2"},
		},
	}
	o := New(scraper.NewRegistry(adapter), store, zap.NewNop())

	processed, err := o.RunScrape(context.Background(), domain.SourceEcoyaan)
	require.NoError(t, err)
	assert.Equal(t, 2, processed)

	// Only the item with both title and link lands.
	require.Len(t, store.rows, 1)
	first := store.rows["https://x/p/1"]
	assert.Equal(t, "Bamboo Brush", first.Title)
	firstSeen := first.ScrapedAt

	// Re-running with updated fields overwrites the same row and
	// keeps the original scraped_at.
	adapter.products = []domain.RawProduct{
		{Title: "Bamboo Brush v2", ProductLink: "https://x/p/1", Seller: "https://x/"},
	}
	_, err = o.RunScrape(context.Background(), domain.SourceEcoyaan)
	require.NoError(t, err)

	require.Len(t, store.rows, 1)
	updated := store.rows["https://x/p/1"]
	assert.Equal(t, "Bamboo Brush v2", updated.Title)
	assert.Equal(t, firstSeen, updated.ScrapedAt)
}

func TestRunScrapePersistsPartialBatchOnFailure(t *testing.T) {
	store := newMemStore()
	adapter := &stubAdapter{
		source: domain.SourceEcohoy,
		products: []domain.RawProduct{
			{Title: "Loofah", ProductLink: "https://x/p/9"},
		},
		err: errors.New("navigation timed out"),
	}
	o := New(scraper.NewRegistry(adapter), store, zap.NewNop())

	processed, err := o.RunScrape(context.Background(), domain.SourceEcohoy)
	require.Error(t, err)
	assert.Equal(t, 1, processed)
	assert.Len(t, store.rows, 1)
}
