package catalog

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eco-catalog/backend/internal/domain"
)

// testStore connects to the database named by CATALOG_TEST_DSN; tests
// are skipped when it is unset so the suite runs without Postgres.
func testStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("CATALOG_TEST_DSN")
	if dsn == "" {
		t.Skip("CATALOG_TEST_DSN not set")
	}

	ctx := context.Background()
	store, err := New(ctx, dsn, 4, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(store.Close)

	require.NoError(t, store.EnsureSchema(ctx))
	_, err = store.pool.Exec(ctx, `TRUNCATE products`)
	require.NoError(t, err)
	return store
}

func TestUpsertIdempotence(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	item := domain.RawProduct{
		Title:        "Bamboo Brush",
		ProductLink:  "https://x/p/1",
		SellingPrice: "₹199",
		Seller:       "https://x/",
	}

	stats, err := store.Upsert(ctx, []domain.RawProduct{item})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Upserted)

	first, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, first, 1)
	firstSeen := first[0].ScrapedAt

	time.Sleep(10 * time.Millisecond)

	item.Title = "Bamboo Brush v2"
	item.SellingPrice = "₹149"
	_, err = store.Upsert(ctx, []domain.RawProduct{item})
	require.NoError(t, err)

	second, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, second, 1, "re-upserting the same link must not create a second row")
	assert.Equal(t, "Bamboo Brush v2", second[0].Title)
	assert.Equal(t, "₹149", second[0].SellingPrice)
	assert.True(t, second[0].ScrapedAt.Equal(firstSeen), "scraped_at must keep first-seen time")
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestUpsertRequiredFieldGate(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	stats, err := store.Upsert(ctx, []domain.RawProduct{
		{Title: "", ProductLink: "https://x/p/2"},
		{Title: "No Link"},
		{Title: "Kept", ProductLink: "https://x/p/3"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 1, stats.Upserted)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUnclassifiedAndSetClassification(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, []domain.RawProduct{
		{Title: "Unlabeled", ProductLink: "https://x/p/4"},
		{Title: "Labeled", ProductLink: "https://x/p/5", Category: "soap", SubCategory: "bar soap"},
	})
	require.NoError(t, err)

	pending, err := store.Unclassified(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Unlabeled", pending[0].Title)

	require.NoError(t, store.SetClassification(ctx, pending[0].ID, "personal care", "toothbrush"))

	pending, err = store.Unclassified(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestListFilters(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, []domain.RawProduct{
		{Title: "Neem Soap", ProductLink: "https://a/p/1", Seller: "https://a/", Category: "soap", Description: "gentle cleanser"},
		{Title: "Bamboo Brush", ProductLink: "https://b/p/1", Seller: "https://b/", Category: "personal care"},
	})
	require.NoError(t, err)

	bySeller, err := store.List(ctx, Filter{Seller: "https://a/"})
	require.NoError(t, err)
	require.Len(t, bySeller, 1)
	assert.Equal(t, "Neem Soap", bySeller[0].Title)

	bySearch, err := store.List(ctx, Filter{Search: "cleanser"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)

	byCategory, err := store.List(ctx, Filter{Category: "personal care"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Bamboo Brush", byCategory[0].Title)
}
