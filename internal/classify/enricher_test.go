package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eco-catalog/backend/internal/domain"
)

type fakeStore struct {
	pending []domain.Product
	labels  map[uuid.UUID][2]string
	setErr  error
}

func (f *fakeStore) Unclassified(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit < len(f.pending) {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeStore) SetClassification(ctx context.Context, id uuid.UUID, category, subCategory string) error {
	if f.setErr != nil {
		return f.setErr
	}
	if f.labels == nil {
		f.labels = make(map[uuid.UUID][2]string)
	}
	f.labels[id] = [2]string{category, subCategory}
	return nil
}

type fakeClassifier struct {
	results map[string]domain.Classification
	errs    map[string]error
	calls   int
}

func (f *fakeClassifier) Classify(ctx context.Context, title string) (domain.Classification, error) {
	f.calls++
	if err, ok := f.errs[title]; ok {
		return domain.Classification{Raw: "raw:" + title}, err
	}
	return f.results[title], nil
}

func product(title string) domain.Product {
	return domain.Product{ID: uuid.New(), Title: title, ProductLink: "https://x/p/" + title}
}

func TestEnricherLabelsPendingProducts(t *testing.T) {
	p1, p2 := product("Bamboo Brush"), product("Neem Soap")
	store := &fakeStore{pending: []domain.Product{p1, p2}}
	client := &fakeClassifier{results: map[string]domain.Classification{
		"Bamboo Brush": {Category: "personal care", SubCategory: "toothbrush"},
		"Neem Soap":    {Category: "personal care", SubCategory: "soap"},
	}}

	e := NewEnricher(store, client, nil, 50, zap.NewNop())
	labeled, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, labeled)
	assert.Equal(t, [2]string{"personal care", "toothbrush"}, store.labels[p1.ID])
	assert.Equal(t, [2]string{"personal care", "soap"}, store.labels[p2.ID])
}

func TestEnricherContinuesPastFailures(t *testing.T) {
	p1, p2, p3 := product("Good One"), product("Garbled"), product("Unreachable")
	store := &fakeStore{pending: []domain.Product{p2, p3, p1}}
	client := &fakeClassifier{
		results: map[string]domain.Classification{
			"Good One": {Category: "soap", SubCategory: "bar soap"},
		},
		errs: map[string]error{
			"Garbled":     domain.ErrParseFailure,
			"Unreachable": errors.New("connection refused"),
		},
	}

	e := NewEnricher(store, client, nil, 50, zap.NewNop())
	labeled, err := e.Run(context.Background())
	require.NoError(t, err)

	// Parse and call failures skip the product; the sweep still
	// finishes the batch.
	assert.Equal(t, 1, labeled)
	assert.Equal(t, 3, client.calls)
	assert.Contains(t, store.labels, p1.ID)
	assert.NotContains(t, store.labels, p2.ID)
	assert.NotContains(t, store.labels, p3.ID)
}

func TestEnricherNoPendingWork(t *testing.T) {
	store := &fakeStore{}
	client := &fakeClassifier{}

	e := NewEnricher(store, client, nil, 50, zap.NewNop())
	labeled, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, labeled)
	assert.Zero(t, client.calls)
}

func TestEnricherWriteFailureIsRowLevel(t *testing.T) {
	p1 := product("Bamboo Brush")
	store := &fakeStore{pending: []domain.Product{p1}, setErr: errors.New("constraint violation")}
	client := &fakeClassifier{results: map[string]domain.Classification{
		"Bamboo Brush": {Category: "personal care", SubCategory: "toothbrush"},
	}}

	e := NewEnricher(store, client, nil, 50, zap.NewNop())
	labeled, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, labeled)
}
