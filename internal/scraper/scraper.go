package scraper

import (
	"context"
	"time"

	"github.com/eco-catalog/backend/internal/domain"
)

// Adapter knows how to extract product listings from one storefront
type Adapter interface {
	// Name returns the human-readable adapter name
	Name() string

	// Source returns the logical source identifier
	Source() domain.Source

	// Scrape runs a full listing extraction
	Scrape(ctx context.Context) (*ScrapeResult, error)
}

// ScrapeResult contains one run's extraction output. Cards that could
// not be processed are counted in Errors; their failure never removes
// the rest of the batch.
type ScrapeResult struct {
	Products  []domain.RawProduct
	Total     int
	Scraped   int
	Errors    []error
	StartTime time.Time
	EndTime   time.Time
}

// Duration returns the scraping duration
func (r *ScrapeResult) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Registry maps source names to adapters. It is built once at startup
// and passed by reference; nothing mutates it afterwards.
type Registry struct {
	adapters map[domain.Source]Adapter
}

// NewRegistry creates a registry over the given adapters
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[domain.Source]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Source()] = a
	}
	return r
}

// Get retrieves an adapter by source
func (r *Registry) Get(source domain.Source) (Adapter, bool) {
	a, ok := r.adapters[source]
	return a, ok
}

// Sources returns all registered source names
func (r *Registry) Sources() []domain.Source {
	sources := make([]domain.Source, 0, len(r.adapters))
	for s := range r.adapters {
		sources = append(sources, s)
	}
	return sources
}
