package crawler

import (
	"context"

	"github.com/amosWeiskopf/headsmith/internal/models"
)

// Getter fetches a URL and returns its body. *fetcher.Fetcher satisfies it.
type Getter interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

// Collector defines the one-hop subpage crawl
type Collector interface {
	// Collect fetches seed and returns the titles of its same-host links
	Collect(ctx context.Context, seed string) ([]models.Subpage, error)
}
