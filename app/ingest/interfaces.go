package ingest

import (
	"context"

	"github.com/lgavrilov/newspulse/app/database"
	"github.com/lgavrilov/newspulse/app/feed"
)

// SourceStore is the subset of source persistence the orchestrator needs.
type SourceStore interface {
	Get(ctx context.Context, id string) (*database.Source, error)
	GetEnabled(ctx context.Context) ([]database.Source, error)
	UpdateScrapeStatus(ctx context.Context, id, status string) error
}

// ItemStore is the subset of item persistence the orchestrator needs,
// including the dual-key duplicate lookup.
type ItemStore interface {
	FindByURLOrImage(ctx context.Context, canonicalURL, imageURL string) (*database.Item, error)
	GetByURL(ctx context.Context, canonicalURL string) (*database.Item, error)
	Create(ctx context.Context, item *database.Item) (bool, error)
	UpdateScore(ctx context.Context, id string, score float64) error
	UpdateImage(ctx context.Context, id, imageURL string) error
	Count(ctx context.Context) (int, error)
}

// Store provides item access both standalone and inside a per-source
// transaction.
type Store interface {
	Items() ItemStore
	Transact(ctx context.Context, fn func(items ItemStore) error) error
}

// Fetcher retrieves and parses one feed document.
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]feed.RawEntry, error)
}

// ImageResolver extracts a representative image URL from an article page.
type ImageResolver interface {
	Resolve(ctx context.Context, articleURL string) string
}
