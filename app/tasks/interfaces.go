package tasks

import (
	"context"
	"time"

	"github.com/lgavrilov/newspulse/app/database"
	"github.com/lgavrilov/newspulse/app/ingest"
	"github.com/lgavrilov/newspulse/app/retention"
)

// TaskSchedulerInterface is used by the main application to manage
// background task processing.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// Ingestor runs an ingestion pass over one source, or all enabled sources
// when sourceID is empty.
type Ingestor interface {
	Run(ctx context.Context, sourceID string) (ingest.Stats, error)
}

// StaleSweeper removes items outside the retention window.
type StaleSweeper interface {
	Sweep(ctx context.Context, windowHours int) (retention.Result, error)
}

// ExtractionStore is the subset of the item repository content extraction
// needs.
type ExtractionStore interface {
	ItemsForExtraction(ctx context.Context, limit int) ([]database.Item, error)
	UpdateContent(ctx context.Context, id, content string, extractedAt time.Time) error
}
