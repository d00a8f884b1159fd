package api

import (
	"context"
	"time"

	"github.com/lgavrilov/newspulse/app/database"
	"github.com/lgavrilov/newspulse/app/tasks"
)

// SourceStore is the subset of the source repository the API reads from.
type SourceStore interface {
	List(ctx context.Context) ([]database.Source, error)
	Count(ctx context.Context) (int, error)
	CountEnabled(ctx context.Context) (int, error)
}

// ItemStore is the subset of the item repository the API reads from.
type ItemStore interface {
	TopByScore(ctx context.Context, limit int) ([]database.Item, error)
	Count(ctx context.Context) (int, error)
}

var _ SourceStore = (*database.SourceRepository)(nil)
var _ ItemStore = (*database.ItemRepository)(nil)

type Handler struct {
	sources   SourceStore
	items     ItemStore
	ingestor  tasks.Ingestor
	sweeper   tasks.StaleSweeper
	startedAt time.Time
	version   string
}
