package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type IngestTask struct {
	Task
	ingestor Ingestor
	SourceID string
}

func NewIngestTask(ingestor Ingestor, sourceID string) *IngestTask {
	scope := sourceID
	if scope == "" {
		scope = "all"
	}
	return &IngestTask{
		Task:     NewTask(TaskTypeIngest, scope),
		ingestor: ingestor,
		SourceID: sourceID,
	}
}

func (t *IngestTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	stats, err := t.ingestor.Run(ctx, t.SourceID)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"scope", t.GetScope(),
		"duration", t.GetDuration(),
		"new", stats.New,
		"rescored", stats.Rescored,
		"total", stats.Total)

	return nil
}
