package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type SweepTask struct {
	Task
	sweeper     StaleSweeper
	WindowHours int
}

func NewSweepTask(sweeper StaleSweeper, windowHours int) *SweepTask {
	return &SweepTask{
		Task:        NewTask(TaskTypeSweep, "all"),
		sweeper:     sweeper,
		WindowHours: windowHours,
	}
}

func (t *SweepTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result, err := t.sweeper.Sweep(ctx, t.WindowHours)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"expired", result.Expired,
		"low_score", result.LowScore)

	return nil
}
