package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/lgavrilov/newspulse/app/cfg"
	"github.com/lgavrilov/newspulse/app/content"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const sweepInterval = time.Hour

type Scheduler struct {
	ingestor       Ingestor
	sweeper        StaleSweeper
	items          ExtractionStore
	extractor      *content.Extractor
	httpClient     *http.Client
	userAgent      string
	interval       time.Duration
	ingestInterval time.Duration
	windowHours    int
	extractContent bool
	workerCount    int
	nextIngestAt   time.Time
	nextSweepAt    time.Time
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	taskQueue      chan TaskInterface
}

func NewScheduler(ingestor Ingestor, sweeper StaleSweeper, items ExtractionStore,
	extractor *content.Extractor, httpClient *http.Client) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		ingestor:       ingestor,
		sweeper:        sweeper,
		items:          items,
		extractor:      extractor,
		httpClient:     httpClient,
		userAgent:      cfg.UserAgent,
		interval:       time.Duration(cfg.SchedulerInterval) * time.Second,
		ingestInterval: time.Duration(cfg.IngestInterval) * time.Second,
		windowHours:    cfg.RetentionWindowHours,
		extractContent: cfg.ExtractContent,
		workerCount:    cfg.WorkerCount,
		ctx:            ctx,
		cancel:         cancel,
		taskQueue:      make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueDueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueDueTasks()
			}
		}
	}()

}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// enqueueDueTasks enqueues an ingestion pass and a retention sweep whenever
// their intervals have elapsed. The first call after Start enqueues both.
func (s *Scheduler) enqueueDueTasks() {
	now := time.Now().UTC()

	if !now.Before(s.nextIngestAt) {
		s.nextIngestAt = now.Add(s.ingestInterval)

		ingestTask := NewIngestTask(s.ingestor, "")
		if err := s.EnqueueTask(ingestTask); err != nil {
			slog.Warn("Failed to enqueue IngestTask", "error", err)
		}

		if s.extractContent {
			extractTask := NewExtractContentTask(s.items, s.extractor, s.httpClient, s.userAgent)
			if err := s.EnqueueTask(extractTask); err != nil {
				slog.Warn("Failed to enqueue ExtractContentTask", "error", err)
			}
		}
	}

	if !now.Before(s.nextSweepAt) {
		s.nextSweepAt = now.Add(sweepInterval)

		sweepTask := NewSweepTask(s.sweeper, s.windowHours)
		if err := s.EnqueueTask(sweepTask); err != nil {
			slog.Warn("Failed to enqueue SweepTask", "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "scope", task.GetScope(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
