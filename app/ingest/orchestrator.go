package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lgavrilov/newspulse/app/database"
	"github.com/lgavrilov/newspulse/app/feed"
	"github.com/lgavrilov/newspulse/app/scoring"
)

const (
	statusSuccess     = "Success"
	statusErrorPrefix = "Error: "
)

// Stats aggregates the outcome of one ingestion run.
type Stats struct {
	New      int `json:"new"`
	Rescored int `json:"rescored"`
	Total    int `json:"total"`
}

// Orchestrator drives the ingestion pipeline: per enabled source it fetches
// the feed, classifies, scores and deduplicates each entry, batch-resolves
// missing images, and commits. Sources are processed sequentially; a
// source's failure never aborts the run.
type Orchestrator struct {
	sources      SourceStore
	store        Store
	fetcher      Fetcher
	resolver     ImageResolver
	engine       *scoring.Engine
	imageWorkers int
	now          func() time.Time
}

func NewOrchestrator(sources SourceStore, store Store, fetcher Fetcher,
	resolver ImageResolver, engine *scoring.Engine, imageWorkers int) *Orchestrator {
	if imageWorkers <= 0 {
		imageWorkers = 1
	}
	return &Orchestrator{
		sources:      sources,
		store:        store,
		fetcher:      fetcher,
		resolver:     resolver,
		engine:       engine,
		imageWorkers: imageWorkers,
		now:          time.Now,
	}
}

// Run ingests the given source, or all enabled sources when sourceID is
// empty, and returns aggregate statistics.
func (o *Orchestrator) Run(ctx context.Context, sourceID string) (Stats, error) {
	var stats Stats

	sources, err := o.selectSources(ctx, sourceID)
	if err != nil {
		return stats, err
	}

	for _, source := range sources {
		o.processSource(ctx, source, &stats)
	}

	total, err := o.store.Items().Count(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to get item count: %w", err)
	}
	stats.Total = total

	slog.Info("Ingestion run completed",
		"sources", len(sources),
		"new", stats.New,
		"rescored", stats.Rescored,
		"total", stats.Total)

	return stats, nil
}

func (o *Orchestrator) selectSources(ctx context.Context, sourceID string) ([]database.Source, error) {
	if sourceID != "" {
		source, err := o.sources.Get(ctx, sourceID)
		if err != nil {
			return nil, fmt.Errorf("failed to get source: %w", err)
		}
		if source == nil {
			return nil, fmt.Errorf("source %s not found", sourceID)
		}
		return []database.Source{*source}, nil
	}

	sources, err := o.sources.GetEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get enabled sources: %w", err)
	}
	return sources, nil
}

func (o *Orchestrator) processSource(ctx context.Context, source database.Source, stats *Stats) {
	slog.Debug("Fetching feed", "source", source.Name, "url", source.FeedURL)

	entries, err := o.fetcher.Fetch(ctx, source.FeedURL)
	if err != nil {
		o.recordFetchFailure(ctx, source, err)
		return
	}

	if err := o.sources.UpdateScrapeStatus(ctx, source.ID, statusSuccess); err != nil {
		slog.Warn("Failed to update scrape status", "source", source.Name, "error", err)
	}

	var pendingImages []string

	err = o.store.Transact(ctx, func(items ItemStore) error {
		for _, entry := range entries {
			queued, err := o.processEntry(ctx, items, source, entry, stats)
			if err != nil {
				return err
			}
			if queued {
				pendingImages = append(pendingImages, entry.Link)
			}
		}
		return nil
	})
	if err != nil {
		slog.Error("Failed to store entries", "source", source.Name, "error", err)
		if statusErr := o.sources.UpdateScrapeStatus(ctx, source.ID, statusErrorPrefix+err.Error()); statusErr != nil {
			slog.Warn("Failed to update scrape status", "source", source.Name, "error", statusErr)
		}
		return
	}

	if len(pendingImages) > 0 {
		o.resolvePendingImages(ctx, source, pendingImages)
	}
}

// processEntry validates, dedupes and scores one entry. It reports whether
// the entry should join the source's image resolution batch.
func (o *Orchestrator) processEntry(ctx context.Context, items ItemStore,
	source database.Source, entry feed.RawEntry, stats *Stats) (bool, error) {

	if entry.Title == "" || entry.Link == "" {
		slog.Debug("Skipping entry with missing fields",
			"source", source.Name, "title", entry.Title, "link", entry.Link)
		return false, nil
	}

	existing, err := items.FindByURLOrImage(ctx, entry.Link, entry.ImageURL)
	if err != nil {
		return false, err
	}

	now := o.now().UTC()

	if existing == nil {
		item := &database.Item{
			Title:        entry.Title,
			CanonicalURL: entry.Link,
			ImageURL:     entry.ImageURL,
			SourceID:     source.ID,
			FirstSeenAt:  now,
			FeedRank:     entry.Rank,
		}
		item.Score = o.engine.Score(scoring.Input{
			Title:    entry.Title,
			URL:      entry.Link,
			AgeHours: 0,
			Points:   entry.Points,
			Comments: entry.Comments,
		})

		created, err := items.Create(ctx, item)
		if err != nil {
			return false, err
		}
		if !created {
			// Lost a uniqueness race: the conflicting write is dropped in
			// favor of the existing record.
			slog.Debug("Dropped conflicting insert", "url", entry.Link)
			return false, nil
		}

		stats.New++
		slog.Debug("Added item", "title", entry.Title, "score", item.Score, "image", entry.ImageURL)
		return entry.ImageURL == "", nil
	}

	// Re-observation: recompute the score against the current age and
	// engagement; write only when the value actually changes. FirstSeenAt
	// is never touched.
	newScore := o.engine.Score(scoring.Input{
		Title:    existing.Title,
		URL:      existing.CanonicalURL,
		AgeHours: existing.AgeHours(now),
		Points:   entry.Points,
		Comments: entry.Comments,
	})
	if newScore != existing.Score {
		if err := items.UpdateScore(ctx, existing.ID, newScore); err != nil {
			return false, err
		}
		stats.Rescored++
	}

	if existing.ImageURL == "" && entry.ImageURL != "" {
		if err := items.UpdateImage(ctx, existing.ID, entry.ImageURL); err != nil {
			return false, err
		}
	}

	return entry.ImageURL == "", nil
}

func (o *Orchestrator) recordFetchFailure(ctx context.Context, source database.Source, err error) {
	status := statusErrorPrefix + err.Error()

	var fetchErr *feed.FetchError
	if errors.As(err, &fetchErr) {
		status = statusErrorPrefix + fetchErr.Err.Error()
	}

	slog.Warn("Feed fetch failed", "source", source.Name, "url", source.FeedURL, "error", err)

	if statusErr := o.sources.UpdateScrapeStatus(ctx, source.ID, status); statusErr != nil {
		slog.Warn("Failed to update scrape status", "source", source.Name, "error", statusErr)
	}
}

// resolvePendingImages fans the source's missing-image batch out through a
// bounded worker pool, joins it, and writes resolved images onto the
// corresponding items. Resolution failures leave the image unset.
func (o *Orchestrator) resolvePendingImages(ctx context.Context, source database.Source, urls []string) {
	slog.Debug("Resolving images", "source", source.Name, "count", len(urls))

	resolved := make([]string, len(urls))
	sem := make(chan struct{}, o.imageWorkers)
	var wg sync.WaitGroup

	for i, articleURL := range urls {
		wg.Add(1)
		go func(i int, articleURL string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			resolved[i] = o.resolver.Resolve(ctx, articleURL)
		}(i, articleURL)
	}
	wg.Wait()

	items := o.store.Items()
	for i, articleURL := range urls {
		imageURL := resolved[i]
		if imageURL == "" {
			continue
		}

		item, err := items.GetByURL(ctx, articleURL)
		if err != nil {
			slog.Warn("Failed to look up item for image update", "url", articleURL, "error", err)
			continue
		}
		if item == nil {
			continue
		}

		if err := items.UpdateImage(ctx, item.ID, imageURL); err != nil {
			slog.Warn("Failed to update item image", "url", articleURL, "error", err)
			continue
		}
		slog.Debug("Updated item image", "title", item.Title, "image", imageURL)
	}
}
