package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Expected no error opening database, got: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Expected no error running migrations, got: %v", err)
	}

	return db
}

func createTestSource(t *testing.T, db *DB) string {
	t.Helper()

	repo := NewSourceRepository(db)
	id, err := repo.Upsert(context.Background(), &Source{
		Name:    "Test Source",
		FeedURL: "https://feeds.example.com/rss",
		Kind:    "rss",
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("Expected no error creating source, got: %v", err)
	}
	return id
}

func TestItemCreateAndLookup(t *testing.T) {
	db := openTestDB(t)
	sourceID := createTestSource(t, db)
	repo := NewItemRepository(db)
	ctx := context.Background()

	firstSeen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	item := &Item{
		Title:        "Major Earthquake Strikes",
		CanonicalURL: "https://example.com/quake",
		ImageURL:     "https://example.com/quake.jpg",
		SourceID:     sourceID,
		FirstSeenAt:  firstSeen,
		Score:        14.5,
		FeedRank:     3,
	}

	inserted, err := repo.Create(ctx, item)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !inserted {
		t.Fatal("Expected item to be inserted")
	}
	if item.ID == "" {
		t.Error("Expected generated item ID")
	}

	found, err := repo.GetByURL(ctx, "https://example.com/quake")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if found == nil {
		t.Fatal("Expected item to be found")
	}
	if found.Title != "Major Earthquake Strikes" {
		t.Errorf("Expected title to round-trip, got %q", found.Title)
	}
	if found.Score != 14.5 {
		t.Errorf("Expected score 14.5, got %.4f", found.Score)
	}
	if found.FeedRank != 3 {
		t.Errorf("Expected feed rank 3, got %d", found.FeedRank)
	}
	if !found.FirstSeenAt.Equal(firstSeen) {
		t.Errorf("Expected first seen %v, got %v", firstSeen, found.FirstSeenAt)
	}
}

func TestItemCreateConflictDropped(t *testing.T) {
	db := openTestDB(t)
	sourceID := createTestSource(t, db)
	repo := NewItemRepository(db)
	ctx := context.Background()

	first := &Item{Title: "First", CanonicalURL: "https://example.com/a", SourceID: sourceID, Score: 5}
	if _, err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	duplicate := &Item{Title: "Duplicate", CanonicalURL: "https://example.com/a", SourceID: sourceID, Score: 9}
	inserted, err := repo.Create(ctx, duplicate)
	if err != nil {
		t.Fatalf("Expected no error on conflicting insert, got: %v", err)
	}
	if inserted {
		t.Error("Expected conflicting insert to be dropped")
	}

	found, err := repo.GetByURL(ctx, "https://example.com/a")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if found.Title != "First" {
		t.Errorf("Expected original item to survive, got title %q", found.Title)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 item, got %d", count)
	}
}

func TestItemFindByURLOrImage(t *testing.T) {
	db := openTestDB(t)
	sourceID := createTestSource(t, db)
	repo := NewItemRepository(db)
	ctx := context.Background()

	item := &Item{
		Title:        "Original Story",
		CanonicalURL: "https://example.com/a",
		ImageURL:     "https://cdn.example.com/shared.jpg",
		SourceID:     sourceID,
		Score:        7,
	}
	if _, err := repo.Create(ctx, item); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	noImage := &Item{Title: "No Image", CanonicalURL: "https://example.com/plain", SourceID: sourceID, Score: 3}
	if _, err := repo.Create(ctx, noImage); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	byURL, err := repo.FindByURLOrImage(ctx, "https://example.com/a", "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if byURL == nil || byURL.Title != "Original Story" {
		t.Error("Expected match by canonical URL")
	}

	byImage, err := repo.FindByURLOrImage(ctx, "https://mirror.example.com/a", "https://cdn.example.com/shared.jpg")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if byImage == nil || byImage.Title != "Original Story" {
		t.Error("Expected match by image URL")
	}

	// An incoming entry without an image must never match stored items that
	// also lack one.
	miss, err := repo.FindByURLOrImage(ctx, "https://example.com/other", "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if miss != nil {
		t.Errorf("Expected no match, got item %q", miss.Title)
	}
}

func TestItemUpdateScoreAndImage(t *testing.T) {
	db := openTestDB(t)
	sourceID := createTestSource(t, db)
	repo := NewItemRepository(db)
	ctx := context.Background()

	item := &Item{Title: "Story", CanonicalURL: "https://example.com/a", SourceID: sourceID, Score: 5}
	if _, err := repo.Create(ctx, item); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if err := repo.UpdateScore(ctx, item.ID, 12.25); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := repo.UpdateImage(ctx, item.ID, "https://example.com/late.jpg"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	found, err := repo.GetByURL(ctx, "https://example.com/a")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if found.Score != 12.25 {
		t.Errorf("Expected score 12.25, got %.4f", found.Score)
	}
	if found.ImageURL != "https://example.com/late.jpg" {
		t.Errorf("Expected updated image, got %q", found.ImageURL)
	}
}

func TestItemTopByScore(t *testing.T) {
	db := openTestDB(t)
	sourceID := createTestSource(t, db)
	repo := NewItemRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	for i, score := range []float64{5, 25, 15} {
		item := &Item{
			Title:        "Story",
			CanonicalURL: "https://example.com/" + string(rune('a'+i)),
			SourceID:     sourceID,
			FirstSeenAt:  now.Add(time.Duration(i) * time.Minute),
			Score:        score,
		}
		if _, err := repo.Create(ctx, item); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	}

	top, err := repo.TopByScore(ctx, 2)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(top))
	}
	if top[0].Score != 25 || top[1].Score != 15 {
		t.Errorf("Expected scores [25 15], got [%.0f %.0f]", top[0].Score, top[1].Score)
	}
}

func TestItemSweepStale(t *testing.T) {
	db := openTestDB(t)
	sourceID := createTestSource(t, db)
	repo := NewItemRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	cutoff := now.Add(-48 * time.Hour)

	seed := []struct {
		url   string
		age   time.Duration
		score float64
	}{
		{"https://example.com/old-good", 49 * time.Hour, 5},   // expired only
		{"https://example.com/fresh-zero", time.Hour, 0},      // low score only
		{"https://example.com/old-zero", 50 * time.Hour, 0},   // both predicates
		{"https://example.com/fresh-good", time.Hour, 8},      // retained
		{"https://example.com/boundary", 48 * time.Hour, 0.5}, // exactly at cutoff, retained
	}
	for _, s := range seed {
		item := &Item{
			Title:        "Story",
			CanonicalURL: s.url,
			SourceID:     sourceID,
			FirstSeenAt:  now.Add(-s.age),
			Score:        s.score,
		}
		if _, err := repo.Create(ctx, item); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	}

	expired, lowScore, err := repo.SweepStale(ctx, cutoff)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// The item matching both predicates is counted in both tallies.
	if expired != 2 {
		t.Errorf("Expected 2 expired, got %d", expired)
	}
	if lowScore != 2 {
		t.Errorf("Expected 2 low score, got %d", lowScore)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 surviving items, got %d", count)
	}

	for _, url := range []string{"https://example.com/fresh-good", "https://example.com/boundary"} {
		found, err := repo.GetByURL(ctx, url)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if found == nil {
			t.Errorf("Expected %s to survive the sweep", url)
		}
	}
}

func TestItemContentExtraction(t *testing.T) {
	db := openTestDB(t)
	sourceID := createTestSource(t, db)
	repo := NewItemRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	older := &Item{Title: "Older", CanonicalURL: "https://example.com/older", SourceID: sourceID,
		FirstSeenAt: now.Add(-2 * time.Hour), Score: 5}
	newer := &Item{Title: "Newer", CanonicalURL: "https://example.com/newer", SourceID: sourceID,
		FirstSeenAt: now.Add(-time.Hour), Score: 5}
	for _, item := range []*Item{older, newer} {
		if _, err := repo.Create(ctx, item); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	}

	pending, err := repo.ItemsForExtraction(ctx, 10)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("Expected 2 pending items, got %d", len(pending))
	}
	if pending[0].Title != "Older" {
		t.Errorf("Expected oldest item first, got %q", pending[0].Title)
	}

	extractedAt := now.Truncate(time.Second)
	if err := repo.UpdateContent(ctx, older.ID, "Extracted article body.", extractedAt); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	pending, err = repo.ItemsForExtraction(ctx, 10)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("Expected 1 pending item after extraction, got %d", len(pending))
	}
	if pending[0].Title != "Newer" {
		t.Errorf("Expected only the unextracted item, got %q", pending[0].Title)
	}

	found, err := repo.GetByURL(ctx, "https://example.com/older")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if found.Content != "Extracted article body." {
		t.Errorf("Expected extracted content, got %q", found.Content)
	}
	if found.ContentExtractedAt == nil || !found.ContentExtractedAt.Equal(extractedAt) {
		t.Errorf("Expected extraction timestamp %v, got %v", extractedAt, found.ContentExtractedAt)
	}
}

func TestItemTransactionalWrites(t *testing.T) {
	db := openTestDB(t)
	sourceID := createTestSource(t, db)
	repo := NewItemRepository(db)
	ctx := context.Background()

	err := db.Transact(ctx, func(tx *sql.Tx) error {
		txRepo := repo.WithTx(tx)
		if _, err := txRepo.Create(ctx, &Item{Title: "Tx Story", CanonicalURL: "https://example.com/tx", SourceID: sourceID, Score: 5}); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	found, err := repo.GetByURL(ctx, "https://example.com/tx")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if found == nil {
		t.Error("Expected committed item to be visible")
	}

	rollbackErr := db.Transact(ctx, func(tx *sql.Tx) error {
		txRepo := repo.WithTx(tx)
		if _, err := txRepo.Create(ctx, &Item{Title: "Doomed", CanonicalURL: "https://example.com/doomed", SourceID: sourceID, Score: 5}); err != nil {
			return err
		}
		return errors.New("forced rollback")
	})
	if rollbackErr == nil {
		t.Fatal("Expected transaction error to be returned")
	}

	found, err = repo.GetByURL(ctx, "https://example.com/doomed")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if found != nil {
		t.Error("Expected rolled-back item to be absent")
	}
}
