package database

import (
	"context"
	"testing"
)

func TestSourceUpsert(t *testing.T) {
	db := openTestDB(t)
	repo := NewSourceRepository(db)
	ctx := context.Background()

	id, err := repo.Upsert(ctx, &Source{
		Name:     "Tech News",
		FeedURL:  "https://technews.example.com/rss",
		Kind:     "rss",
		Category: "technology",
		Enabled:  true,
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if id == "" {
		t.Fatal("Expected generated source ID")
	}

	// Upserting the same feed URL updates in place instead of duplicating.
	sameID, err := repo.Upsert(ctx, &Source{
		Name:     "Tech News Renamed",
		FeedURL:  "https://technews.example.com/rss",
		Kind:     "rss",
		Category: "technology",
		Enabled:  false,
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if sameID != id {
		t.Errorf("Expected same ID %q on upsert, got %q", id, sameID)
	}

	found, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if found.Name != "Tech News Renamed" {
		t.Errorf("Expected updated name, got %q", found.Name)
	}
	if found.Enabled {
		t.Error("Expected source to be disabled after upsert")
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 source, got %d", count)
	}
}

func TestSourceGetEnabled(t *testing.T) {
	db := openTestDB(t)
	repo := NewSourceRepository(db)
	ctx := context.Background()

	seed := []Source{
		{Name: "Enabled A", FeedURL: "https://a.example.com/rss", Kind: "rss", Enabled: true},
		{Name: "Disabled", FeedURL: "https://b.example.com/rss", Kind: "rss", Enabled: false},
		{Name: "Enabled C", FeedURL: "https://c.example.com/rss", Kind: "rss", Enabled: true},
	}
	for i := range seed {
		if _, err := repo.Upsert(ctx, &seed[i]); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	}

	enabled, err := repo.GetEnabled(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(enabled) != 2 {
		t.Fatalf("Expected 2 enabled sources, got %d", len(enabled))
	}
	for _, source := range enabled {
		if !source.Enabled {
			t.Errorf("Expected only enabled sources, got %q", source.Name)
		}
	}

	enabledCount, err := repo.CountEnabled(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if enabledCount != 2 {
		t.Errorf("Expected enabled count 2, got %d", enabledCount)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 sources listed, got %d", len(all))
	}
}

func TestSourceUpdateScrapeStatus(t *testing.T) {
	db := openTestDB(t)
	repo := NewSourceRepository(db)
	ctx := context.Background()

	id, err := repo.Upsert(ctx, &Source{
		Name: "News", FeedURL: "https://news.example.com/rss", Kind: "rss", Enabled: true,
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if err := repo.UpdateScrapeStatus(ctx, id, "Error: no entries found"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	found, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if found.LastScrapeStatus != "Error: no entries found" {
		t.Errorf("Expected scrape status to be recorded, got %q", found.LastScrapeStatus)
	}

	// Upsert must not clobber the recorded status.
	if _, err := repo.Upsert(ctx, &Source{
		Name: "News", FeedURL: "https://news.example.com/rss", Kind: "rss", Enabled: true,
	}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	found, err = repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if found.LastScrapeStatus != "Error: no entries found" {
		t.Errorf("Expected scrape status to survive upsert, got %q", found.LastScrapeStatus)
	}
}

func TestSourceGetMissing(t *testing.T) {
	db := openTestDB(t)
	repo := NewSourceRepository(db)

	found, err := repo.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if found != nil {
		t.Error("Expected nil for missing source")
	}
}
