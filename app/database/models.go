package database

import (
	"time"
)

// Source is a configured feed to poll for articles. The core mutates only
// LastScrapeStatus; all other fields belong to the external management
// surface. Sources are never deleted by the core.
type Source struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	FeedURL          string    `json:"feed_url"`
	Kind             string    `json:"kind"` // currently only "rss"
	Category         string    `json:"category,omitempty"`
	Enabled          bool      `json:"enabled"`
	LastScrapeStatus string    `json:"last_scrape_status,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Item is a deduplicated, scored unit of content derived from a feed entry.
// FirstSeenAt is set once at creation and never changes; Score and ImageURL
// may be rewritten on re-observation.
type Item struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	CanonicalURL       string     `json:"canonical_url"`
	ImageURL           string     `json:"image_url,omitempty"`
	SourceID           string     `json:"source_id"`
	FirstSeenAt        time.Time  `json:"first_seen_at"`
	Score              float64    `json:"score"`
	FeedRank           int        `json:"feed_rank,omitempty"` // 0 means unknown
	Content            string     `json:"content,omitempty"`
	ContentExtractedAt *time.Time `json:"content_extracted_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// AgeHours returns the item's age in hours relative to now, with both
// timestamps normalized to UTC.
func (i *Item) AgeHours(now time.Time) float64 {
	return now.UTC().Sub(i.FirstSeenAt.UTC()).Hours()
}
