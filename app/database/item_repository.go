package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ItemRepository handles database operations for scored items.
type ItemRepository struct {
	db dbtx
}

func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *ItemRepository) WithTx(tx *sql.Tx) *ItemRepository {
	if tx == nil {
		return r
	}
	return &ItemRepository{db: tx}
}

// FindByURLOrImage looks up an existing item by canonical URL, or by image
// URL when the incoming entry carries one. A match on either key is treated
// as the same logical item.
func (r *ItemRepository) FindByURLOrImage(ctx context.Context, canonicalURL, imageURL string) (*Item, error) {
	var row *sql.Row
	if imageURL != "" {
		row = r.db.QueryRowContext(ctx,
			selectItemSQL+` WHERE canonical_url = ? OR (image_url IS NOT NULL AND image_url != '' AND image_url = ?) LIMIT 1`,
			canonicalURL, imageURL)
	} else {
		row = r.db.QueryRowContext(ctx,
			selectItemSQL+` WHERE canonical_url = ? LIMIT 1`, canonicalURL)
	}

	return r.scanOne(row)
}

func (r *ItemRepository) GetByURL(ctx context.Context, canonicalURL string) (*Item, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectItemSQL+` WHERE canonical_url = ?`, canonicalURL))
}

// Create inserts a new item, returning false when another item with the same
// canonical URL already exists. The conflicting write is dropped in favor of
// the existing record; no duplicate is ever persisted.
func (r *ItemRepository) Create(ctx context.Context, item *Item) (bool, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.FirstSeenAt.IsZero() {
		item.FirstSeenAt = time.Now().UTC()
	}

	var imageURL any
	if item.ImageURL != "" {
		imageURL = item.ImageURL
	}
	var feedRank any
	if item.FeedRank > 0 {
		feedRank = item.FeedRank
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO items (id, title, canonical_url, image_url, source_id, first_seen_at, score, feed_rank, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(canonical_url) DO NOTHING
	`, item.ID, item.Title, item.CanonicalURL, imageURL, item.SourceID,
		formatTime(item.FirstSeenAt), item.Score, feedRank, formatTime(time.Now().UTC()))
	if err != nil {
		return false, fmt.Errorf("failed to insert item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return affected > 0, nil
}

func (r *ItemRepository) UpdateScore(ctx context.Context, id string, score float64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE items SET score = ? WHERE id = ?`, score, id)
	if err != nil {
		return fmt.Errorf("failed to update item score: %w", err)
	}
	return nil
}

func (r *ItemRepository) UpdateImage(ctx context.Context, id, imageURL string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE items SET image_url = ? WHERE id = ?`, imageURL, id)
	if err != nil {
		return fmt.Errorf("failed to update item image: %w", err)
	}
	return nil
}

func (r *ItemRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get item count: %w", err)
	}
	return count, nil
}

// TopByScore returns the highest-scored items, newest first among ties.
func (r *ItemRepository) TopByScore(ctx context.Context, limit int) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx,
		selectItemSQL+` ORDER BY score DESC, first_seen_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top items: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// SweepStale deletes every item older than cutoff OR with score <= 0.
// The two predicates are counted separately before the union delete, so a
// single item satisfying both contributes to both counters.
func (r *ItemRepository) SweepStale(ctx context.Context, cutoff time.Time) (expired, lowScore int, err error) {
	cutoffStr := formatTime(cutoff)

	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE first_seen_at < ?`, cutoffStr).Scan(&expired)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count expired items: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE score <= 0`).Scan(&lowScore)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count low-score items: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`DELETE FROM items WHERE first_seen_at < ? OR score <= 0`, cutoffStr)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete stale items: %w", err)
	}

	return expired, lowScore, nil
}

// ItemsForExtraction returns items without extracted content, oldest first.
func (r *ItemRepository) ItemsForExtraction(ctx context.Context, limit int) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx,
		selectItemSQL+` WHERE content IS NULL OR content = '' ORDER BY first_seen_at LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get items for extraction: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

func (r *ItemRepository) UpdateContent(ctx context.Context, id, content string, extractedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE items SET content = ?, content_extracted_at = ? WHERE id = ?`,
		content, formatTime(extractedAt), id)
	if err != nil {
		return fmt.Errorf("failed to update item content: %w", err)
	}
	return nil
}

const selectItemSQL = `
	SELECT id, title, canonical_url, COALESCE(image_url, ''), source_id,
	       first_seen_at, score, COALESCE(feed_rank, 0), COALESCE(content, ''),
	       content_extracted_at, created_at
	FROM items`

func (r *ItemRepository) scanOne(row *sql.Row) (*Item, error) {
	var item Item
	var firstSeenAt, createdAt string
	var extractedAt sql.NullString

	err := row.Scan(&item.ID, &item.Title, &item.CanonicalURL, &item.ImageURL,
		&item.SourceID, &firstSeenAt, &item.Score, &item.FeedRank,
		&item.Content, &extractedAt, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan item row: %w", err)
	}

	item.FirstSeenAt = parseTime(firstSeenAt)
	item.CreatedAt = parseTime(createdAt)
	if extractedAt.Valid {
		t := parseTime(extractedAt.String)
		item.ContentExtractedAt = &t
	}
	return &item, nil
}

func (r *ItemRepository) scanAll(rows *sql.Rows) ([]Item, error) {
	var items []Item
	for rows.Next() {
		var item Item
		var firstSeenAt, createdAt string
		var extractedAt sql.NullString

		err := rows.Scan(&item.ID, &item.Title, &item.CanonicalURL, &item.ImageURL,
			&item.SourceID, &firstSeenAt, &item.Score, &item.FeedRank,
			&item.Content, &extractedAt, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}

		item.FirstSeenAt = parseTime(firstSeenAt)
		item.CreatedAt = parseTime(createdAt)
		if extractedAt.Valid {
			t := parseTime(extractedAt.String)
			item.ContentExtractedAt = &t
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}
