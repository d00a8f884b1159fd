package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SourceRepository handles database operations for feed sources.
type SourceRepository struct {
	db dbtx
}

func NewSourceRepository(db *DB) *SourceRepository {
	return &SourceRepository{db: db}
}

// Upsert registers a source by feed URL, updating its descriptive fields if
// it already exists. The scrape status is left untouched.
func (r *SourceRepository) Upsert(ctx context.Context, source *Source) (string, error) {
	existing, err := r.GetByFeedURL(ctx, source.FeedURL)
	if err != nil {
		return "", fmt.Errorf("failed to check existing source: %w", err)
	}

	now := time.Now().UTC()

	if existing != nil {
		_, err = r.db.ExecContext(ctx, `
			UPDATE sources
			SET name = ?, kind = ?, category = ?, enabled = ?, updated_at = ?
			WHERE id = ?
		`, source.Name, source.Kind, source.Category, source.Enabled, formatTime(now), existing.ID)
		if err != nil {
			return "", fmt.Errorf("failed to update source: %w", err)
		}
		return existing.ID, nil
	}

	id := uuid.NewString()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sources (id, name, feed_url, kind, category, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, source.Name, source.FeedURL, source.Kind, source.Category, source.Enabled,
		formatTime(now), formatTime(now))
	if err != nil {
		return "", fmt.Errorf("failed to insert source: %w", err)
	}

	return id, nil
}

// Get retrieves a source by ID, returning nil when it does not exist.
func (r *SourceRepository) Get(ctx context.Context, id string) (*Source, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectSourceSQL+" WHERE id = ?", id))
}

func (r *SourceRepository) GetByFeedURL(ctx context.Context, feedURL string) (*Source, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectSourceSQL+" WHERE feed_url = ?", feedURL))
}

// GetEnabled returns all enabled sources in stable listing order.
func (r *SourceRepository) GetEnabled(ctx context.Context) ([]Source, error) {
	rows, err := r.db.QueryContext(ctx, selectSourceSQL+" WHERE enabled = 1 ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to get enabled sources: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// List returns all sources in stable listing order.
func (r *SourceRepository) List(ctx context.Context) ([]Source, error) {
	rows, err := r.db.QueryContext(ctx, selectSourceSQL+" ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// UpdateScrapeStatus records the outcome of the most recent fetch.
func (r *SourceRepository) UpdateScrapeStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sources
		SET last_scrape_status = ?, updated_at = ?
		WHERE id = ?
	`, status, formatTime(time.Now().UTC()), id)
	if err != nil {
		return fmt.Errorf("failed to update scrape status: %w", err)
	}
	return nil
}

func (r *SourceRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sources").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get source count: %w", err)
	}
	return count, nil
}

func (r *SourceRepository) CountEnabled(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sources WHERE enabled = 1").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get enabled source count: %w", err)
	}
	return count, nil
}

const selectSourceSQL = `
	SELECT id, name, feed_url, kind, COALESCE(category, ''), enabled,
	       COALESCE(last_scrape_status, ''), created_at, updated_at
	FROM sources`

func (r *SourceRepository) scanOne(row *sql.Row) (*Source, error) {
	var source Source
	var createdAt, updatedAt string

	err := row.Scan(&source.ID, &source.Name, &source.FeedURL, &source.Kind,
		&source.Category, &source.Enabled, &source.LastScrapeStatus,
		&createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan source row: %w", err)
	}

	source.CreatedAt = parseTime(createdAt)
	source.UpdatedAt = parseTime(updatedAt)
	return &source, nil
}

func (r *SourceRepository) scanAll(rows *sql.Rows) ([]Source, error) {
	var sources []Source
	for rows.Next() {
		var source Source
		var createdAt, updatedAt string

		err := rows.Scan(&source.ID, &source.Name, &source.FeedURL, &source.Kind,
			&source.Category, &source.Enabled, &source.LastScrapeStatus,
			&createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}

		source.CreatedAt = parseTime(createdAt)
		source.UpdatedAt = parseTime(updatedAt)
		sources = append(sources, source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source rows: %w", err)
	}

	return sources, nil
}
