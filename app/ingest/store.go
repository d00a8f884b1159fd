package ingest

import (
	"context"
	"database/sql"

	"github.com/lgavrilov/newspulse/app/database"
)

// SQLStore adapts the database layer to the orchestrator's Store interface,
// binding item writes to one transaction per source.
type SQLStore struct {
	db    *database.DB
	items *database.ItemRepository
}

func NewSQLStore(db *database.DB, items *database.ItemRepository) *SQLStore {
	return &SQLStore{db: db, items: items}
}

func (s *SQLStore) Items() ItemStore {
	return s.items
}

func (s *SQLStore) Transact(ctx context.Context, fn func(items ItemStore) error) error {
	return s.db.Transact(ctx, func(tx *sql.Tx) error {
		return fn(s.items.WithTx(tx))
	})
}
