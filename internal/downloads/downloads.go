// Package downloads indexes items stored locally for offline playback.
package downloads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	dbutil "github.com/llehouerou/nowplaying/internal/db"
)

// ErrNotFound is returned when an item is not in the index.
var ErrNotFound = errors.New("item not downloaded")

const schema = `
	CREATE TABLE IF NOT EXISTS downloaded_items (
		item_id TEXT PRIMARY KEY,
		name TEXT,
		directory TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
`

// Item is a locally stored media item.
type Item struct {
	ID        string
	Name      string
	Directory string // per-item storage directory
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ThumbnailPath returns the path of a file named name inside the item's
// storage directory.
func (i *Item) ThumbnailPath(name string) string {
	return filepath.Join(i.Directory, name)
}

// Index maps media identifiers to their local storage.
type Index struct {
	db *sql.DB
}

// Open opens the index database at path, creating it if needed.
func Open(path string) (*Index, error) {
	db, err := dbutil.Open(path, schema)
	if err != nil {
		return nil, fmt.Errorf("open downloads index: %w", err)
	}
	return &Index{db: db}, nil
}

// Close closes the underlying database.
func (x *Index) Close() error {
	return x.db.Close()
}

// Put inserts or replaces an item.
func (x *Index) Put(ctx context.Context, item Item) error {
	now := time.Now().Unix()
	return dbutil.WithTx(ctx, x.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO downloaded_items (item_id, name, directory, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(item_id) DO UPDATE SET
				name = excluded.name,
				directory = excluded.directory,
				updated_at = excluded.updated_at
		`, item.ID, item.Name, item.Directory, now, now)
		return err
	})
}

// Lookup returns the item with the given id, or ErrNotFound.
func (x *Index) Lookup(ctx context.Context, id string) (*Item, error) {
	row := x.db.QueryRowContext(ctx, `
		SELECT item_id, name, directory, created_at, updated_at
		FROM downloaded_items
		WHERE item_id = ?
	`, id)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes an item. Missing items are ignored.
func (x *Index) Delete(ctx context.Context, id string) error {
	_, err := x.db.ExecContext(ctx, `DELETE FROM downloaded_items WHERE item_id = ?`, id)
	return err
}

// List returns all items, most recently added first.
func (x *Index) List(ctx context.Context) ([]Item, error) {
	rows, err := x.db.QueryContext(ctx, `
		SELECT item_id, name, directory, created_at, updated_at
		FROM downloaded_items
		ORDER BY created_at DESC, item_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*Item, error) {
	var item Item
	var name sql.NullString
	var createdAt, updatedAt int64
	if err := s.Scan(&item.ID, &name, &item.Directory, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	item.Name = dbutil.NullStringValue(name)
	item.CreatedAt = time.Unix(createdAt, 0)
	item.UpdatedAt = time.Unix(updatedAt, 0)
	return &item, nil
}
