package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

/*
SQLStore keeps objects in a single sqlite database, which makes a packed tile
dataset a one-file artifact. Works with any database/sql driver; the tooling
uses mattn/go-sqlite3.
*/

////////////////////////////////////////////////////////////////////////////////

// SQLStore is a sqlite-backed store.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore returns a store over db, creating the objects table if needed.
func NewSQLStore(db *sql.DB) (*SQLStore, error) {
	s := &SQLStore{db: db}
	if err := s.initialize(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) initialize() error {
	_, err := s.db.Exec(`
	create table if not exists objects (
		key text primary key,
		data blob not null
	);
	`)
	if err != nil {
		return fmt.Errorf("failed to create objects table: %w", err)
	}
	return nil
}

// Put stores an object, replacing any existing object under the key.
func (s *SQLStore) Put(ctx context.Context, key string, data []byte) error {
	stmt := `insert into objects (key, data) values ($1, $2)
	on conflict (key) do update set data = excluded.data`
	if _, err := s.db.ExecContext(ctx, stmt, key, data); err != nil {
		return fmt.Errorf("failed to insert object: %w", err)
	}
	return nil
}

// Get retrieves an object.
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `select data from objects where key = $1`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to query object: %w", err)
	}
	return data, nil
}

// Delete removes an object.
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `delete from objects where key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (s *SQLStore) String() string {
	return "sqlite"
}
