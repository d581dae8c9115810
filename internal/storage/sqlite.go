package storage

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"cardbook/internal/common/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS contacts (
	uid        TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// SQLiteStore keeps the serialized vCards in a single SQLite database,
// one row per contact.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at the given path and
// ensures the schema exists.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.StorageError("failed to open database "+path, err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, errors.StorageError("failed to initialize database "+path, err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// List returns all stored records.
func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT uid, data FROM contacts ORDER BY uid")
	if err != nil {
		return nil, errors.StorageError("failed to list contacts", err)
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.UID, &entry.Data); err != nil {
			return nil, errors.StorageError("failed to scan contact row", err)
		}
		entry.Location = "sqlite:" + entry.UID
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StorageError("failed to list contacts", err)
	}
	return entries, nil
}

// Get returns the record with the given UID.
func (s *SQLiteStore) Get(ctx context.Context, uid string) (Entry, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM contacts WHERE uid = ?", uid).Scan(&data)
	if err == sql.ErrNoRows {
		return Entry{}, errors.NotFoundError("contact " + uid)
	}
	if err != nil {
		return Entry{}, errors.StorageError("failed to load contact "+uid, err)
	}
	return Entry{UID: uid, Location: "sqlite:" + uid, Data: data}, nil
}

// Put stores a record. Without overwrite an existing UID is an error.
func (s *SQLiteStore) Put(ctx context.Context, uid string, data []byte, overwrite bool) error {
	query := "INSERT INTO contacts (uid, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)"
	if overwrite {
		query += " ON CONFLICT(uid) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP"
	}
	if _, err := s.db.ExecContext(ctx, query, uid, data); err != nil {
		return errors.StorageError("failed to store contact "+uid, err)
	}
	return nil
}

// Delete removes the record with the given UID.
func (s *SQLiteStore) Delete(ctx context.Context, uid string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM contacts WHERE uid = ?", uid)
	if err != nil {
		return errors.StorageError("failed to delete contact "+uid, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return errors.NotFoundError("contact " + uid)
	}
	return nil
}
