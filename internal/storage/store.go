// Package storage provides the persistence backends for serialized vCards.
// A Store keeps one record per contact, addressed by UID.
package storage

import "context"

// Entry is one stored vCard record.
type Entry struct {
	// UID is the record's unique identifier.
	UID string
	// Location describes where the record lives, for log and error output.
	Location string
	// Data is the serialized vCard.
	Data []byte
}

// Store is a persistence backend for serialized vCards. Implementations
// must be safe for concurrent readers.
type Store interface {
	// List returns all stored records.
	List(ctx context.Context) ([]Entry, error)
	// Get returns the record with the given UID.
	Get(ctx context.Context, uid string) (Entry, error)
	// Put stores a record. Without overwrite an existing UID is an error.
	Put(ctx context.Context, uid string, data []byte, overwrite bool) error
	// Delete removes the record with the given UID.
	Delete(ctx context.Context, uid string) error
}
