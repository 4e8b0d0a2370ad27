// Package store defines the persistence backend of the durable cache.
package store

import (
	"errors"

	"github.com/discochess/lrucache/internal/record"
)

// ErrNotFound is returned by Load when no snapshot has been written yet.
var ErrNotFound = errors.New("store: snapshot not found")

// Store persists full snapshots of a cache.
//
// A snapshot is an ordered list of records, oldest first. Save replaces the
// previous snapshot entirely; there is no delta log.
type Store interface {
	// Load returns the last saved snapshot, or ErrNotFound.
	Load() ([]record.Record, error)

	// Save replaces the stored snapshot with records.
	Save(records []record.Record) error

	// Close releases any resources held by the store.
	Close() error
}
