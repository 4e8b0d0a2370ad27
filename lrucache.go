// Package lrucache provides a fixed-capacity key/value cache with
// least-recently-used eviction, and a durable variant that rewrites a
// snapshot file on every mutation so its contents survive restarts.
//
// Example usage:
//
//	cache, err := lrucache.New[string, int](128)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache.Put("a", 1)
//	if v, ok := cache.Get("a"); ok {
//	    fmt.Println(v)
//	}
//
// The durable variant replays its file on Open:
//
//	d, err := lrucache.Open(128, "/var/lib/app/cache.db",
//	    lrucache.StringEncoding(), lrucache.StringEncoding(),
//	    lrucache.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer d.Close()
//
// Neither type is safe for concurrent use. Callers sharing a cache between
// goroutines must guard the whole instance with their own mutex.
package lrucache

import (
	"errors"

	"github.com/discochess/lrucache/internal/record"
	"github.com/discochess/lrucache/internal/store/diskstore"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrZeroCapacity indicates a cache was constructed with capacity < 1.
	ErrZeroCapacity = errors.New("lrucache: capacity must be greater than zero")

	// ErrClosed indicates the durable cache has been closed.
	ErrClosed = errors.New("lrucache: cache closed")

	// ErrNoStore indicates Open was given neither a path nor a store.
	ErrNoStore = errors.New("lrucache: no path or store provided")

	// ErrSerialization wraps failures to encode a key or value.
	ErrSerialization = errors.New("lrucache: serialization failed")

	// ErrDeserialization wraps failures to decode a persisted key or value.
	ErrDeserialization = errors.New("lrucache: deserialization failed")

	// ErrLocked indicates another owner holds the snapshot file.
	ErrLocked = diskstore.ErrLocked
)

// ParseError reports a malformed line in a snapshot file.
type ParseError = record.ParseError

// PersistError reports that a mutation was applied in memory but could not
// be written to the snapshot. The value is live in this process but may not
// survive a restart.
type PersistError struct {
	Op  string // "put", "remove", "clear" or "flush"
	Err error
}

func (e *PersistError) Error() string {
	return "lrucache: " + e.Op + ": persisting snapshot: " + e.Err.Error()
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
