// Package diskstore persists cache snapshots to a single file.
package diskstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/discochess/lrucache/internal/codec"
	"github.com/discochess/lrucache/internal/codec/noopcodec"
	"github.com/discochess/lrucache/internal/record"
	"github.com/discochess/lrucache/internal/store"
)

// ErrLocked is returned by New when another owner holds the snapshot file.
var ErrLocked = errors.New("diskstore: snapshot file is locked by another owner")

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store keeps one snapshot file at a fixed path.
//
// Save writes to a temporary file in the same directory and renames it over
// the snapshot, so readers see either the old or the new snapshot.
type Store struct {
	path  string
	codec codec.Codec
	lock  *flock.Flock
}

// Option configures a Store.
type Option func(*Store)

// WithCodec sets the codec wrapping the file contents. Default is plain text.
func WithCodec(c codec.Codec) Option {
	return func(s *Store) { s.codec = c }
}

// WithoutLock skips the exclusive lock on <path>.lock.
func WithoutLock() Option {
	return func(s *Store) { s.lock = nil }
}

// New creates a store for the snapshot at path.
// The parent directory must exist. Unless WithoutLock is given, New takes an
// exclusive advisory lock on <path>.lock and fails with ErrLocked if it is held.
func New(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, errors.New("diskstore: empty path")
	}

	info, err := os.Stat(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("stat snapshot directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", filepath.Dir(path))
	}

	s := &Store{
		path:  path,
		codec: noopcodec.New(),
		lock:  flock.New(path + ".lock"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.lock != nil {
		locked, err := s.lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("locking snapshot: %w", err)
		}
		if !locked {
			return nil, ErrLocked
		}
	}

	return s, nil
}

// Path returns the snapshot file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads and parses the snapshot file.
func (s *Store) Load() ([]record.Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	reader, err := s.codec.Reader(f)
	if err != nil {
		return nil, fmt.Errorf("creating %s decoder: %w", s.codec.Name(), err)
	}
	defer reader.Close()

	records, err := record.Read(reader)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return records, nil
}

// Save replaces the snapshot file with records.
func (s *Store) Save(records []record.Record) (err error) {
	dir, base := filepath.Split(s.path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := s.encode(tmp, records); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

func (s *Store) encode(w io.Writer, records []record.Record) error {
	writer, err := s.codec.Writer(w)
	if err != nil {
		return fmt.Errorf("creating %s encoder: %w", s.codec.Name(), err)
	}
	if err := record.Write(writer, records); err != nil {
		writer.Close()
		return fmt.Errorf("writing records: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("flushing %s encoder: %w", s.codec.Name(), err)
	}
	return nil
}

// Close releases the file lock.
func (s *Store) Close() error {
	if s.lock == nil {
		return nil
	}
	if err := s.lock.Unlock(); err != nil {
		return fmt.Errorf("unlocking snapshot: %w", err)
	}
	return nil
}
