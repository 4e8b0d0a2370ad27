package lrucache

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/lrucache/internal/record"
	"github.com/discochess/lrucache/internal/stats"
	"github.com/discochess/lrucache/internal/store"
	"github.com/discochess/lrucache/internal/store/diskstore"
)

// Stats contains durable cache statistics.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	Writes      int64 // successful snapshot rewrites
	WriteErrors int64 // failed snapshot rewrites
	Size        int   // current number of entries
}

// HitRate returns the cache hit rate as a percentage.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Durable is a Cache whose contents are written through to a snapshot on
// every mutation.
//
// Mutations are applied in memory first. If the snapshot write then fails,
// the call returns a *PersistError and the mutation stays applied; the file
// is stale until the next successful write (see Flush).
type Durable[K comparable, V any] struct {
	cache  *Cache[K, V]
	store  store.Store
	path   string
	keys   Encoding[K]
	values Encoding[V]
	stats  stats.Collector
	logger *zap.Logger

	counters Stats
	stale    bool
	closed   bool
}

// Open creates a durable cache of the given capacity backed by the snapshot
// file at path, replaying any records the file already holds. Records are
// replayed in file order as puts, so the last line becomes the most recently
// used entry. A missing file yields an empty cache.
//
// path may be empty when WithStore is given.
func Open[K comparable, V any](capacity int, path string, keys Encoding[K], values Encoding[V], opts ...Option) (*Durable[K, V], error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	cache, err := New[K, V](capacity)
	if err != nil {
		return nil, err
	}
	if keys == nil || values == nil {
		return nil, errors.New("lrucache: nil key or value encoding")
	}

	st := cfg.store
	if st == nil {
		if path == "" {
			return nil, ErrNoStore
		}
		if st, err = openDiskStore(path, cfg); err != nil {
			return nil, err
		}
	}

	d := &Durable[K, V]{
		cache:  cache,
		store:  st,
		path:   path,
		keys:   keys,
		values: values,
		stats:  cfg.stats,
		logger: cfg.logger,
	}

	if err := d.load(); err != nil {
		st.Close()
		return nil, err
	}
	return d, nil
}

func openDiskStore(path string, cfg options) (store.Store, error) {
	c, err := cfg.compression.codec()
	if err != nil {
		return nil, err
	}
	dopts := []diskstore.Option{diskstore.WithCodec(c)}
	if !cfg.fileLock {
		dopts = append(dopts, diskstore.WithoutLock())
	}
	st, err := diskstore.New(path, dopts...)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	return st, nil
}

// load replays the stored snapshot into the empty cache.
func (d *Durable[K, V]) load() error {
	records, err := d.store.Load()
	if errors.Is(err, store.ErrNotFound) {
		d.logger.Debug("no snapshot found, starting empty", zap.String("path", d.path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	dropped := 0
	for i, r := range records {
		key, err := d.keys.Decode(r.Key)
		if err != nil {
			return fmt.Errorf("%w: line %d: key: %w", ErrDeserialization, i+1, err)
		}
		value, err := d.values.Decode(r.Value)
		if err != nil {
			return fmt.Errorf("%w: line %d: value: %w", ErrDeserialization, i+1, err)
		}
		_, evicted, err := d.cache.add(key, value)
		if err != nil {
			return err
		}
		if evicted {
			dropped++
		}
	}

	// Records beyond capacity were evicted on replay; the file lags until rewritten.
	d.stale = dropped > 0

	d.stats.IncCounter(stats.MetricRecordsLoaded, int64(len(records)))
	d.stats.SetGauge(stats.MetricSize, int64(d.cache.Len()))
	d.logger.Debug("snapshot loaded",
		zap.String("path", d.path),
		zap.Int("records", len(records)),
		zap.Int("entries", d.cache.Len()),
		zap.Int("dropped", dropped),
	)
	return nil
}

// Get returns the value for key and marks it most recently used.
// It performs no I/O.
func (d *Durable[K, V]) Get(key K) (V, bool) {
	v, ok := d.cache.Get(key)
	if ok {
		d.counters.Hits++
		d.stats.IncCounter(stats.MetricHits, 1)
	} else {
		d.counters.Misses++
		d.stats.IncCounter(stats.MetricMisses, 1)
	}
	return v, ok
}

// Peek returns the value for key without changing its recency.
func (d *Durable[K, V]) Peek(key K) (V, bool) {
	return d.cache.Peek(key)
}

// Contains reports whether key is cached, without changing its recency.
func (d *Durable[K, V]) Contains(key K) bool {
	return d.cache.Contains(key)
}

// Put stores value under key, evicting the least recently used entry on
// overflow, then rewrites the snapshot.
//
// A key or value that cannot be encoded is rejected before the cache is
// touched. A failed write returns a *PersistError with the put applied.
func (d *Durable[K, V]) Put(key K, value V) error {
	if d.closed {
		return ErrClosed
	}
	if _, err := d.keys.Encode(key); err != nil {
		return fmt.Errorf("%w: key: %w", ErrSerialization, err)
	}
	if _, err := d.values.Encode(value); err != nil {
		return fmt.Errorf("%w: value: %w", ErrSerialization, err)
	}

	evicted, ok, err := d.cache.add(key, value)
	if err != nil {
		return err
	}
	if ok {
		d.counters.Evictions++
		d.stats.IncCounter(stats.MetricEvictions, 1)
		d.logger.Debug("evicted least recently used entry", zap.Any("key", evicted.Key))
	}

	return d.persist("put")
}

// Remove deletes key, returning its value, and rewrites the snapshot.
// Removing an absent key writes nothing unless the snapshot is stale.
func (d *Durable[K, V]) Remove(key K) (V, bool, error) {
	if d.closed {
		var zero V
		return zero, false, ErrClosed
	}

	v, ok := d.cache.Remove(key)
	if !ok && !d.stale {
		return v, false, nil
	}
	return v, ok, d.persist("remove")
}

// Clear removes every entry and rewrites the snapshot as empty.
func (d *Durable[K, V]) Clear() error {
	if d.closed {
		return ErrClosed
	}
	d.cache.Clear()
	return d.persist("clear")
}

// Flush rewrites the snapshot from the current contents. Use it to retry
// after a *PersistError.
func (d *Durable[K, V]) Flush() error {
	if d.closed {
		return ErrClosed
	}
	return d.persist("flush")
}

// Len returns the number of cached entries.
func (d *Durable[K, V]) Len() int {
	return d.cache.Len()
}

// Cap returns the maximum number of entries.
func (d *Durable[K, V]) Cap() int {
	return d.cache.Cap()
}

// IsEmpty reports whether the cache holds no entries.
func (d *Durable[K, V]) IsEmpty() bool {
	return d.cache.IsEmpty()
}

// Snapshot returns every entry from most to least recently used.
func (d *Durable[K, V]) Snapshot() []Entry[K, V] {
	return d.cache.Snapshot()
}

// Keys returns the cached keys from most to least recently used.
func (d *Durable[K, V]) Keys() []K {
	return d.cache.Keys()
}

// Stale reports whether the last snapshot write failed, meaning the file
// may not match the in-memory contents.
func (d *Durable[K, V]) Stale() bool {
	return d.stale
}

// Stats returns current cache statistics.
func (d *Durable[K, V]) Stats() Stats {
	s := d.counters
	s.Size = d.cache.Len()
	return s
}

// Path returns the snapshot file path, or "" for a custom store.
func (d *Durable[K, V]) Path() string {
	return d.path
}

// Close releases the snapshot file. The in-memory contents stay readable,
// but mutating calls return ErrClosed.
func (d *Durable[K, V]) Close() error {
	if d.closed {
		return ErrClosed
	}
	d.closed = true

	if err := d.store.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}
	return nil
}

// persist rewrites the whole snapshot, oldest entry first.
func (d *Durable[K, V]) persist(op string) error {
	start := time.Now()

	err := d.save()
	d.stats.ObserveHistogram(stats.MetricWriteSeconds, time.Since(start).Seconds())
	d.stats.SetGauge(stats.MetricSize, int64(d.cache.Len()))

	if err != nil {
		d.stale = true
		d.counters.WriteErrors++
		d.stats.IncCounter(stats.MetricWriteErrors, 1)
		d.logger.Warn("snapshot write failed, in-memory state kept",
			zap.String("op", op),
			zap.String("path", d.path),
			zap.Error(err),
		)
		return &PersistError{Op: op, Err: err}
	}

	d.stale = false
	d.counters.Writes++
	d.stats.IncCounter(stats.MetricWrites, 1)
	d.logger.Debug("snapshot written",
		zap.String("op", op),
		zap.Int("records", d.cache.Len()),
	)
	return nil
}

func (d *Durable[K, V]) save() error {
	snap := d.cache.Snapshot()
	records := make([]record.Record, len(snap))
	for i, e := range snap {
		k, err := d.keys.Encode(e.Key)
		if err != nil {
			return fmt.Errorf("%w: key: %w", ErrSerialization, err)
		}
		v, err := d.values.Encode(e.Value)
		if err != nil {
			return fmt.Errorf("%w: value: %w", ErrSerialization, err)
		}
		records[len(snap)-1-i] = record.Record{Key: k, Value: v}
	}
	return d.store.Save(records)
}
