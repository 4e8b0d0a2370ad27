package lrucache

// maxPreallocHint bounds the index size allocated up front by New.
const maxPreallocHint = 1 << 16

// link is an optional reference to another entry, by key.
type link[K comparable] struct {
	key K
	ok  bool
}

func linkTo[K comparable](key K) link[K] {
	return link[K]{key: key, ok: true}
}

// entry is one cached value plus its position in the recency chain.
// prev points toward the head (more recently used), next toward the tail.
type entry[K comparable, V any] struct {
	value V
	prev  link[K]
	next  link[K]
}

// Entry is a key/value pair as returned by Snapshot.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// Cache is a capacity-bounded map with least-recently-used eviction.
//
// The recency chain is a doubly linked list whose links are keys resolved
// through the index, so the index is the only owner of entries. Head is the
// most recently used entry, tail the least.
//
// The zero value is an empty cache with capacity 0; Put on it returns
// ErrZeroCapacity. Use New.
type Cache[K comparable, V any] struct {
	capacity int
	index    map[K]*entry[K, V]
	head     link[K]
	tail     link[K]
}

// New creates a cache holding at most capacity entries.
func New[K comparable, V any](capacity int) (*Cache[K, V], error) {
	if capacity < 1 {
		return nil, ErrZeroCapacity
	}
	return &Cache[K, V]{
		capacity: capacity,
		index:    make(map[K]*entry[K, V], min(capacity, maxPreallocHint)),
	}, nil
}

// Get returns the value for key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	e, ok := c.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.promote(key, e)
	return e.value, true
}

// Peek returns the value for key without changing its recency.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	e, ok := c.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Contains reports whether key is cached, without changing its recency.
func (c *Cache[K, V]) Contains(key K) bool {
	_, ok := c.index[key]
	return ok
}

// Put stores value under key and marks it most recently used. Storing a key
// that is already present replaces its value. If a new key overflows the
// capacity, the least recently used entry is evicted.
//
// Put only fails on a cache without capacity (the zero value).
func (c *Cache[K, V]) Put(key K, value V) error {
	_, _, err := c.add(key, value)
	return err
}

// add is Put reporting the evicted entry, if any.
func (c *Cache[K, V]) add(key K, value V) (evicted Entry[K, V], ok bool, err error) {
	if c.capacity < 1 {
		return evicted, false, ErrZeroCapacity
	}

	if e, found := c.index[key]; found {
		e.value = value
		c.promote(key, e)
		return evicted, false, nil
	}

	e := &entry[K, V]{value: value}
	c.index[key] = e
	c.pushFront(key, e)

	if len(c.index) > c.capacity {
		evicted, ok = c.removeTail()
	}
	return evicted, ok, nil
}

// Remove deletes key and returns its value.
func (c *Cache[K, V]) Remove(key K) (V, bool) {
	e, ok := c.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.unlink(e)
	delete(c.index, key)
	return e.value, true
}

// Clear removes every entry. Capacity is unchanged.
func (c *Cache[K, V]) Clear() {
	clear(c.index)
	c.head = link[K]{}
	c.tail = link[K]{}
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	return len(c.index)
}

// Cap returns the maximum number of entries.
func (c *Cache[K, V]) Cap() int {
	return c.capacity
}

// IsEmpty reports whether the cache holds no entries.
func (c *Cache[K, V]) IsEmpty() bool {
	return len(c.index) == 0
}

// Oldest returns the least recently used entry, which the next overflowing
// Put would evict. It does not change recency.
func (c *Cache[K, V]) Oldest() (K, V, bool) {
	if !c.tail.ok {
		var (
			zeroK K
			zeroV V
		)
		return zeroK, zeroV, false
	}
	return c.tail.key, c.index[c.tail.key].value, true
}

// Snapshot returns every entry from most to least recently used.
// It does not change recency.
func (c *Cache[K, V]) Snapshot() []Entry[K, V] {
	out := make([]Entry[K, V], 0, len(c.index))
	for l := c.head; l.ok; {
		e := c.index[l.key]
		out = append(out, Entry[K, V]{Key: l.key, Value: e.value})
		l = e.next
	}
	return out
}

// Keys returns the cached keys from most to least recently used.
func (c *Cache[K, V]) Keys() []K {
	out := make([]K, 0, len(c.index))
	for l := c.head; l.ok; l = c.index[l.key].next {
		out = append(out, l.key)
	}
	return out
}

// promote moves e to the head. It touches at most the two neighbors of e
// and the old head.
func (c *Cache[K, V]) promote(key K, e *entry[K, V]) {
	if c.head.ok && c.head.key == key {
		return
	}
	c.unlink(e)
	c.pushFront(key, e)
}

// pushFront links an unlinked e in as the new head.
func (c *Cache[K, V]) pushFront(key K, e *entry[K, V]) {
	e.prev = link[K]{}
	e.next = c.head
	if c.head.ok {
		c.index[c.head.key].prev = linkTo(key)
	} else {
		c.tail = linkTo(key)
	}
	c.head = linkTo(key)
}

// unlink splices e out of the chain, repairing head and tail.
func (c *Cache[K, V]) unlink(e *entry[K, V]) {
	if e.prev.ok {
		c.index[e.prev.key].next = e.next
	} else {
		c.head = e.next
	}
	if e.next.ok {
		c.index[e.next.key].prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev = link[K]{}
	e.next = link[K]{}
}

func (c *Cache[K, V]) removeTail() (Entry[K, V], bool) {
	if !c.tail.ok {
		return Entry[K, V]{}, false
	}
	key := c.tail.key
	e := c.index[key]
	c.unlink(e)
	delete(c.index, key)
	return Entry[K, V]{Key: key, Value: e.value}, true
}
