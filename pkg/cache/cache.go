package cache

import (
	"errors"
	"sync"
	"time"
)

// ErrComputePanicked is returned to callers that waited on a compute call which panicked
var ErrComputePanicked = errors.New("cache: compute panicked")

// Cache is a typed key/value cache with per-entry expiration
type Cache[V any] interface {
	// Get returns the value and true if present and not expired
	Get(key string) (V, bool)

	// Set stores a value for ttl
	Set(key string, value V, ttl time.Duration)

	// GetOrSet returns the cached value or computes, stores and returns it.
	// Concurrent callers for the same key share a single compute call.
	// Errors are returned to every waiting caller and never cached.
	GetOrSet(key string, ttl time.Duration, compute func() (V, error)) (V, error)

	// Delete removes a key
	Delete(key string)

	// Clear removes every key
	Clear()

	// Size returns the number of stored entries, expired ones included until the next cleanup
	Size() int

	// Stop ends background cleanup. It is safe to call more than once.
	Stop()
}

type entry[V any] struct {
	value      V
	expiration time.Time
}

func (e *entry[V]) isExpired(now time.Time) bool {
	return now.After(e.expiration)
}

type call[V any] struct {
	done  chan struct{}
	value V
	err   error
}

// InMemoryCache is a thread-safe in-memory Cache
type InMemoryCache[V any] struct {
	mu       sync.RWMutex
	items    map[string]*entry[V]
	inflight map[string]*call[V]
	stop     chan struct{}
	stopOnce sync.Once
}

// NewInMemoryCache creates a cache that drops expired entries every cleanupInterval
func NewInMemoryCache[V any](cleanupInterval time.Duration) *InMemoryCache[V] {
	c := &InMemoryCache[V]{
		items:    make(map[string]*entry[V]),
		inflight: make(map[string]*call[V]),
		stop:     make(chan struct{}),
	}
	go c.startCleanup(cleanupInterval)
	return c
}

func (c *InMemoryCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero V
	item, found := c.items[key]
	if !found || item.isExpired(time.Now()) {
		return zero, false
	}
	return item.value, true
}

func (c *InMemoryCache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &entry[V]{value: value, expiration: time.Now().Add(ttl)}
}

func (c *InMemoryCache[V]) GetOrSet(key string, ttl time.Duration, compute func() (V, error)) (V, error) {
	c.mu.Lock()
	if item, found := c.items[key]; found && !item.isExpired(time.Now()) {
		c.mu.Unlock()
		return item.value, nil
	}
	if pending, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		<-pending.done
		return pending.value, pending.err
	}
	current := &call[V]{done: make(chan struct{}), err: ErrComputePanicked}
	c.inflight[key] = current
	c.mu.Unlock()

	// waiters see ErrComputePanicked if compute panics; the panic reaches this caller
	defer func() {
		c.mu.Lock()
		delete(c.inflight, key)
		if current.err == nil {
			c.items[key] = &entry[V]{value: current.value, expiration: time.Now().Add(ttl)}
		}
		c.mu.Unlock()
		close(current.done)
	}()

	current.value, current.err = compute()
	return current.value, current.err
}

func (c *InMemoryCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

func (c *InMemoryCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*entry[V])
}

func (c *InMemoryCache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

func (c *InMemoryCache[V]) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *InMemoryCache[V]) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

func (c *InMemoryCache[V]) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, item := range c.items {
		if item.isExpired(now) {
			delete(c.items, key)
		}
	}
}
