package cache

import (
	"sync"
	"time"
)

type (
	InMemory[V any] struct {
		storage map[string]entry[V]

		mx sync.RWMutex
	}

	entry[V any] struct {
		value     V
		expiresAt time.Time
	}
)

func NewInMemory[V any]() *InMemory[V] {
	return &InMemory[V]{
		storage: make(map[string]entry[V], 100), //nolint:mnd // initial capacity
	}
}

func (c *InMemory[V]) Get(key string) (V, bool) {
	c.mx.RLock()
	defer c.mx.RUnlock()

	e, ok := c.storage[key]
	if !ok || time.Now().After(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value for ttl. Expired entries are evicted in the background.
func (c *InMemory[V]) Set(key string, value V, ttl time.Duration) {
	expiresAt := time.Now().Add(ttl)

	c.mx.Lock()
	c.storage[key] = entry[V]{value: value, expiresAt: expiresAt}
	c.mx.Unlock()

	time.AfterFunc(ttl+time.Minute, func() { // add extra minute
		c.mx.Lock()
		defer c.mx.Unlock()
		if e, ok := c.storage[key]; ok && e.expiresAt.Equal(expiresAt) {
			delete(c.storage, key)
		}
	})
}

func (c *InMemory[V]) Delete(key string) {
	c.mx.Lock()
	defer c.mx.Unlock()
	delete(c.storage, key)
}
