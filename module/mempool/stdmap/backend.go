package stdmap

import (
	"sync"
)

// Backend implements a generic memory pool backed by a Go map. Pools built on it
// perform their writes through Run, so that secondary indices are updated in the same
// critical section as the entities.
type Backend[K comparable, V any] struct {
	sync.RWMutex
	entities map[K]V
}

// NewBackend creates a new memory pool backend.
func NewBackend[K comparable, V any]() *Backend[K, V] {
	return &Backend[K, V]{
		entities: make(map[K]V),
	}
}

// Get returns the given item from the pool.
func (b *Backend[K, V]) Get(key K) (V, bool) {
	b.RLock()
	defer b.RUnlock()
	value, ok := b.entities[key]
	return value, ok
}

// Run executes a function giving it exclusive access to the backdata.
func (b *Backend[K, V]) Run(f func(entities map[K]V) error) error {
	b.Lock()
	defer b.Unlock()
	return f(b.entities)
}

// Size will return the size of the backend.
func (b *Backend[K, V]) Size() uint {
	b.RLock()
	defer b.RUnlock()
	return uint(len(b.entities))
}

// All returns a copy of all entities in the pool.
func (b *Backend[K, V]) All() map[K]V {
	b.RLock()
	defer b.RUnlock()
	all := make(map[K]V, len(b.entities))
	for key, value := range b.entities {
		all[key] = value
	}
	return all
}
