package badger

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tapnet/tap-core/module"
)

func withLimit[K comparable, V any](limit uint) func(*Cache[K, V]) {
	return func(c *Cache[K, V]) {
		c.limit = limit
	}
}

type storeFunc[K comparable, V any] func(K, V) error

func withStore[K comparable, V any](store storeFunc[K, V]) func(*Cache[K, V]) {
	return func(c *Cache[K, V]) {
		c.store = store
	}
}

func noStore[K comparable, V any](K, V) error {
	return fmt.Errorf("no store function for cache put available")
}

type retrieveFunc[K comparable, V any] func(K) (V, error)

func withRetrieve[K comparable, V any](retrieve retrieveFunc[K, V]) func(*Cache[K, V]) {
	return func(c *Cache[K, V]) {
		c.retrieve = retrieve
	}
}

func noRetrieve[K comparable, V any](K) (V, error) {
	var zero V
	return zero, fmt.Errorf("no retrieve function for cache get available")
}

// Cache is a read-through LRU cache in front of a badger lookup.
type Cache[K comparable, V any] struct {
	metrics  module.CacheMetrics
	limit    uint
	store    storeFunc[K, V]
	retrieve retrieveFunc[K, V]
	resource string
	cache    *lru.Cache[K, V]
}

func newCache[K comparable, V any](collector module.CacheMetrics, resource string, options ...func(*Cache[K, V])) *Cache[K, V] {
	c := Cache[K, V]{
		metrics:  collector,
		limit:    1000,
		store:    noStore[K, V],
		retrieve: noRetrieve[K, V],
		resource: resource,
	}
	for _, option := range options {
		option(&c)
	}
	cache, err := lru.New[K, V](int(c.limit))
	if err != nil {
		// only a zero limit is rejected, which is a misconfiguration of the caller
		panic(fmt.Sprintf("could not create %s cache with limit %d: %v", resource, c.limit, err))
	}
	c.cache = cache
	return &c
}

// Get will try to retrieve the resource from cache first, and then from the
// injected retrieve function. Errors of the retrieve function are passed through.
func (c *Cache[K, V]) Get(key K) (V, error) {

	// check if we have it in the cache
	resource, cached := c.cache.Get(key)
	if cached {
		c.metrics.CacheHit(c.resource)
		return resource, nil
	}

	// get it from the database
	c.metrics.CacheMiss(c.resource)
	value, err := c.retrieve(key)
	if err != nil {
		var zero V
		return zero, err
	}

	// cache the resource and eject least recently used one if we reached limit
	c.cache.Add(key, value)

	return value, nil
}

// Put will add a resource to the cache with the given key.
func (c *Cache[K, V]) Put(key K, value V) error {

	// try to store the resource
	err := c.store(key, value)
	if err != nil {
		return fmt.Errorf("could not store resource: %w", err)
	}

	// cache the resource and eject least recently used one if we reached limit
	c.cache.Add(key, value)

	return nil
}

// Remove drops the resource from the cache only.
func (c *Cache[K, V]) Remove(key K) {
	c.cache.Remove(key)
}
