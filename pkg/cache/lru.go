// Package cache wraps golang-lru for the immutable chain history the service
// reuses across queries.
package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
)

// LRU a LRU cache extends golang-lru with load-on-miss and hit statistics.
type LRU struct {
	*lru.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// NewLRU create a LRU cache instance.
// maxSize should be > 0, or an error returned.
func NewLRU(maxSize int) (*LRU, error) {
	c, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU{Cache: c}, nil
}

// Loader defines loader to load value.
type Loader func(key interface{}) (interface{}, error)

// GetOrLoad first try to get from cache, do load if missed.
func (l *LRU) GetOrLoad(key interface{}, loader Loader) (interface{}, error) {
	if v, ok := l.Get(key); ok {
		l.hits.Add(1)
		return v, nil
	}
	l.misses.Add(1)
	v, err := loader(key)
	if err != nil {
		return nil, err
	}

	l.Add(key, v)
	return v, nil
}

// Stats returns the hit and miss counts of GetOrLoad.
func (l *LRU) Stats() (hits int64, misses int64) {
	return l.hits.Load(), l.misses.Load()
}
