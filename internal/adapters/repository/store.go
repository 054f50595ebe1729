// Package repository provides bounded in-memory stores for analysis results
// and normalized datasets. Nothing is persisted across process restarts.
package repository

import (
	"container/list"
	"context"
	"sync"

	"github.com/okian/slicktrace/pkg/metrics"
)

// Store is a keyed, bounded cache.
type Store[K comparable, V any] interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key K) (V, error)
	// Put inserts or replaces the value for key, evicting the least
	// recently used entry when full.
	Put(ctx context.Context, key K, value V)
	// Len returns the number of entries.
	Len(ctx context.Context) int
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

// LRU is a Store evicting the least recently used entry.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	ll       *list.List
	items    map[K]*list.Element
	capacity int
	name     string
}

// NewLRU constructs an LRU store.
func NewLRU[K comparable, V any](opts ...Option) *LRU[K, V] {
	cfg := config{capacity: defaultCapacity, name: defaultName}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &LRU[K, V]{
		ll:       list.New(),
		items:    make(map[K]*list.Element, cfg.capacity),
		capacity: cfg.capacity,
		name:     cfg.name,
	}
}

// Get implements Store.Get.
func (s *LRU[K, V]) Get(ctx context.Context, key K) (V, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[key]
	metrics.RecordCacheLookup(s.name, ok)
	if !ok {
		var zero V
		return zero, ErrNotFound
	}
	s.ll.MoveToFront(el)
	return el.Value.(*entry[K, V]).value, nil
}

// Put implements Store.Put.
func (s *LRU[K, V]) Put(ctx context.Context, key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[key]; ok {
		el.Value.(*entry[K, V]).value = value
		s.ll.MoveToFront(el)
		return
	}

	s.items[key] = s.ll.PushFront(&entry[K, V]{key: key, value: value})
	for s.ll.Len() > s.capacity {
		oldest := s.ll.Back()
		s.ll.Remove(oldest)
		delete(s.items, oldest.Value.(*entry[K, V]).key)
		metrics.RecordCacheEviction(s.name)
	}
	metrics.UpdateCacheEntries(s.name, s.ll.Len())
}

// Len implements Store.Len.
func (s *LRU[K, V]) Len(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ll.Len()
}

// Capacity returns the configured bound.
func (s *LRU[K, V]) Capacity() int { return s.capacity }
