// Package store provides process-lifetime, concurrency-safe in-memory collections.
//
// A Store owns one collection guarded by a single RWMutex. Every operation is
// atomic with respect to every other operation on the same Store; there is no
// ordering between different Stores.
package store

import "sync"

// Option configures a Store.
type Option[T any] func(*options[T])

type options[T any] struct {
	clone func(T) T
}

// WithClone sets the copy function applied on the way in and out of the store.
// Needed when T holds pointers, slices or maps.
func WithClone[T any](fn func(T) T) Option[T] {
	return func(o *options[T]) { o.clone = fn }
}

// Store is a keyed arena: a dense slice of records plus an index by key.
type Store[K comparable, T any] struct {
	mu    sync.RWMutex
	key   func(T) K
	clone func(T) T
	items []T
	index map[K]int
}

// New constructs an empty Store keyed by key(T).
func New[K comparable, T any](key func(T) K, opts ...Option[T]) *Store[K, T] {
	o := options[T]{clone: func(v T) T { return v }}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[K, T]{key: key, clone: o.clone, index: make(map[K]int)}
}

// Save inserts v or overwrites the record with the same key.
func (s *Store[K, T]) Save(v T) error {
	return guard(&s.mu, func() error {
		v = s.clone(v)
		k := s.key(v)
		if i, ok := s.index[k]; ok {
			s.items[i] = v
			return nil
		}
		s.index[k] = len(s.items)
		s.items = append(s.items, v)
		return nil
	})
}

// List returns a point-in-time copy of all records in insertion order,
// except that Delete moves the last record into the freed slot.
func (s *Store[K, T]) List() ([]T, error) {
	var out []T
	err := guard(s.mu.RLocker(), func() error {
		out = make([]T, len(s.items))
		for i, v := range s.items {
			out[i] = s.clone(v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a copy of the record with key k.
func (s *Store[K, T]) Get(k K) (T, bool, error) {
	var (
		out T
		ok  bool
	)
	err := guard(s.mu.RLocker(), func() error {
		var i int
		if i, ok = s.index[k]; ok {
			out = s.clone(s.items[i])
		}
		return nil
	})
	return out, ok, err
}

// Update replaces the record matching v's key. It never inserts.
func (s *Store[K, T]) Update(v T) (bool, error) {
	var ok bool
	err := guard(&s.mu, func() error {
		v = s.clone(v)
		var i int
		if i, ok = s.index[s.key(v)]; ok {
			s.items[i] = v
		}
		return nil
	})
	return ok, err
}

// Delete removes the record with key k and reports whether it existed.
func (s *Store[K, T]) Delete(k K) (bool, error) {
	var ok bool
	err := guard(&s.mu, func() error {
		var i int
		if i, ok = s.index[k]; !ok {
			return nil
		}
		last := len(s.items) - 1
		if i != last {
			moved := s.items[last]
			mk := s.key(moved)
			s.items[i] = moved
			s.index[mk] = i
		}
		var zero T
		s.items[last] = zero
		s.items = s.items[:last]
		delete(s.index, k)
		return nil
	})
	return ok, err
}

// Find returns a copy of the first record satisfying pred.
func (s *Store[K, T]) Find(pred func(T) bool) (T, bool, error) {
	var (
		out T
		ok  bool
	)
	err := guard(s.mu.RLocker(), func() error {
		for _, v := range s.items {
			if pred(v) {
				out, ok = s.clone(v), true
				return nil
			}
		}
		return nil
	})
	return out, ok, err
}

// Filter returns copies of all records satisfying pred.
func (s *Store[K, T]) Filter(pred func(T) bool) ([]T, error) {
	var out []T
	err := guard(s.mu.RLocker(), func() error {
		for _, v := range s.items {
			if pred(v) {
				out = append(out, s.clone(v))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Len returns the number of records.
func (s *Store[K, T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
