package storage

import (
	"context"
	"sync"
)

// Collection is a JSON array persisted under a single key.
//
// Every mutation rewrites the whole array, so Mutate holds the collection
// lock across load, callback and write. Two Mutate calls on the same
// Collection therefore never interleave. Only one Collection per key
// should exist per Store.
type Collection[T any] struct {
	store Store
	key   string
	mu    sync.Mutex
}

// NewCollection binds a collection to key in store
func NewCollection[T any](store Store, key string) *Collection[T] {
	return &Collection[T]{store: store, key: key}
}

// Key returns the storage key backing the collection
func (c *Collection[T]) Key() string {
	return c.key
}

// Load returns the stored items in storage order. An absent key loads as
// an empty slice.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// Mutate runs fn over the current items and persists the slice it returns.
// Nothing is written when fn returns an error.
func (c *Collection[T]) Mutate(ctx context.Context, fn func(items []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}

	next, err := fn(items)
	if err != nil {
		return err
	}
	if next == nil {
		next = []T{}
	}

	return c.store.Set(ctx, c.key, next)
}

// Replace overwrites the whole collection with items.
func (c *Collection[T]) Replace(ctx context.Context, items []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if items == nil {
		items = []T{}
	}
	return c.store.Set(ctx, c.key, items)
}

func (c *Collection[T]) load(ctx context.Context) ([]T, error) {
	var items []T
	found, err := c.store.Get(ctx, c.key, &items)
	if err != nil {
		return nil, err
	}
	if !found || items == nil {
		return []T{}, nil
	}
	return items, nil
}
