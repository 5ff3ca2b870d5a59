package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spec-kit/crm-service/internal/store"
)

// Collection is a typed facade over one collection document in the record
// store. Writes go through the collection's lock so concurrent
// read-modify-write sequences cannot lose updates.
type Collection[T any] struct {
	key     string
	backend store.CollectionStore
	locker  store.Locker
}

// NewCollection builds a typed collection bound to a store key.
func NewCollection[T any](key string, backend store.CollectionStore, locker store.Locker) *Collection[T] {
	return &Collection[T]{key: key, backend: backend, locker: locker}
}

// Key returns the collection's store key.
func (c *Collection[T]) Key() string {
	return c.key
}

// All reads the full collection. A never-saved collection reads as empty.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	doc, err := c.backend.Load(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.key, err)
	}
	if doc == nil {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(doc, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.key, err)
	}
	return items, nil
}

// Replace overwrites the full collection.
func (c *Collection[T]) Replace(ctx context.Context, items []T) error {
	unlock := c.locker.LockCollection(c.key)
	defer unlock()
	return c.save(ctx, items)
}

// Mutate runs fn on the current contents and persists its result, all
// under the collection's writer lock. Returning an error from fn aborts
// the write and leaves the collection untouched.
func (c *Collection[T]) Mutate(ctx context.Context, fn func(items []T) ([]T, error)) ([]T, error) {
	unlock := c.locker.LockCollection(c.key)
	defer unlock()

	items, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	updated, err := fn(items)
	if err != nil {
		return nil, err
	}
	if err := c.save(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Append adds items to the end of the collection.
func (c *Collection[T]) Append(ctx context.Context, items ...T) error {
	_, err := c.Mutate(ctx, func(existing []T) ([]T, error) {
		return append(existing, items...), nil
	})
	return err
}

func (c *Collection[T]) save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	doc, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := c.backend.Save(ctx, c.key, doc); err != nil {
		return fmt.Errorf("save %s: %w", c.key, err)
	}
	return nil
}
