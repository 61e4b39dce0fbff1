package cache

import (
	"context"
	"encoding/json"
	"time"

	"category-api/internal/logger"
)

// Entry is one named value kept in a Store and filled on demand. Values are
// stored as JSON snapshots, so every Get hands back a private copy that callers
// may mutate freely.
type Entry[T any] struct {
	store Store
	key   string
	ttl   time.Duration
	log   logger.Logger
}

// NewEntry binds key in store to values of type T.
func NewEntry[T any](store Store, key string, ttl time.Duration, log logger.Logger) *Entry[T] {
	return &Entry[T]{store: store, key: key, ttl: ttl, log: log}
}

// Get returns the cached value, calling load and caching its result on a miss.
// Cache failures are logged and degrade to calling load; only load errors are
// returned.
func (e *Entry[T]) Get(ctx context.Context, load func(context.Context) (T, error)) (T, error) {
	raw, err := e.store.Get(ctx, e.key)
	if err != nil {
		e.log.Error(err, "cache read failed for "+e.key)
	}
	if raw != nil {
		var v T
		err := json.Unmarshal(raw, &v)
		if err == nil {
			return v, nil
		}
		e.log.Error(err, "discarding undecodable cache entry "+e.key)
	}

	e.log.Debug("cache miss for " + e.key)
	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	encoded, err := json.Marshal(v)
	if err != nil {
		e.log.Error(err, "failed to encode cache entry "+e.key)
		return v, nil
	}
	if err := e.store.Set(ctx, e.key, encoded, e.ttl); err != nil {
		e.log.Error(err, "cache write failed for "+e.key)
	}
	return v, nil
}

// Invalidate drops the cached value so the next Get reloads it.
func (e *Entry[T]) Invalidate(ctx context.Context) error {
	return e.store.Delete(ctx, e.key)
}
