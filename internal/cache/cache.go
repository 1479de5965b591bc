// Package cache implements the cache-aside layer used for expensive derived
// data (upstream API aggregations, content listings). A Store is a persistent
// key/value table with per-entry expiry; WithCache wraps an arbitrary
// producer function behind a string key and a TTL.
//
// The cache is best-effort and never a correctness dependency: store read
// failures degrade to a forced miss, and store write failures degrade to
// "computed but not persisted". Only producer errors are surfaced to callers.
//
// There is deliberately no stampede protection: two concurrent misses for the
// same key may both invoke the producer and both write, last write wins.
package cache

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// Store is the persistence contract behind WithCache.
//
// Get must report (nil, false, nil) for missing or expired keys; expiry
// filtering is the store's job so callers never see stale bytes.
// Set must upsert: a write replaces any existing entry for the key.
// DeleteIfOlderThan removes the entry only when it was created before the
// given instant; it supports proactive invalidation when an external source
// (e.g. a content file) changed more recently than the cache was populated.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteIfOlderThan(ctx context.Context, key string, createdBefore time.Time) error
}

// WithCache returns the value stored under key when present and fresh,
// otherwise invokes producer exactly once, persists its result with expiry
// now+ttl, and returns it.
//
// Failure semantics:
//   - Store read errors and corrupted stored values are treated as a miss.
//   - Producer errors propagate unchanged; nothing is written.
//   - Store write errors are logged and swallowed; the freshly computed
//     value is still returned.
func WithCache[T any](ctx context.Context, store Store, key string, ttl time.Duration, producer func(context.Context) (T, error)) (T, error) {
	if raw, ok, err := store.Get(ctx, key); err == nil && ok {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		// Corrupted payload: fall through to the producer.
	} else if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
	}

	value, err := producer(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("cache: failed to serialize value")
		return value, nil
	}
	if err := store.Set(ctx, key, raw, ttl); err != nil {
		log.Error().Err(err).Str("key", key).Msg("cache: failed to write key")
	}
	return value, nil
}
