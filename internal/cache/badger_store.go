package cache

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// keyPrefix namespaces cache entries inside the Badger keyspace.
const keyPrefix = "cache:"

// badgerEnvelope wraps a stored value with its creation time so that
// DeleteIfOlderThan can compare against external source modification times.
// Expiry itself is delegated to Badger's native per-entry TTL, so there is
// no prune sweep for this backend.
type badgerEnvelope struct {
	CreatedAt int64           `json:"created_at"`
	Data      json.RawMessage `json:"data"`
}

// BadgerStore is a Store backed by BadgerDB. Selected with
// CACHE_BACKEND=badger; useful when the cache should not share the SQLite
// file with the analytics log.
type BadgerStore struct {
	db  *badger.DB
	now func() time.Time
}

// NewBadgerStore returns a BadgerStore backed by db.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db, now: time.Now}
}

// OpenBadger opens (or creates) a Badger database at path with logging
// disabled; Badger's default logger is too chatty for an embedded cache.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	return badger.Open(opts)
}

// Get returns the value stored under key. Badger drops expired entries
// natively, so a TTL-expired key reads as missing.
func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var env badgerEnvelope
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &env)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return env.Data, true, nil
}

// Set stores value under key with Badger's native TTL.
func (s *BadgerStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	env := badgerEnvelope{
		CreatedAt: s.now().Unix(),
		Data:      value,
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(keyPrefix+key), raw).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
}

// Delete removes the entry for key. Deleting a missing key is not an error.
func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + key))
	})
}

// DeleteIfOlderThan removes the entry for key when it was created before
// createdBefore.
func (s *BadgerStore) DeleteIfOlderThan(ctx context.Context, key string, createdBefore time.Time) error {
	k := []byte(keyPrefix + key)
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		var env badgerEnvelope
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &env)
		}); err != nil {
			// Unreadable entry: drop it so the next lookup is a clean miss.
			return txn.Delete(k)
		}
		if env.CreatedAt < createdBefore.Unix() {
			return txn.Delete(k)
		}
		return nil
	})
}
