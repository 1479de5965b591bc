package cache

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aalmaz/go-site-backend/internal/domain"
)

// SQLStore persists cache entries in the shared SQLite database via GORM.
// Expiry is a stored epoch-seconds column that lookups filter on, and every
// successful write opportunistically prunes expired rows to bound growth.
type SQLStore struct {
	db *gorm.DB

	// now is the clock used for expiry comparisons. Overridable in tests.
	now func() time.Time
}

// NewSQLStore returns a SQLStore backed by db.
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

// Get returns the value stored under key when the entry has not expired.
// Missing and expired entries both report ok=false.
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry domain.CacheEntry
	err := s.db.WithContext(ctx).
		Where("key = ? AND expires_at > ?", key, s.now().Unix()).
		First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	return entry.Value, true, nil
}

// Set upserts the entry for key with expiry now+ttl, then prunes all expired
// rows. The prune is housekeeping only; a prune failure does not fail the
// write.
func (s *SQLStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := s.now().Unix()
	ttlSecs := int64(ttl / time.Second)
	entry := domain.CacheEntry{
		Key:       key,
		Value:     value,
		ExpiresAt: now + ttlSecs,
		TTL:       ttlSecs,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			UpdateAll: true,
		}).
		Create(&entry).Error
	if err != nil {
		return err
	}

	s.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&domain.CacheEntry{})
	return nil
}

// Delete removes the entry for key. Deleting a missing key is not an error.
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).
		Where("key = ?", key).
		Delete(&domain.CacheEntry{}).Error
}

// DeleteIfOlderThan removes the entry for key when its implied creation time
// (expires_at - ttl) predates createdBefore. Used when an external source is
// known to have changed: the next lookup becomes a guaranteed miss.
func (s *SQLStore) DeleteIfOlderThan(ctx context.Context, key string, createdBefore time.Time) error {
	return s.db.WithContext(ctx).
		Where("key = ? AND (expires_at - ttl) < ?", key, createdBefore.Unix()).
		Delete(&domain.CacheEntry{}).Error
}
