package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aalmaz/go-site-backend/internal/domain"
)

func newCacheDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.CacheEntry{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestWithCache_SecondCallIsServedFromCache(t *testing.T) {
	store := NewSQLStore(newCacheDB(t, "cachehit"))
	ctx := context.Background()

	calls := 0
	producer := func(context.Context) (map[string]int, error) {
		calls++
		return map[string]int{"answer": 42}, nil
	}

	first, err := WithCache(ctx, store, "k1", time.Hour, producer)
	if err != nil {
		t.Fatalf("first WithCache: %v", err)
	}
	second, err := WithCache(ctx, store, "k1", time.Hour, producer)
	if err != nil {
		t.Fatalf("second WithCache: %v", err)
	}

	if calls != 1 {
		t.Fatalf("producer invoked %d times, want 1", calls)
	}
	if first["answer"] != 42 || second["answer"] != 42 {
		t.Fatalf("unexpected values: first=%v second=%v", first, second)
	}
}

func TestWithCache_ExpiredEntryInvokesProducerAgain(t *testing.T) {
	store := NewSQLStore(newCacheDB(t, "cacheexpiry"))
	ctx := context.Background()

	calls := 0
	producer := func(context.Context) (string, error) {
		calls++
		return "fresh", nil
	}

	if _, err := WithCache(ctx, store, "k", time.Hour, producer); err != nil {
		t.Fatalf("WithCache: %v", err)
	}

	// Advance the store clock past the TTL; the stored row is now stale.
	base := time.Now()
	store.now = func() time.Time { return base.Add(2 * time.Hour) }

	if _, err := WithCache(ctx, store, "k", time.Hour, producer); err != nil {
		t.Fatalf("WithCache after expiry: %v", err)
	}
	if calls != 2 {
		t.Fatalf("producer invoked %d times, want 2", calls)
	}
}

func TestWithCache_ProducerErrorPropagates(t *testing.T) {
	store := NewSQLStore(newCacheDB(t, "cacheprodfail"))

	wantErr := errors.New("upstream down")
	_, err := WithCache(context.Background(), store, "k", time.Hour, func(context.Context) (int, error) {
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("WithCache error = %v, want %v", err, wantErr)
	}

	// Nothing should have been written.
	if _, ok, _ := store.Get(context.Background(), "k"); ok {
		t.Fatalf("entry written despite producer failure")
	}
}

// failingStore simulates a broken backing store.
type failingStore struct {
	readErr  error
	writeErr error
}

func (f *failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, f.readErr
}
func (f *failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return f.writeErr
}
func (f *failingStore) Delete(context.Context, string) error { return nil }
func (f *failingStore) DeleteIfOlderThan(context.Context, string, time.Time) error {
	return nil
}

func TestWithCache_WriteFailureStillReturnsValue(t *testing.T) {
	store := &failingStore{writeErr: errors.New("disk full")}

	got, err := WithCache(context.Background(), store, "k", time.Hour, func(context.Context) (string, error) {
		return "computed", nil
	})
	if err != nil {
		t.Fatalf("WithCache returned error despite successful producer: %v", err)
	}
	if got != "computed" {
		t.Fatalf("WithCache = %q, want computed", got)
	}
}

func TestWithCache_ReadFailureDegradesToMiss(t *testing.T) {
	store := &failingStore{readErr: errors.New("store unavailable")}

	calls := 0
	got, err := WithCache(context.Background(), store, "k", time.Hour, func(context.Context) (int, error) {
		calls++
		return 7, nil
	})
	if err != nil {
		t.Fatalf("WithCache: %v", err)
	}
	if got != 7 || calls != 1 {
		t.Fatalf("got=%d calls=%d, want 7/1", got, calls)
	}
}

func TestWithCache_CorruptedValueTreatedAsMiss(t *testing.T) {
	store := NewSQLStore(newCacheDB(t, "cachecorrupt"))
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("{not json"), time.Hour); err != nil {
		t.Fatalf("seed corrupted entry: %v", err)
	}

	calls := 0
	got, err := WithCache(ctx, store, "k", time.Hour, func(context.Context) (map[string]string, error) {
		calls++
		return map[string]string{"ok": "yes"}, nil
	})
	if err != nil {
		t.Fatalf("WithCache: %v", err)
	}
	if calls != 1 || got["ok"] != "yes" {
		t.Fatalf("corrupted entry not treated as miss: calls=%d got=%v", calls, got)
	}
}

func TestSQLStore_SetPrunesExpiredRows(t *testing.T) {
	db := newCacheDB(t, "cacheprune")
	store := NewSQLStore(db)
	ctx := context.Background()

	// Seed an already-expired row directly.
	expired := domain.CacheEntry{Key: "old", Value: []byte("{}"), ExpiresAt: time.Now().Unix() - 100, TTL: 10}
	if err := db.Create(&expired).Error; err != nil {
		t.Fatalf("seed expired row: %v", err)
	}

	if err := store.Set(ctx, "new", []byte("{}"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var count int64
	db.Model(&domain.CacheEntry{}).Where("key = ?", "old").Count(&count)
	if count != 0 {
		t.Fatalf("expired row not pruned on write")
	}
}

func TestSQLStore_UpsertReplacesExistingRow(t *testing.T) {
	db := newCacheDB(t, "cacheupsert")
	store := NewSQLStore(db)
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte(`"v1"`), time.Hour); err != nil {
		t.Fatalf("first Set: %v", err)
	}
	if err := store.Set(ctx, "k", []byte(`"v2"`), time.Hour); err != nil {
		t.Fatalf("second Set: %v", err)
	}

	var count int64
	db.Model(&domain.CacheEntry{}).Where("key = ?", "k").Count(&count)
	if count != 1 {
		t.Fatalf("expected one row per key, got %d", count)
	}
	raw, ok, err := store.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get after upsert: ok=%v err=%v", ok, err)
	}
	if string(raw) != `"v2"` {
		t.Fatalf("Get = %s, want \"v2\"", raw)
	}
}

func TestSQLStore_DeleteIfOlderThan(t *testing.T) {
	store := NewSQLStore(newCacheDB(t, "cachestale"))
	ctx := context.Background()

	base := time.Now()
	store.now = func() time.Time { return base }
	if err := store.Set(ctx, "k", []byte("{}"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Source older than the entry: nothing happens.
	if err := store.DeleteIfOlderThan(ctx, "k", base.Add(-time.Minute)); err != nil {
		t.Fatalf("DeleteIfOlderThan: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k"); !ok {
		t.Fatalf("entry deleted although source was older")
	}

	// Source modified after the entry was created: entry must go.
	if err := store.DeleteIfOlderThan(ctx, "k", base.Add(time.Minute)); err != nil {
		t.Fatalf("DeleteIfOlderThan: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatalf("stale entry survived invalidation")
	}
}
