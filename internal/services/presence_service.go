// Package services – PresenceService
//
// This file implements the PresenceService, a small wrapper over the
// online-visitor table. Heartbeats upsert a single row per visitor, and
// reads return a live snapshot; pruning of stale rows rides along on both
// operations inside the repository.
package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/aalmaz/go-site-backend/internal/repo"
)

// PresenceSnapshot is the current online-visitor picture: the live total and
// a slug → visitor-count breakdown.
type PresenceSnapshot struct {
	Total int64            `json:"total"`
	Pages map[string]int64 `json:"pages"`
}

// PresenceService implements the presence use-cases.
type PresenceService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// Now is the server clock; overridable in tests. Defaults to time.Now.
	Now func() time.Time
}

// NewPresenceService constructs a PresenceService with the real clock.
func NewPresenceService(db *gorm.DB) *PresenceService {
	return &PresenceService{DB: db, Now: time.Now}
}

// Heartbeat refreshes the presence row for visitorID on slug. An empty slug
// defaults to "/" in the repository. A missing visitor id is a validation
// error; nothing is written.
func (s *PresenceService) Heartbeat(ctx context.Context, visitorID, slug string) error {
	if visitorID == "" {
		return fmt.Errorf("%w: visitorId", ErrMissingField)
	}
	return repo.UpsertVisitor(ctx, s.DB, visitorID, slug, s.Now())
}

// Online returns the current presence snapshot, pruning stale rows as a
// side effect.
func (s *PresenceService) Online(ctx context.Context) (*PresenceSnapshot, error) {
	total, pages, err := repo.OnlineVisitors(ctx, s.DB, s.Now())
	if err != nil {
		return nil, err
	}
	return &PresenceSnapshot{Total: total, Pages: pages}, nil
}
