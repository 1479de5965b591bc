// Package repo implements the data persistence layer, backed by GORM. This
// file maintains the online-visitor presence table: one row per visitor,
// refreshed on every heartbeat and pruned opportunistically on both reads
// and writes instead of by a background job.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aalmaz/go-site-backend/internal/domain"
)

// PresenceWindow is how long a visitor counts as online after their last
// heartbeat.
const PresenceWindow = 30 * time.Second

// UpsertVisitor records a heartbeat for visitorID on slug at now, replacing
// any previous row for that visitor, then prunes rows older than the
// presence window. An empty slug defaults to "/".
func UpsertVisitor(ctx context.Context, db *gorm.DB, visitorID, slug string, now time.Time) error {
	if slug == "" {
		slug = "/"
	}
	v := domain.OnlineVisitor{
		VisitorID: visitorID,
		Slug:      slug,
		LastSeen:  now.Unix(),
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "visitor_id"}},
			UpdateAll: true,
		}).
		Create(&v).Error
	if err != nil {
		return err
	}

	return pruneVisitors(ctx, db, now)
}

// OnlineVisitors returns the number of visitors seen within the presence
// window and a per-slug breakdown of where they are. Stale rows are pruned
// before counting.
func OnlineVisitors(ctx context.Context, db *gorm.DB, now time.Time) (int64, map[string]int64, error) {
	if err := pruneVisitors(ctx, db, now); err != nil {
		return 0, nil, err
	}

	var rows []domain.OnlineVisitor
	err := db.WithContext(ctx).
		Where("last_seen > ?", now.Add(-PresenceWindow).Unix()).
		Find(&rows).Error
	if err != nil {
		return 0, nil, err
	}

	pages := make(map[string]int64, len(rows))
	for _, r := range rows {
		slug := r.Slug
		if slug == "" {
			slug = "/"
		}
		pages[slug]++
	}
	return int64(len(rows)), pages, nil
}

// pruneVisitors deletes rows whose last heartbeat fell out of the window.
func pruneVisitors(ctx context.Context, db *gorm.DB, now time.Time) error {
	return db.WithContext(ctx).
		Where("last_seen < ?", now.Add(-PresenceWindow).Unix()).
		Delete(&domain.OnlineVisitor{}).Error
}
