// Package repo implements the data persistence layer, backed by GORM. This
// file provides the write path of the analytics event log.
//
// The log is append-only: rows are inserted once and never updated or
// deleted by the application. Each insert is a single atomic row append, so
// no multi-statement transactions are needed.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/aalmaz/go-site-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for consistency across layers.
var ErrNotFound = gorm.ErrRecordNotFound

// InsertEvent appends one analytics event. The row's timestamp is always
// assigned here from the supplied server clock (epoch milliseconds); any
// client-supplied value on e is discarded so that time-windowed reports
// cannot be skewed by client clocks.
func InsertEvent(ctx context.Context, db *gorm.DB, e *domain.AnalyticsEvent, now time.Time) error {
	e.Timestamp = now.UnixMilli()
	return db.WithContext(ctx).Create(e).Error
}
