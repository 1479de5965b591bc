// Package repo implements the data persistence layer, backed by GORM. This
// file is the read path of the analytics log: a fixed battery of aggregate
// report queries, each independently computable.
//
// Conventions shared by the battery:
//   - All queries are parameterized; pattern lists are never interpolated
//     into query text. Bot filtering uses the isBot column stored at insert
//     time rather than LIKE clauses over user agents.
//   - Rolling-window reports take the window start as epoch milliseconds
//     (computed by the caller, typically now - 30 days) and consider only
//     non-bot pageview events.
//   - "Top N" breakdowns are unwindowed, exclude bots, and are capped at 10
//     rows ordered by count descending. Tie order among equal counts is
//     whatever the storage engine yields; callers must not rely on it.
//   - Referrer and slug breakdowns additionally require a 2xx status and
//     exclude self-referrals / the site's own identity pages. The windowed
//     engagement reports deliberately carry no status filter.
package repo

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"github.com/aalmaz/go-site-backend/internal/domain"
	"github.com/aalmaz/go-site-backend/internal/geo"
)

// topLimit caps every "top N" breakdown.
const topLimit = 10

// monthlyBase is the shared predicate of the rolling-window reports.
const monthlyBase = "eventType = 'pageview' AND timestamp > ? AND isBot = 0"

// CountryStat is one row of the top-countries breakdown.
type CountryStat struct {
	Flag    string `json:"flag"`
	Country string `json:"country"`
	Total   int64  `json:"total"`
}

// CityStat is one row of the top-cities breakdown.
type CityStat struct {
	Flag  string `json:"flag"`
	City  string `json:"city"`
	Total int64  `json:"total"`
}

// ReferrerStat is one row of the top-referrers breakdown.
type ReferrerStat struct {
	Referrer string `json:"referrer"`
	Total    int64  `json:"total"`
}

// SlugStat is one row of the top-content breakdown.
type SlugStat struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Total int64  `json:"total"`
}

// BrowserStat is one row of the top-browsers breakdown.
type BrowserStat struct {
	Browser string `json:"browser"`
	Total   int64  `json:"total"`
}

// OSStat is one row of the top-operating-systems breakdown.
type OSStat struct {
	OS    string `json:"os" gorm:"column:os"`
	Total int64  `json:"total"`
}

// DeviceStat is one row of the top-device-types breakdown.
type DeviceStat struct {
	Type  string `json:"type" gorm:"column:deviceType"`
	Total int64  `json:"total"`
}

// PageStat is one row of the entry/exit page reports.
type PageStat struct {
	Slug  string `json:"slug"`
	Total int64  `json:"total"`
}

// LanguageStat is one row of the language distribution report.
type LanguageStat struct {
	Language string `json:"language"`
	Total    int64  `json:"total"`
}

// CountEvents returns the total number of rows in the event log, bots
// included. The unfiltered total is deliberate: it mirrors the public
// view counter, while the per-dimension breakdowns exclude bots.
func CountEvents(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.AnalyticsEvent{}).Count(&count).Error
	return count, err
}

// CountViewsBySlug returns the number of rows whose slug equals slug exactly.
func CountViewsBySlug(ctx context.Context, db *gorm.DB, slug string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.AnalyticsEvent{}).
		Where("slug = ?", slug).
		Count(&count).Error
	return count, err
}

// MonthlyPageViews counts non-bot pageview events since the window start.
func MonthlyPageViews(ctx context.Context, db *gorm.DB, sinceMillis int64) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM analytics WHERE "+monthlyBase, sinceMillis).
		Scan(&count).Error
	return count, err
}

// MonthlySessions counts distinct sessions with non-bot pageviews in the window.
func MonthlySessions(ctx context.Context, db *gorm.DB, sinceMillis int64) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Raw("SELECT COUNT(DISTINCT sessionId) FROM analytics WHERE "+monthlyBase, sinceMillis).
		Scan(&count).Error
	return count, err
}

// MonthlyVisitors counts distinct visitors with non-bot pageviews in the window.
func MonthlyVisitors(ctx context.Context, db *gorm.DB, sinceMillis int64) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Raw("SELECT COUNT(DISTINCT visitorId) FROM analytics WHERE "+monthlyBase, sinceMillis).
		Scan(&count).Error
	return count, err
}

// MonthlyVisitDuration averages per-session duration (max - min timestamp,
// milliseconds) across sessions in the window. An empty window yields 0.
func MonthlyVisitDuration(ctx context.Context, db *gorm.DB, sinceMillis int64) (float64, error) {
	var avg sql.NullFloat64
	err := db.WithContext(ctx).
		Raw(`SELECT AVG(sessionDuration) FROM (
			SELECT (MAX(timestamp) - MIN(timestamp)) AS sessionDuration
			FROM analytics WHERE `+monthlyBase+` GROUP BY sessionId
		)`, sinceMillis).
		Scan(&avg).Error
	if err != nil || !avg.Valid {
		return 0, err
	}
	return avg.Float64, nil
}

// MonthlyBounceRate returns the percentage (0-100) of sessions in the window
// with exactly one pageview. An empty window yields 0, never a
// division-by-zero error.
func MonthlyBounceRate(ctx context.Context, db *gorm.DB, sinceMillis int64) (float64, error) {
	var rate sql.NullFloat64
	err := db.WithContext(ctx).
		Raw(`SELECT
			(SELECT COUNT(*) FROM (
				SELECT sessionId FROM analytics WHERE `+monthlyBase+` GROUP BY sessionId HAVING COUNT(*) = 1
			)) * 100.0 /
			(SELECT COUNT(DISTINCT sessionId) FROM analytics WHERE `+monthlyBase+`)`,
			sinceMillis, sinceMillis).
		Scan(&rate).Error
	if err != nil || !rate.Valid {
		return 0, err
	}
	return rate.Float64, nil
}

// MonthlyEntryPages counts, per slug, the sessions whose first pageview (by
// minimum timestamp) landed on that slug.
func MonthlyEntryPages(ctx context.Context, db *gorm.DB, sinceMillis int64) ([]PageStat, error) {
	var stats []PageStat
	err := db.WithContext(ctx).
		Raw(`SELECT slug, COUNT(*) AS total FROM (
			SELECT slug FROM analytics a WHERE `+monthlyBase+`
			AND timestamp = (SELECT MIN(timestamp) FROM analytics WHERE sessionId = a.sessionId AND eventType = 'pageview')
		) GROUP BY slug ORDER BY total DESC`, sinceMillis).
		Scan(&stats).Error
	return stats, err
}

// MonthlyExitPages counts, per slug, the sessions whose last pageview (by
// maximum timestamp) was on that slug.
func MonthlyExitPages(ctx context.Context, db *gorm.DB, sinceMillis int64) ([]PageStat, error) {
	var stats []PageStat
	err := db.WithContext(ctx).
		Raw(`SELECT slug, COUNT(*) AS total FROM (
			SELECT slug FROM analytics a WHERE `+monthlyBase+`
			AND timestamp = (SELECT MAX(timestamp) FROM analytics WHERE sessionId = a.sessionId AND eventType = 'pageview')
		) GROUP BY slug ORDER BY total DESC`, sinceMillis).
		Scan(&stats).Error
	return stats, err
}

// MonthlyLanguages counts non-bot events in the window grouped by language.
// Unlike the other windowed reports this one is not restricted to pageview
// events.
func MonthlyLanguages(ctx context.Context, db *gorm.DB, sinceMillis int64) ([]LanguageStat, error) {
	var stats []LanguageStat
	err := db.WithContext(ctx).
		Raw(`SELECT language, COUNT(*) AS total FROM analytics
			WHERE timestamp > ? AND isBot = 0
			GROUP BY language ORDER BY total DESC`, sinceMillis).
		Scan(&stats).Error
	return stats, err
}

// TopCountries returns the ten most frequent (flag, country) pairs among
// non-bot events. Empty values fall back to the globe flag / Unknown.
func TopCountries(ctx context.Context, db *gorm.DB) ([]CountryStat, error) {
	var stats []CountryStat
	err := db.WithContext(ctx).
		Raw(`SELECT flag, country, COUNT(country) AS total FROM analytics
			WHERE isBot = 0 GROUP BY flag, country ORDER BY total DESC LIMIT ?`, topLimit).
		Scan(&stats).Error
	for i := range stats {
		if stats[i].Flag == "" {
			stats[i].Flag = geo.GlobeFlag
		}
		if stats[i].Country == "" {
			stats[i].Country = geo.Unknown
		}
	}
	return stats, err
}

// TopCities returns the ten most frequent (flag, city) pairs among non-bot
// events.
func TopCities(ctx context.Context, db *gorm.DB) ([]CityStat, error) {
	var stats []CityStat
	err := db.WithContext(ctx).
		Raw(`SELECT flag, city, COUNT(city) AS total FROM analytics
			WHERE isBot = 0 GROUP BY flag, city ORDER BY total DESC LIMIT ?`, topLimit).
		Scan(&stats).Error
	for i := range stats {
		if stats[i].Flag == "" {
			stats[i].Flag = geo.GlobeFlag
		}
		if stats[i].City == "" {
			stats[i].City = geo.Unknown
		}
	}
	return stats, err
}

// TopReferrers returns the ten most frequent referrers among successful
// (2xx) non-bot events, excluding self-referrals from the site's own domain.
// The exclusion pattern is bound as a parameter, never spliced into SQL.
func TopReferrers(ctx context.Context, db *gorm.DB, siteDomain string) ([]ReferrerStat, error) {
	var stats []ReferrerStat
	err := db.WithContext(ctx).
		Raw(`SELECT referrer, COUNT(referrer) AS total FROM analytics
			WHERE referrer NOT LIKE ? AND statusCode >= 200 AND statusCode < 300 AND isBot = 0
			GROUP BY referrer ORDER BY COUNT(referrer) DESC LIMIT ?`,
			"%."+siteDomain+"%", topLimit).
		Scan(&stats).Error
	for i := range stats {
		if stats[i].Referrer == "" {
			stats[i].Referrer = geo.Unknown
		}
	}
	return stats, err
}

// TopSlugs returns the ten most viewed content slugs among successful (2xx)
// non-bot events, excluding the site's own identity pages by title.
func TopSlugs(ctx context.Context, db *gorm.DB, siteTitle string) ([]SlugStat, error) {
	var stats []SlugStat
	err := db.WithContext(ctx).
		Raw(`SELECT slug, title, COUNT(slug) AS total FROM analytics
			WHERE title NOT LIKE ? AND statusCode >= 200 AND statusCode < 300 AND isBot = 0
			GROUP BY slug ORDER BY total DESC LIMIT ?`,
			"%"+siteTitle+"%", topLimit).
		Scan(&stats).Error
	for i := range stats {
		if stats[i].Slug == "" {
			stats[i].Slug = geo.Unknown
		}
		if stats[i].Title == "" {
			stats[i].Title = geo.Unknown
		}
	}
	return stats, err
}

// TopBrowsers returns the ten most frequent browsers among non-bot events.
func TopBrowsers(ctx context.Context, db *gorm.DB) ([]BrowserStat, error) {
	var stats []BrowserStat
	err := db.WithContext(ctx).
		Raw(`SELECT browser, COUNT(browser) AS total FROM analytics
			WHERE isBot = 0 GROUP BY browser ORDER BY total DESC LIMIT ?`, topLimit).
		Scan(&stats).Error
	for i := range stats {
		if stats[i].Browser == "" {
			stats[i].Browser = geo.Unknown
		}
	}
	return stats, err
}

// TopOperatingSystems returns the ten most frequent operating systems among
// non-bot events.
func TopOperatingSystems(ctx context.Context, db *gorm.DB) ([]OSStat, error) {
	var stats []OSStat
	err := db.WithContext(ctx).
		Raw(`SELECT os, COUNT(os) AS total FROM analytics
			WHERE isBot = 0 GROUP BY os ORDER BY total DESC LIMIT ?`, topLimit).
		Scan(&stats).Error
	for i := range stats {
		if stats[i].OS == "" {
			stats[i].OS = geo.Unknown
		}
	}
	return stats, err
}

// TopDeviceTypes returns the ten most frequent device types among non-bot
// events.
func TopDeviceTypes(ctx context.Context, db *gorm.DB) ([]DeviceStat, error) {
	var stats []DeviceStat
	err := db.WithContext(ctx).
		Raw(`SELECT deviceType, COUNT(deviceType) AS total FROM analytics
			WHERE isBot = 0 GROUP BY deviceType ORDER BY total DESC LIMIT ?`, topLimit).
		Scan(&stats).Error
	for i := range stats {
		if stats[i].Type == "" {
			stats[i].Type = geo.Unknown
		}
	}
	return stats, err
}
