// Package services – AnalyticsService
//
// This file implements the AnalyticsService, which owns the two halves of
// first-party analytics: the write path (validate, default, classify, append)
// and the read path (the composed aggregate report). Validation happens
// before any side effect, and the bot verdict is computed exactly once per
// event so report queries filter on a stored boolean column.
package services

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"gorm.io/gorm"

	"github.com/aalmaz/go-site-backend/internal/botfilter"
	"github.com/aalmaz/go-site-backend/internal/domain"
	"github.com/aalmaz/go-site-backend/internal/geo"
	"github.com/aalmaz/go-site-backend/internal/repo"
)

// reportWindow is the rolling window of the monthly engagement reports.
const reportWindow = 30 * 24 * time.Hour

// EventInput carries one ingestion request after transport decoding.
// Body fields come from the client JSON; geo fields come from
// edge-network-injected headers and are already percent-decoded.
type EventInput struct {
	VisitorID string
	SessionID string
	EventType string
	EventName string
	Title     string
	Slug      string
	Referrer  string

	Browser          string
	BrowserVersion   string
	Engine           string
	EngineVersion    string
	DeviceType       string
	DeviceVendor     string
	DeviceModel      string
	Language         string
	OS               string
	OSVersion        string
	ScreenResolution string
	UserAgent        string
	StatusCode       int

	CountryCode string
	Continent   string
	Region      string
	RegionCode  string
	City        string
	Latitude    float64
	Longitude   float64
	Timezone    string
}

// Summary is the composed aggregate report returned by the insight endpoint.
// Field names mirror the JSON contract consumed by the dashboard frontend.
type Summary struct {
	MonthlyPageViewsStats     int64               `json:"monthlyPageViewsStats"`
	MonthlyVisitsStats        int64               `json:"monthlyVisitsStats"`
	MonthlyVisitorsStats      int64               `json:"monthlyVisitorsStats"`
	MonthlyVisitDurationStats float64             `json:"monthlyVisitDurationStats"`
	MonthlyBounceRateStats    float64             `json:"monthlyBounceRateStats"`
	MonthlyEntryPagesStats    []repo.PageStat     `json:"monthlyEntryPagesStats"`
	MonthlyExitPagesStats     []repo.PageStat     `json:"monthlyExitPagesStats"`
	MonthlyLanguageStats      []repo.LanguageStat `json:"monthlyLanguageStats"`
	MonthlyCountries          []repo.CountryStat  `json:"monthlyCountries"`
	MonthlyCities             []repo.CityStat     `json:"monthlyCities"`
	MonthlyReferrers          []repo.ReferrerStat `json:"monthlyReferrers"`
	MonthlySlugs              []repo.SlugStat     `json:"monthlySlugs"`
	MonthlyBrowsers           []repo.BrowserStat  `json:"monthlyBrowsers"`
	MonthlyOperatingSystems   []repo.OSStat       `json:"monthlyOperatingSystems"`
	MonthlyDeviceTypes        []repo.DeviceStat   `json:"monthlyDeviceTypes"`
}

// AnalyticsService implements the analytics use-cases.
type AnalyticsService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// SiteDomain excludes self-referrals from the referrer breakdown
	// (e.g. "mysite.dev").
	SiteDomain string

	// SiteTitle excludes the site's own identity pages from the content
	// breakdown by title substring.
	SiteTitle string

	// Now is the server clock; overridable in tests. Defaults to time.Now.
	Now func() time.Time
}

// NewAnalyticsService constructs an AnalyticsService with the real clock.
func NewAnalyticsService(db *gorm.DB, siteDomain, siteTitle string) *AnalyticsService {
	return &AnalyticsService{
		DB:         db,
		SiteDomain: siteDomain,
		SiteTitle:  siteTitle,
		Now:        time.Now,
	}
}

// Record validates the input, fills optional fields with the "Unknown"
// sentinels, derives country name and flag emoji from the country code,
// classifies bot-ness, and appends one immutable event row with a
// server-assigned timestamp.
//
// Returns ErrMissingField (wrapped with the field name) when a required
// field is absent; nothing is written in that case.
func (s *AnalyticsService) Record(ctx context.Context, in EventInput) error {
	if err := validateRequired(in); err != nil {
		return err
	}

	e := &domain.AnalyticsEvent{
		VisitorID: in.VisitorID,
		SessionID: in.SessionID,
		EventType: in.EventType,
		EventName: in.EventName,
		Title:     in.Title,
		Slug:      in.Slug,
		Referrer:  in.Referrer,

		CountryCode: orUnknown(in.CountryCode),
		Country:     geo.CountryName(in.CountryCode),
		Flag:        geo.FlagEmoji(in.CountryCode),
		Continent:   orUnknown(in.Continent),
		Region:      orUnknown(in.Region),
		RegionCode:  orUnknown(in.RegionCode),
		City:        orUnknown(in.City),
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Timezone:    orUnknown(in.Timezone),

		Browser:          orUnknown(in.Browser),
		BrowserVersion:   in.BrowserVersion,
		Engine:           orUnknown(in.Engine),
		EngineVersion:    in.EngineVersion,
		DeviceType:       orUnknown(in.DeviceType),
		DeviceVendor:     orUnknown(in.DeviceVendor),
		DeviceModel:      orUnknown(in.DeviceModel),
		Language:         in.Language,
		OS:               orUnknown(in.OS),
		OSVersion:        in.OSVersion,
		ScreenResolution: in.ScreenResolution,
		UserAgent:        orUnknown(in.UserAgent),

		StatusCode: in.StatusCode,
		IsBot:      botfilter.IsBot(in.UserAgent, in.Referrer),
	}

	return repo.InsertEvent(ctx, s.DB, e, s.Now())
}

// Summary composes the full report battery: windowed engagement stats plus
// the unwindowed top-10 breakdowns. Reports are independent; the first
// failing query aborts the composition.
func (s *AnalyticsService) Summary(ctx context.Context) (*Summary, error) {
	since := s.Now().Add(-reportWindow).UnixMilli()
	out := &Summary{}
	var err error

	if out.MonthlyPageViewsStats, err = repo.MonthlyPageViews(ctx, s.DB, since); err != nil {
		return nil, err
	}
	if out.MonthlyVisitsStats, err = repo.MonthlySessions(ctx, s.DB, since); err != nil {
		return nil, err
	}
	if out.MonthlyVisitorsStats, err = repo.MonthlyVisitors(ctx, s.DB, since); err != nil {
		return nil, err
	}
	if out.MonthlyVisitDurationStats, err = repo.MonthlyVisitDuration(ctx, s.DB, since); err != nil {
		return nil, err
	}
	if out.MonthlyBounceRateStats, err = repo.MonthlyBounceRate(ctx, s.DB, since); err != nil {
		return nil, err
	}
	if out.MonthlyEntryPagesStats, err = repo.MonthlyEntryPages(ctx, s.DB, since); err != nil {
		return nil, err
	}
	if out.MonthlyExitPagesStats, err = repo.MonthlyExitPages(ctx, s.DB, since); err != nil {
		return nil, err
	}
	if out.MonthlyLanguageStats, err = repo.MonthlyLanguages(ctx, s.DB, since); err != nil {
		return nil, err
	}
	if out.MonthlyCountries, err = repo.TopCountries(ctx, s.DB); err != nil {
		return nil, err
	}
	if out.MonthlyCities, err = repo.TopCities(ctx, s.DB); err != nil {
		return nil, err
	}
	if out.MonthlyReferrers, err = repo.TopReferrers(ctx, s.DB, s.SiteDomain); err != nil {
		return nil, err
	}
	if out.MonthlySlugs, err = repo.TopSlugs(ctx, s.DB, s.SiteTitle); err != nil {
		return nil, err
	}
	if out.MonthlyBrowsers, err = repo.TopBrowsers(ctx, s.DB); err != nil {
		return nil, err
	}
	if out.MonthlyOperatingSystems, err = repo.TopOperatingSystems(ctx, s.DB); err != nil {
		return nil, err
	}
	if out.MonthlyDeviceTypes, err = repo.TopDeviceTypes(ctx, s.DB); err != nil {
		return nil, err
	}
	return out, nil
}

// ViewsBySlug returns the exact view count for a blog slug. The slug is
// normalized to the canonical "/blog/<slug>" form and percent-decoded so
// that escaped and unescaped variants of the same path compare equal.
func (s *AnalyticsService) ViewsBySlug(ctx context.Context, slug string) (int64, error) {
	path := "/blog/" + slug
	if decoded, err := url.PathUnescape(path); err == nil {
		path = decoded
	}
	return repo.CountViewsBySlug(ctx, s.DB, path)
}

// TotalViews returns the unfiltered row count of the whole event log.
func (s *AnalyticsService) TotalViews(ctx context.Context) (int64, error) {
	return repo.CountEvents(ctx, s.DB)
}

// validateRequired rejects the input when any required field is absent,
// before any side-effecting operation is attempted.
func validateRequired(in EventInput) error {
	required := []struct {
		name  string
		value string
	}{
		{"visitorId", in.VisitorID},
		{"sessionId", in.SessionID},
		{"eventType", in.EventType},
		{"title", in.Title},
		{"slug", in.Slug},
		{"referrer", in.Referrer},
	}
	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}
	return nil
}

// orUnknown substitutes the "Unknown" sentinel for empty optional fields so
// downstream GROUP BY aggregation stays stable.
func orUnknown(v string) string {
	if v == "" {
		return geo.Unknown
	}
	return v
}
