// Analytics HTTP handlers.
//
// This file exposes the analytics endpoints:
//   - POST /correct-horse-battery-staple  (event ingestion; obscure path keeps
//     naive scripted scanners away from the write side)
//   - GET  /insight                       (composed aggregate report)
//   - GET  /insight/views                 (lifetime view count)
//   - GET  /insight/:slug                 (per-slug view count)
//
// Handlers are transport-thin: they decode the body and the edge-network geo
// headers, delegate to the analytics service, and translate service errors
// into HTTP results. Geo headers arrive percent-encoded from the edge and are
// decoded here, before the service sees them.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aalmaz/go-site-backend/internal/codestats"
	"github.com/aalmaz/go-site-backend/internal/geo"
	"github.com/aalmaz/go-site-backend/internal/services"
	"github.com/aalmaz/go-site-backend/internal/sysutil"
	"github.com/aalmaz/go-site-backend/internal/utils"
)

// AnalyticsService is the analytics surface the handlers depend on.
type AnalyticsService interface {
	Record(ctx context.Context, in services.EventInput) error
	Summary(ctx context.Context) (*services.Summary, error)
	ViewsBySlug(ctx context.Context, slug string) (int64, error)
	TotalViews(ctx context.Context) (int64, error)
}

// PresenceService is the online-visitor surface the handlers depend on.
type PresenceService interface {
	Heartbeat(ctx context.Context, visitorID, slug string) error
	Online(ctx context.Context) (*services.PresenceSnapshot, error)
}

// CodeStatsService is the typing-XP surface the handlers depend on.
type CodeStatsService interface {
	Stats(ctx context.Context) (*codestats.Stats, error)
	TopLanguages(ctx context.Context) ([]codestats.LanguageStat, error)
}

// Handlers bundles the HTTP handlers and their service dependencies.
type Handlers struct {
	analyticsSvc AnalyticsService
	presenceSvc  PresenceService
	codeStatsSvc CodeStatsService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(analyticsSvc AnalyticsService, presenceSvc PresenceService, codeStatsSvc CodeStatsService) *Handlers {
	return &Handlers{
		analyticsSvc: analyticsSvc,
		presenceSvc:  presenceSvc,
		codeStatsSvc: codeStatsSvc,
	}
}

// IngestEventRequest is the JSON payload for recording one analytics event.
// All fields are optional at the transport layer; the service decides which
// are required and names the missing one in its error.
type IngestEventRequest struct {
	VisitorID        string `json:"visitorId"`
	SessionID        string `json:"sessionId"`
	EventType        string `json:"eventType"`
	EventName        string `json:"eventName"`
	Title            string `json:"title"`
	Slug             string `json:"slug"`
	Referrer         string `json:"referrer"`
	Browser          string `json:"browser"`
	BrowserVersion   string `json:"browserVersion"`
	Engine           string `json:"engine"`
	EngineVersion    string `json:"engineVersion"`
	DeviceType       string `json:"deviceType"`
	DeviceVendor     string `json:"deviceVendor"`
	DeviceModel      string `json:"deviceModel"`
	Language         string `json:"language"`
	OS               string `json:"os"`
	OSVersion        string `json:"osVersion"`
	ScreenResolution string `json:"screenResolution"`
	UserAgent        string `json:"userAgent"`
	StatusCode       int    `json:"statusCode"`
}

// IngestEvent handles POST /correct-horse-battery-staple.
//
// The body carries client-measured fields; geography comes exclusively from
// the edge-network headers (CF-IP*), never from the body, so clients cannot
// spoof their location. Responds 200 with a small acknowledgment on success,
// 400 when a required field is missing, 500 on storage failure.
func (h *Handlers) IngestEvent(c *gin.Context) {
	var req IngestEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	countryCode := c.GetHeader("CF-IPCountry")
	in := services.EventInput{
		VisitorID:        req.VisitorID,
		SessionID:        req.SessionID,
		EventType:        req.EventType,
		EventName:        req.EventName,
		Title:            req.Title,
		Slug:             req.Slug,
		Referrer:         req.Referrer,
		Browser:          req.Browser,
		BrowserVersion:   req.BrowserVersion,
		Engine:           req.Engine,
		EngineVersion:    req.EngineVersion,
		DeviceType:       req.DeviceType,
		DeviceVendor:     req.DeviceVendor,
		DeviceModel:      req.DeviceModel,
		Language:         req.Language,
		OS:               req.OS,
		OSVersion:        req.OSVersion,
		ScreenResolution: req.ScreenResolution,
		UserAgent:        sysutil.FirstNonEmpty(req.UserAgent, c.Request.UserAgent()),
		StatusCode:       req.StatusCode,

		CountryCode: countryCode,
		Continent:   c.GetHeader("CF-IPContinent"),
		City:        geo.DecodeHeader(c.GetHeader("CF-IPCity")),
		Region:      geo.DecodeHeader(c.GetHeader("CF-Region")),
		RegionCode:  c.GetHeader("CF-Region-Code"),
		Latitude:    utils.ParseFloatDefault(c.GetHeader("CF-IPLatitude"), 0),
		Longitude:   utils.ParseFloatDefault(c.GetHeader("CF-IPLongitude"), 0),
		Timezone:    c.GetHeader("CF-Timezone"),
	}

	if err := h.analyticsSvc.Record(c.Request.Context(), in); err != nil {
		if errors.Is(err, services.ErrMissingField) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not record event")
		return
	}

	ok(c, http.StatusOK, gin.H{"message": "A Ok!"})
}

// InsightSummary handles GET /insight and returns the composed report.
func (h *Handlers) InsightSummary(c *gin.Context) {
	sum, err := h.analyticsSvc.Summary(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not build report")
		return
	}
	ok(c, http.StatusOK, sum)
}

// InsightTotalViews handles GET /insight/views and returns the lifetime,
// unfiltered view count.
func (h *Handlers) InsightTotalViews(c *gin.Context) {
	views, err := h.analyticsSvc.TotalViews(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not count views")
		return
	}
	ok(c, http.StatusOK, gin.H{"views": views})
}

// InsightSlugViews handles GET /insight/:slug and returns the view count for
// one blog post.
func (h *Handlers) InsightSlugViews(c *gin.Context) {
	views, err := h.analyticsSvc.ViewsBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not count views")
		return
	}
	ok(c, http.StatusOK, gin.H{"views": views})
}
