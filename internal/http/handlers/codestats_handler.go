// Code::Stats HTTP handlers.
//
// This file exposes the typing-XP endpoints:
//   - GET /codestats/stats          (condensed profile: level, XP totals)
//   - GET /codestats/top-languages  (top-10 languages with colors)
//
// Both endpoints are served through the cache-aside store, so the upstream
// API is consulted at most once per report per TTL. An upstream failure on a
// cache miss surfaces as 502.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aalmaz/go-site-backend/internal/services"
)

// CodeStatsStats handles GET /codestats/stats.
func (h *Handlers) CodeStatsStats(c *gin.Context) {
	stats, err := h.codeStatsSvc.Stats(c.Request.Context())
	if err != nil {
		h.failCodeStats(c, err)
		return
	}
	ok(c, http.StatusOK, stats)
}

// CodeStatsTopLanguages handles GET /codestats/top-languages.
func (h *Handlers) CodeStatsTopLanguages(c *gin.Context) {
	langs, err := h.codeStatsSvc.TopLanguages(c.Request.Context())
	if err != nil {
		h.failCodeStats(c, err)
		return
	}
	ok(c, http.StatusOK, langs)
}

// failCodeStats maps Code::Stats service errors to HTTP results.
func (h *Handlers) failCodeStats(c *gin.Context, err error) {
	if errors.Is(err, services.ErrUpstream) {
		fail(c, http.StatusBadGateway, ErrCodeUpstreamFailed, "upstream request failed")
		return
	}
	fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load stats")
}
