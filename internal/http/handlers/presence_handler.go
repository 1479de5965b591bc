// Online-presence HTTP handlers.
//
// This file exposes the live-visitor endpoints:
//   - POST /presence  (heartbeat; upserts the caller's presence row)
//   - GET  /presence  (current total and per-page breakdown)
//
// A visitor counts as online while their last heartbeat is younger than the
// presence window; reads prune stale rows as a side effect.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aalmaz/go-site-backend/internal/services"
)

// HeartbeatRequest is the JSON payload for refreshing a visitor's presence.
type HeartbeatRequest struct {
	VisitorID string `json:"visitorId"`
	Slug      string `json:"slug"`
}

// PresenceHeartbeat handles POST /presence. Responds 204 on success and 400
// when the visitor id is missing.
func (h *Handlers) PresenceHeartbeat(c *gin.Context) {
	var req HeartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	if err := h.presenceSvc.Heartbeat(c.Request.Context(), req.VisitorID, req.Slug); err != nil {
		if errors.Is(err, services.ErrMissingField) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not record heartbeat")
		return
	}

	noContent(c)
}

// PresenceOnline handles GET /presence and returns the current snapshot.
func (h *Handlers) PresenceOnline(c *gin.Context) {
	snap, err := h.presenceSvc.Online(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not read presence")
		return
	}
	ok(c, http.StatusOK, snap)
}
