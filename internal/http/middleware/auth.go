// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements bearer-token authentication for the private reporting
// routes. The token is a single static secret configured at startup; there is
// no user model behind it, so no claims or sessions are involved.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// BearerAuth returns a Gin middleware that requires an
// "Authorization: Bearer <token>" header matching the configured secret.
//
// Comparison is constant-time. When the configured token is empty the
// protected routes are effectively disabled: every request is rejected, so a
// missing INSIGHT_TOKEN can never mean an open dashboard.
//
// Rejections emit the standard error envelope:
//
//	HTTP/1.1 401 Unauthorized
//	{
//	  "request_id": "<uuid>",
//	  "code":       "unauthorized",
//	  "message":    "invalid or missing bearer token"
//	}
func BearerAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		presented, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" ||
			subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": c.Writer.Header().Get("X-Request-ID"),
				"code":       "unauthorized",
				"message":    "invalid or missing bearer token",
			})
			return
		}
		c.Next()
	}
}
