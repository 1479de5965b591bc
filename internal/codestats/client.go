// Package codestats talks to the Code::Stats public API and derives the
// aggregated typing-XP views served by the site. Upstream responses are
// parsed into explicit structures at the boundary and fail loudly on shape
// mismatch; report logic never sees untyped blobs.
package codestats

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// DefaultBaseURL is the Code::Stats API root.
const DefaultBaseURL = "https://codestats.net"

// Language is one language entry of a user profile.
type Language struct {
	XPs    int64 `json:"xps"`
	NewXPs int64 `json:"new_xps"`
}

// UserProfile is the parsed upstream response for a user.
type UserProfile struct {
	User      string              `json:"user"`
	TotalXP   int64               `json:"total_xp"`
	NewXP     int64               `json:"new_xp"`
	Languages map[string]Language `json:"languages"`
}

// Client fetches user profiles from the Code::Stats API.
type Client struct {
	// BaseURL overrides DefaultBaseURL, mainly for tests.
	BaseURL string

	// HTTPClient is the HTTP client used for requests. A nil client
	// falls back to a client with a 10s timeout.
	HTTPClient *http.Client
}

// UserProfile fetches and parses the profile for username. A non-200
// response or a payload without the expected shape is an error.
func (c *Client) UserProfile(ctx context.Context, username string) (*UserProfile, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/users/"+username, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("codestats: unexpected status %d for user %q", resp.StatusCode, username)
	}

	var profile UserProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("codestats: decode profile: %w", err)
	}
	if profile.TotalXP == 0 && len(profile.Languages) == 0 {
		return nil, fmt.Errorf("codestats: profile for %q has no XP data", username)
	}
	profile.User = username
	return &profile, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}
