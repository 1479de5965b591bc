package codestats

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// DefaultColorsURL serves the GitHub language color palette.
const DefaultColorsURL = "https://raw.githubusercontent.com/ozh/github-colors/master/colors.json"

type colorEntry struct {
	Color string `json:"color"`
}

// ColorTable resolves language names to display colors. The palette is
// fetched once per process and reused for every subsequent lookup; a fetch
// failure is returned to the caller and retried on the next request.
type ColorTable struct {
	// URL overrides DefaultColorsURL, mainly for tests.
	URL string

	// HTTPClient is the HTTP client used for the fetch. A nil client
	// falls back to a client with a 10s timeout.
	HTTPClient *http.Client

	mu     sync.Mutex
	colors map[string]string
}

// Color returns the hex color for language, or "" when the palette has no
// entry for it. The first call fetches and caches the palette.
func (t *ColorTable) Color(ctx context.Context, language string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.colors == nil {
		colors, err := t.fetch(ctx)
		if err != nil {
			return "", err
		}
		t.colors = colors
	}
	return t.colors[language], nil
}

// Reset drops the cached palette so the next lookup refetches it.
func (t *ColorTable) Reset() {
	t.mu.Lock()
	t.colors = nil
	t.mu.Unlock()
}

func (t *ColorTable) fetch(ctx context.Context) (map[string]string, error) {
	url := t.URL
	if url == "" {
		url = DefaultColorsURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	client := t.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("codestats: unexpected status %d fetching colors", resp.StatusCode)
	}

	var raw map[string]colorEntry
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("codestats: decode colors: %w", err)
	}

	colors := make(map[string]string, len(raw))
	for name, entry := range raw {
		colors[name] = entry.Color
	}
	return colors, nil
}
