// Package geo turns edge-network geolocation headers into the display values
// stored on analytics rows: ISO country codes become human-readable country
// names and flag emoji, and percent-escaped header values (non-ASCII city
// names) are decoded. All functions are pure and tolerate junk input by
// returning the "Unknown" sentinel used across the analytics schema.
package geo

import (
	"net/url"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Unknown is the sentinel stored for absent or undecodable geo values.
const Unknown = "Unknown"

// GlobeFlag is the fallback emoji used when no country flag can be derived.
const GlobeFlag = "🌍"

// CountryName resolves a two-letter ISO 3166-1 country code to its English
// display name. Invalid or missing codes resolve to Unknown.
func CountryName(code string) string {
	code = strings.TrimSpace(code)
	if len(code) != 2 {
		return Unknown
	}
	region, err := language.ParseRegion(code)
	if err != nil {
		return Unknown
	}
	if name := display.English.Regions().Name(region); name != "" {
		return name
	}
	return Unknown
}

// FlagEmoji converts a two-letter country code into its regional-indicator
// flag emoji. Anything that is not two ASCII letters yields GlobeFlag.
func FlagEmoji(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 {
		return GlobeFlag
	}
	var b strings.Builder
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return GlobeFlag
		}
		b.WriteRune('🇦' + (r - 'A'))
	}
	return b.String()
}

// DecodeHeader decodes a percent-escaped edge header value (the network
// escapes non-ASCII values such as city names). Undecodable input is
// returned verbatim rather than dropped.
func DecodeHeader(v string) string {
	if v == "" {
		return v
	}
	if decoded, err := url.QueryUnescape(v); err == nil {
		return decoded
	}
	return v
}
