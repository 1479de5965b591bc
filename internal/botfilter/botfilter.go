// Package botfilter classifies pageview traffic as bot or human from the
// raw User-Agent and referrer strings. Classification happens once, at
// insert time, and the verdict is stored on the analytics row so report
// queries never have to re-scan pattern lists.
//
// The pattern lists are static, versioned assets: updating them requires a
// redeployment. There is no runtime reload path.
package botfilter

import (
	"net/url"
	"strings"
)

// uaPatterns are known crawler/bot User-Agent substrings (lowercase).
// Matching is case-insensitive substring containment.
var uaPatterns = []string{
	"googlebot",
	"bingbot",
	"yandexbot",
	"baiduspider",
	"facebookexternalhit",
	"twitterbot",
	"linkedinbot",
	"slackbot",
	"applebot",
	"amazonbot",
	"ahrefsbot",
	"semrushbot",
	"dotbot",
	"mj12bot",
	"duckduckbot",
	"petalbot",
	"bytespider",
	"crawler",
	"spider",
	"scraper",
	"headlesschrome",
	"python-requests",
	"scrapy",
	"wget",
	"curl",
	// AI scrapers / LLM training bots
	"gptbot",
	"claudebot",
	"anthropic-ai",
	"cohere-ai",
	"perplexitybot",
	"youbot",
	// Archive bots
	"ia_archiver",
	"archive.org_bot",
}

// refDomains are known spam-referrer domains (lowercase). A referrer matches
// when its hostname equals the domain or is a subdomain of it. Matching stops
// at label boundaries, so "notsemalt.com" does not match "semalt.com".
var refDomains = []string{
	"semalt.com",
	"buttons-for-website.com",
}

// IsBot reports whether the given User-Agent or referrer matches a known bot
// pattern. It is a pure function over its two arguments and never fails:
// empty strings are fine, and a referrer that is not a parseable URL degrades
// to substring matching against the same domain list.
func IsBot(userAgent, referrer string) bool {
	ua := strings.ToLower(userAgent)
	for _, p := range uaPatterns {
		if strings.Contains(ua, p) {
			return true
		}
	}
	return isSpamReferrer(referrer)
}

// isSpamReferrer matches the referrer's hostname against refDomains, exact or
// subdomain. When the referrer has no extractable hostname it falls back to
// case-insensitive substring containment of the domain in the raw string.
func isSpamReferrer(referrer string) bool {
	if referrer == "" {
		return false
	}
	ref := strings.ToLower(referrer)

	host := hostnameOf(ref)
	if host == "" {
		for _, d := range refDomains {
			if strings.Contains(ref, d) {
				return true
			}
		}
		return false
	}

	for _, d := range refDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// hostnameOf extracts the hostname from a (lowercased) referrer URL, or ""
// when the value cannot be parsed as a URL with a host component.
func hostnameOf(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
