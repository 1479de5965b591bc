package botfilter

import "testing"

func TestIsBot_UserAgentPatterns(t *testing.T) {
	cases := []struct {
		name string
		ua   string
		want bool
	}{
		{"googlebot", "Mozilla/5.0 Googlebot/2.1", true},
		{"mixed case", "mozilla/5.0 GPTBot/1.0", true},
		{"curl", "curl/8.4.0", true},
		{"headless", "Mozilla/5.0 HeadlessChrome/120.0", true},
		{"plain browser", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsBot(tc.ua, ""); got != tc.want {
				t.Fatalf("IsBot(%q, \"\") = %v, want %v", tc.ua, got, tc.want)
			}
		})
	}
}

func TestIsBot_ReferrerDomains(t *testing.T) {
	cases := []struct {
		name string
		ref  string
		want bool
	}{
		{"clean referrer", "https://example.com", false},
		{"exact spam domain", "http://semalt.com/", true},
		{"subdomain match", "http://spam.semalt.com/x", true},
		{"no match across dot boundary", "http://notsemalt.com", false},
		{"second domain", "https://buttons-for-website.com/campaign", true},
		{"uppercase scheme and host", "HTTP://SEMALT.COM/abc", true},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsBot("Mozilla/5.0", tc.ref); got != tc.want {
				t.Fatalf("IsBot(ua, %q) = %v, want %v", tc.ref, got, tc.want)
			}
		})
	}
}

func TestIsBot_UnparseableReferrerFallsBackToSubstring(t *testing.T) {
	// Control characters make url.Parse fail; the substring fallback should
	// still catch the spam domain.
	bad := "ht tp://\x7f semalt.com\x00"
	if !IsBot("Mozilla/5.0", bad) {
		t.Fatalf("expected substring fallback to classify %q as bot", bad)
	}
}

func TestIsBot_IsDeterministic(t *testing.T) {
	ua, ref := "Mozilla/5.0 Googlebot/2.1", "https://example.com"
	first := IsBot(ua, ref)
	for i := 0; i < 10; i++ {
		if IsBot(ua, ref) != first {
			t.Fatalf("IsBot not deterministic for identical inputs")
		}
	}
}
