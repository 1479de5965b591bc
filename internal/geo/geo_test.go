package geo

import "testing"

func TestCountryName(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{"DE", "Germany"},
		{"de", "Germany"},
		{"US", "United States"},
		{"", Unknown},
		{"Unknown", Unknown},
		{"1!", Unknown},
	}
	for _, tc := range cases {
		if got := CountryName(tc.code); got != tc.want {
			t.Errorf("CountryName(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestFlagEmoji(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{"DE", "🇩🇪"},
		{"us", "🇺🇸"},
		{"", GlobeFlag},
		{"Unknown", GlobeFlag},
		{"D1", GlobeFlag},
	}
	for _, tc := range cases {
		if got := FlagEmoji(tc.code); got != tc.want {
			t.Errorf("FlagEmoji(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestDecodeHeader(t *testing.T) {
	if got := DecodeHeader("S%C3%A3o%20Paulo"); got != "São Paulo" {
		t.Fatalf("DecodeHeader = %q, want São Paulo", got)
	}
	if got := DecodeHeader("Doha"); got != "Doha" {
		t.Fatalf("DecodeHeader passthrough = %q", got)
	}
	// Invalid escape sequences are returned verbatim.
	if got := DecodeHeader("50%"); got != "50%" {
		t.Fatalf("DecodeHeader invalid escape = %q", got)
	}
	if got := DecodeHeader(""); got != "" {
		t.Fatalf("DecodeHeader empty = %q", got)
	}
}
