package provider

import (
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func loadTestDoc(t *testing.T, filename string) *goquery.Document {
	t.Helper()
	data, err := os.ReadFile("testdata/" + filename)
	if err != nil {
		t.Fatalf("reading test fixture %s: %v", filename, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("parsing test fixture %s: %v", filename, err)
	}
	return doc
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parsing %q: %v", raw, err)
	}
	return u
}

func TestDetectInterstitial(t *testing.T) {
	watch := "https://www.youtube.com/watch?v=abc123"

	tests := []struct {
		name    string
		fixture string
		final   string
		want    string
	}{
		{"watch page", "watch_page.html", watch, ""},
		{"consent form", "consent_page.html", watch, reasonConsent},
		{"captcha form", "captcha_page.html", watch, reasonCaptcha},
		{"consent redirect", "watch_page.html", "https://consent.youtube.com/m?continue=x", reasonConsent},
		{"sorry redirect", "watch_page.html", "https://www.google.com/sorry/index?continue=x", reasonCaptcha},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := loadTestDoc(t, tt.fixture)
			got := detectInterstitial(doc, mustURL(t, tt.final))
			if got != tt.want {
				t.Errorf("detectInterstitial() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectInterstitialIgnoresScriptText(t *testing.T) {
	// The watch fixture mentions a consent form inside a script string.
	doc := loadTestDoc(t, "watch_page.html")
	if got := detectInterstitial(doc, nil); got != "" {
		t.Errorf("detectInterstitial() = %q, want no interstitial", got)
	}
}

func TestCanonicalURL(t *testing.T) {
	doc := loadTestDoc(t, "watch_page.html")
	if got := canonicalURL(doc); got != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("canonicalURL() = %q", got)
	}

	doc = loadTestDoc(t, "consent_page.html")
	if got := canonicalURL(doc); got != "" {
		t.Errorf("canonicalURL() = %q, want empty", got)
	}
}

func TestSameVideo(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"https://www.youtube.com/watch?v=abc", "https://m.youtube.com/watch?v=abc&t=1", true},
		{"https://www.youtube.com/watch?v=abc", "https://www.youtube.com/watch?v=abd", false},
	}
	for _, tt := range tests {
		if got := sameVideo(tt.a, tt.b); got != tt.want {
			t.Errorf("sameVideo(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
