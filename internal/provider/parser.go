package provider

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Block reasons reported in BlockedError.
const (
	reasonConsent = "consent"
	reasonCaptcha = "captcha"
)

// detectInterstitial reports why a response is not a watch page, or "" when
// it looks like one. final is the URL after redirects.
// Uses DOM queries rather than string search so markup inside scripts and
// attribute values cannot trigger false positives.
func detectInterstitial(doc *goquery.Document, final *url.URL) string {
	if final != nil {
		host := strings.ToLower(final.Hostname())
		if strings.HasPrefix(host, "consent.") {
			return reasonConsent
		}
		if strings.HasPrefix(final.Path, "/sorry/") {
			return reasonCaptcha
		}
	}

	if doc.Find(`form[action*="consent."]`).Length() > 0 {
		return reasonConsent
	}
	if doc.Find(`#captcha-form, form[action*="/sorry/"]`).Length() > 0 {
		return reasonCaptcha
	}
	return ""
}

// canonicalURL returns the page's <link rel="canonical"> target, if any.
func canonicalURL(doc *goquery.Document) string {
	href, _ := doc.Find(`link[rel="canonical"]`).First().Attr("href")
	return strings.TrimSpace(href)
}
