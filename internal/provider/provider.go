// Package provider fetches raw watch pages for the extraction engine.
//
// The fetcher does not cache and does not retry. It applies an optional rate
// limit, bounds the body size and refuses interstitial pages so that the
// extraction engine only ever sees a real watch page or an error.
package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"vidmeta/internal/extract"
	"vidmeta/internal/httputil"
)

// DefaultMaxBytes bounds a watch page body.
const DefaultMaxBytes = 10 * 1024 * 1024

// consentCookie skips the EU consent wall for anonymous requests.
const consentCookie = "CONSENT=YES+1"

// Options configures a YouTube fetcher.
type Options struct {
	Client    *http.Client
	Timeout   time.Duration
	UserAgent string
	// Language is sent as Accept-Language. The view-count transform expects
	// English text, so this should stay an English locale.
	Language string
	// RateLimit is the maximum number of requests per second. 0 disables it.
	RateLimit float64
	MaxBytes  int64
	Logger    *slog.Logger
}

// YouTube fetches watch pages over HTTPS.
type YouTube struct {
	client    *http.Client
	userAgent string
	language  string
	maxBytes  int64
	limiter   *rate.Limiter
	logger    *slog.Logger
}

var _ extract.Fetcher = (*YouTube)(nil)

// NewYouTube creates a fetcher from opts.
func NewYouTube(opts Options) *YouTube {
	y := &YouTube{
		client:    opts.Client,
		userAgent: opts.UserAgent,
		language:  opts.Language,
		maxBytes:  opts.MaxBytes,
		logger:    opts.Logger,
	}
	if y.client == nil {
		y.client = httputil.NewClient(opts.Timeout)
	}
	if y.userAgent == "" {
		y.userAgent = httputil.DefaultUserAgent
	}
	if y.language == "" {
		y.language = "en-US"
	}
	if y.maxBytes <= 0 {
		y.maxBytes = DefaultMaxBytes
	}
	if y.logger == nil {
		y.logger = slog.Default()
	}
	if opts.RateLimit > 0 {
		y.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return y
}

// Fetch retrieves the watch page at pageURL and returns its body.
func (y *YouTube) Fetch(ctx context.Context, pageURL string) (string, error) {
	if y.limiter != nil {
		if err := y.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("waiting for rate limit: %w", err)
		}
	}

	header := http.Header{}
	header.Set("User-Agent", y.userAgent)
	header.Set("Accept-Language", y.language+",en;q=0.5")
	header.Set("Cookie", consentCookie)

	start := time.Now()
	resp, err := httputil.Get(ctx, y.client, pageURL, header)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &HTTPStatusError{URL: pageURL, StatusCode: resp.StatusCode, Location: resp.Header.Get("Location")}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, y.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if int64(len(body)) > y.maxBytes {
		return "", &TooLargeError{URL: pageURL, Limit: y.maxBytes}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}
	if reason := detectInterstitial(doc, resp.Request.URL); reason != "" {
		return "", &BlockedError{URL: pageURL, Reason: reason}
	}

	canonical := canonicalURL(doc)
	y.logger.Debug("fetched watch page",
		"url", pageURL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start),
		"canonical", canonical,
	)
	if canonical != "" && !sameVideo(canonical, pageURL) {
		y.logger.Debug("canonical URL differs from requested page", "url", pageURL, "canonical", canonical)
	}

	return string(body), nil
}

// sameVideo compares the v= parameters of two watch URLs.
func sameVideo(a, b string) bool {
	return videoParam(a) == videoParam(b)
}

func videoParam(u string) string {
	i := strings.Index(u, "v=")
	if i == -1 {
		return ""
	}
	v := u[i+2:]
	if j := strings.IndexAny(v, "&#"); j != -1 {
		v = v[:j]
	}
	return v
}
