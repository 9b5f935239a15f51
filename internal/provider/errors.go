package provider

import (
	"fmt"
	"strings"
)

// HTTPStatusError reports a non-200 response for a watch page.
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Location   string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	loc := strings.TrimSpace(e.Location)
	if loc == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d location=%s", e.StatusCode, loc)
}

// BlockedError reports that the site served an interstitial (consent wall,
// captcha) instead of the watch page. It is not retried or bypassed.
type BlockedError struct {
	URL    string
	Reason string // "consent" or "captcha"
}

func (e *BlockedError) Error() string {
	if e == nil || strings.TrimSpace(e.Reason) == "" {
		return "blocked"
	}
	return "blocked: " + strings.TrimSpace(e.Reason)
}

// TooLargeError reports a page body over the configured size limit.
type TooLargeError struct {
	URL   string
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("page exceeds %d bytes", e.Limit)
}
