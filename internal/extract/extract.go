// Package extract pulls video metadata out of a raw watch page using an
// ordered table of regular-expression rules.
//
// A single field is extracted lazily with Engine.Field; the whole record is
// extracted with Engine.All, which fetches the page once and applies every
// record rule concurrently against that one document.
package extract

import (
	"context"

	"vidmeta/internal/media"
)

// Fetcher retrieves the raw text of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) (string, error)

// Fetch calls f(ctx, url).
func (f FetcherFunc) Fetch(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// Apply runs rule against doc. Only the first match is used.
//
// A document without a match yields an absent value and no error. A match
// whose transform fails yields an absent value and a *TransformError.
func Apply(rule Rule, doc string) (media.Value, error) {
	m := rule.Pattern.FindStringSubmatch(doc)
	if len(m) < 2 {
		return media.Absent(), nil
	}

	raw := m[1]
	if rule.Transform == nil {
		return media.StringValue(raw), nil
	}

	v, err := rule.Transform(raw)
	if err != nil {
		return media.Absent(), &TransformError{Field: rule.Field, Raw: raw, Err: err}
	}
	return v, nil
}
