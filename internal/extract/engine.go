package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"vidmeta/internal/media"
)

// DefaultWorkers is the size of the extraction pool used by All.
const DefaultWorkers = 8

// Engine coordinates fetching and rule application.
// Nothing is cached between calls: each Field or All call fetches the page
// again, since values such as the view count change over time.
type Engine struct {
	fetcher  Fetcher
	registry *Registry
	workers  int
	logger   *slog.Logger
}

// Option customises an Engine.
type Option func(*Engine)

// WithRegistry replaces the default rule registry.
func WithRegistry(reg *Registry) Option {
	return func(e *Engine) {
		if reg != nil {
			e.registry = reg
		}
	}
}

// WithWorkers sets the extraction pool size. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger sets the logger used for extraction anomalies.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine that fetches pages with f.
func New(f Fetcher, opts ...Option) *Engine {
	e := &Engine{
		fetcher:  f,
		registry: DefaultRegistry(),
		workers:  DefaultWorkers,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the rules the engine extracts with.
func (e *Engine) Registry() *Registry { return e.registry }

// Field extracts a single field. The rule is resolved before anything is
// fetched: unknown names return ErrUnknownField and retired fields return
// ErrPermanentlyUnavailable without touching the network.
//
// A field missing from the page is reported as an absent value, not an error.
func (e *Engine) Field(ctx context.Context, id media.Identifier, field string) (media.Value, error) {
	rule, err := e.registry.Lookup(field)
	if err != nil {
		return media.Absent(), err
	}
	if rule.Scope == ScopeRetired {
		return media.Absent(), retiredError(rule)
	}

	doc, err := e.fetch(ctx, id)
	if err != nil {
		return media.Absent(), err
	}
	return e.apply(rule, doc, id), nil
}

// All fetches the page once and applies every record rule concurrently
// against it. Each worker writes only its own result slot, so the record is
// the same regardless of completion order.
func (e *Engine) All(ctx context.Context, id media.Identifier) (media.Record, error) {
	doc, err := e.fetch(ctx, id)
	if err != nil {
		return media.Record{}, err
	}

	rules := e.registry.RecordRules()
	results := make([]media.Value, len(rules))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, rule := range rules {
		i, rule := i, rule
		g.Go(func() error {
			results[i] = e.apply(rule, doc, id)
			return nil
		})
	}
	// Workers never fail; Wait is the join.
	_ = g.Wait()

	return assemble(id, rules, results), nil
}

func (e *Engine) fetch(ctx context.Context, id media.Identifier) (string, error) {
	if e.fetcher == nil {
		return "", &FetchError{URL: id.URL, Err: errors.New("no fetcher configured")}
	}
	doc, err := e.fetcher.Fetch(ctx, id.URL)
	if err != nil {
		return "", &FetchError{URL: id.URL, Err: err}
	}
	e.logger.Debug("fetched page", "url", id.URL, "bytes", len(doc))
	return doc, nil
}

func (e *Engine) apply(rule Rule, doc string, id media.Identifier) media.Value {
	v, err := Apply(rule, doc)
	if err != nil {
		e.logger.Warn("field extraction failed",
			"field", rule.Field,
			"url", id.URL,
			"error", err,
		)
		return media.Absent()
	}
	return v
}

// assemble lays the per-rule results out in record key order. id and url
// come from the identifier; record keys without a rule are absent; record
// rules outside the fixed key set follow in registry order.
func assemble(id media.Identifier, rules []Rule, results []media.Value) media.Record {
	slot := make(map[string]int, len(rules))
	for i, r := range rules {
		slot[r.Field] = i
	}

	entries := make([]media.Entry, 0, len(media.RecordKeys)+len(rules))
	seen := make(map[string]bool, len(media.RecordKeys))
	for _, key := range media.RecordKeys {
		seen[key] = true
		var v media.Value
		switch key {
		case media.FieldID:
			v = media.StringValue(id.ID)
		case media.FieldURL:
			v = media.StringValue(id.URL)
		default:
			if i, ok := slot[key]; ok {
				v = results[i]
			}
		}
		entries = append(entries, media.Entry{Key: key, Value: v})
	}
	for i, r := range rules {
		if !seen[r.Field] {
			entries = append(entries, media.Entry{Key: r.Field, Value: results[i]})
		}
	}

	return media.NewRecord(entries)
}

func retiredError(rule Rule) error {
	if rule.Note == "" {
		return fmt.Errorf("%s: %w", rule.Field, ErrPermanentlyUnavailable)
	}
	return fmt.Errorf("%s: %w: %s", rule.Field, ErrPermanentlyUnavailable, rule.Note)
}
