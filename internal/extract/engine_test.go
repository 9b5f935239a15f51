package extract

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"vidmeta/internal/media"
)

// countingFetcher serves a fixed document and counts calls.
type countingFetcher struct {
	doc   string
	err   error
	calls atomic.Int32

	mu   sync.Mutex
	urls []string
}

func (f *countingFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.urls = append(f.urls, url)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.doc, nil
}

func loadPage(t *testing.T, filename string) string {
	t.Helper()
	data, err := os.ReadFile("testdata/" + filename)
	if err != nil {
		t.Fatalf("reading test fixture %s: %v", filename, err)
	}
	return string(data)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestFieldExtraction(t *testing.T) {
	f := &countingFetcher{doc: loadPage(t, "watch_page.html")}
	e := New(f, WithLogger(quietLogger()))
	id := media.Resolve("abc123")

	tests := []struct {
		field string
		want  media.Value
	}{
		{"title", media.StringValue("Never Gonna Test You Up")},
		{"views", media.IntValue(1234567)},
		{"likes", media.StringValue("12,345")},
		{"duration", media.StringValue("0h 2m 5s")},
		{"author", media.StringValue("UC4QobU6STFB0P71PMvOGN5A")},
		{"uploaded", media.StringValue("2024-03-01")},
		{"date", media.StringValue("2024-03-01")},
		{"thumbnail", media.StringValue("https://i.ytimg.com/vi/abc123/maxresdefault.jpg")},
		{"tags", media.ListValue([]string{"music", "live", "2024"})},
		{"description", media.StringValue("First lineSecond lineThird")},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, err := e.Field(context.Background(), id, tt.field)
			if err != nil {
				t.Fatalf("Field(%q) error: %v", tt.field, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Field(%q) = %v (%v), want %v (%v)", tt.field, got, got.Kind(), tt.want, tt.want.Kind())
			}
		})
	}

	if got := int(f.calls.Load()); got != len(tests) {
		t.Errorf("fetch calls = %d, want one per Field call (%d)", got, len(tests))
	}
	for _, u := range f.urls {
		if u != id.URL {
			t.Errorf("fetched %q, want canonical URL %q", u, id.URL)
		}
	}
}

func TestFieldAbsentIsNotAnError(t *testing.T) {
	f := &countingFetcher{doc: loadPage(t, "empty_page.html")}
	e := New(f, WithLogger(quietLogger()))

	for _, field := range []string{"title", "views", "duration", "tags", "description"} {
		got, err := e.Field(context.Background(), media.Resolve("abc123"), field)
		if err != nil {
			t.Errorf("Field(%q) error = %v, want nil", field, err)
		}
		if !got.IsAbsent() {
			t.Errorf("Field(%q) = %v, want absent", field, got)
		}
	}
}

func TestFieldPermanentlyUnavailable(t *testing.T) {
	// The fixture contains text matching the retired pattern.
	doc := loadPage(t, "watch_page.html")
	if !dislikesPattern.MatchString(doc) {
		t.Fatal("fixture should contain a dislike counter")
	}

	f := &countingFetcher{doc: doc}
	e := New(f, WithLogger(quietLogger()))

	for _, name := range []string{"dislikes", "DISLIKES"} {
		got, err := e.Field(context.Background(), media.Resolve("abc123"), name)
		if !errors.Is(err, ErrPermanentlyUnavailable) {
			t.Fatalf("Field(%q) error = %v, want ErrPermanentlyUnavailable", name, err)
		}
		if !got.IsAbsent() {
			t.Errorf("Field(%q) = %v, want absent alongside the error", name, got)
		}
	}
	if f.calls.Load() != 0 {
		t.Errorf("retired field should not fetch, got %d calls", f.calls.Load())
	}
}

func TestFieldUnknown(t *testing.T) {
	f := &countingFetcher{doc: "irrelevant"}
	e := New(f)

	_, err := e.Field(context.Background(), media.Resolve("abc123"), "comments")
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("error = %v, want ErrUnknownField", err)
	}
	if errors.Is(err, ErrPermanentlyUnavailable) {
		t.Error("unknown field must not look permanently unavailable")
	}
	if f.calls.Load() != 0 {
		t.Errorf("unknown field should not fetch, got %d calls", f.calls.Load())
	}
}

func TestFetchFailurePropagates(t *testing.T) {
	cause := errors.New("connection refused")
	f := &countingFetcher{err: cause}
	e := New(f)
	id := media.Resolve("abc123")

	rec, err := e.All(context.Background(), id)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("All() error = %v, want *FetchError", err)
	}
	if fetchErr.URL != id.URL {
		t.Errorf("FetchError.URL = %q, want %q", fetchErr.URL, id.URL)
	}
	if !errors.Is(err, cause) {
		t.Error("FetchError should unwrap to the fetcher's error")
	}
	if rec.Len() != 0 {
		t.Errorf("All() returned a record with %d keys on fetch failure", rec.Len())
	}

	_, err = e.Field(context.Background(), id, "title")
	if !errors.As(err, &fetchErr) {
		t.Errorf("Field() error = %v, want *FetchError", err)
	}
}

func TestNilFetcher(t *testing.T) {
	e := New(nil)
	_, err := e.All(context.Background(), media.Resolve("abc123"))
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
}

func TestAllFetchesOnce(t *testing.T) {
	f := &countingFetcher{doc: loadPage(t, "watch_page.html")}
	e := New(f, WithWorkers(3), WithLogger(quietLogger()))

	if _, err := e.All(context.Background(), media.Resolve("abc123")); err != nil {
		t.Fatalf("All() error: %v", err)
	}
	if got := f.calls.Load(); got != 1 {
		t.Errorf("fetch calls = %d, want 1", got)
	}
}

func TestAllRecord(t *testing.T) {
	f := &countingFetcher{doc: loadPage(t, "watch_page.html")}
	e := New(f, WithLogger(quietLogger()))
	id := media.Resolve("https://youtu.be/abc123")

	rec, err := e.All(context.Background(), id)
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}

	keys := rec.Keys()
	if strings.Join(keys, ",") != strings.Join(media.RecordKeys, ",") {
		t.Errorf("Keys() = %v, want %v", keys, media.RecordKeys)
	}

	if s, _ := rec.Get(media.FieldID).Str(); s != "abc123" {
		t.Errorf("id = %q, want abc123", s)
	}
	if s, _ := rec.Get(media.FieldURL).Str(); s != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("url = %q", s)
	}
	if n, _ := rec.Get(media.FieldViews).Int(); n != 1234567 {
		t.Errorf("views = %v, want 1234567", rec.Get(media.FieldViews))
	}
	if !rec.Get(media.FieldDescription).IsAbsent() {
		t.Error("description should not be part of the full record")
	}
	for _, k := range keys {
		if k == media.FieldDescription || k == media.FieldDislikes {
			t.Errorf("record should not contain %q", k)
		}
	}
}

func TestAllMatchesSequentialFields(t *testing.T) {
	doc := loadPage(t, "watch_page.html")
	id := media.Resolve("abc123")

	for _, workers := range []int{1, 2, 8, 32} {
		e := New(&countingFetcher{doc: doc}, WithWorkers(workers), WithLogger(quietLogger()))

		rec, err := e.All(context.Background(), id)
		if err != nil {
			t.Fatalf("workers=%d: All() error: %v", workers, err)
		}
		for _, rule := range e.Registry().RecordRules() {
			single, err := e.Field(context.Background(), id, rule.Field)
			if err != nil {
				t.Fatalf("workers=%d: Field(%q) error: %v", workers, rule.Field, err)
			}
			if !rec.Get(rule.Field).Equal(single) {
				t.Errorf("workers=%d: %s: All()=%v, Field()=%v", workers, rule.Field, rec.Get(rule.Field), single)
			}
		}
	}
}

func TestAllIsDeterministicUnderConcurrency(t *testing.T) {
	doc := loadPage(t, "watch_page.html")
	e := New(&countingFetcher{doc: doc}, WithWorkers(4), WithLogger(quietLogger()))
	id := media.Resolve("abc123")

	first, err := e.All(context.Background(), id)
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := e.All(context.Background(), id)
			if err != nil {
				t.Errorf("All() error: %v", err)
				return
			}
			for _, k := range first.Keys() {
				if !rec.Get(k).Equal(first.Get(k)) {
					t.Errorf("%s differs between runs: %v vs %v", k, rec.Get(k), first.Get(k))
				}
			}
		}()
	}
	wg.Wait()
}

func TestTransformFailureIsIsolated(t *testing.T) {
	doc := strings.Replace(loadPage(t, "watch_page.html"), `"approxDurationMs":"125000"`, `"approxDurationMs":"soon"`, 1)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	e := New(&countingFetcher{doc: doc}, WithLogger(logger))

	rec, err := e.All(context.Background(), media.Resolve("abc123"))
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	if !rec.Get(media.FieldDuration).IsAbsent() {
		t.Errorf("duration = %v, want absent after transform failure", rec.Get(media.FieldDuration))
	}
	if s, _ := rec.Get(media.FieldTitle).Str(); s != "Never Gonna Test You Up" {
		t.Errorf("title = %q, sibling fields should still be extracted", s)
	}
	if !strings.Contains(logs.String(), "field=duration") {
		t.Errorf("expected a logged anomaly for duration, got %q", logs.String())
	}

	v, err := e.Field(context.Background(), media.Resolve("abc123"), "duration")
	if err != nil || !v.IsAbsent() {
		t.Errorf("Field(duration) = %v, %v; want absent, nil", v, err)
	}
}

func TestApplyReturnsTransformError(t *testing.T) {
	rule := Rule{Field: "views", Pattern: viewsPattern, Transform: Views}
	doc := `"videoViewCountRenderer":{"viewCount":{"simpleText":"many views"}}`

	v, err := Apply(rule, doc)
	var te *TransformError
	if !errors.As(err, &te) {
		t.Fatalf("Apply() error = %v, want *TransformError", err)
	}
	if te.Field != "views" || te.Raw != "many views" {
		t.Errorf("TransformError = %+v", te)
	}
	if !v.IsAbsent() {
		t.Errorf("Apply() = %v, want absent", v)
	}
}

func TestApplyFirstMatchWins(t *testing.T) {
	rule := Rule{Field: "title", Pattern: titlePattern}
	v, err := Apply(rule, `{"title":"first"},{"title":"second"}`)
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if s, _ := v.Str(); s != "first" {
		t.Errorf("Apply() = %q, want first", s)
	}
}

func TestCustomRegistryExtraRecordField(t *testing.T) {
	rules := append(DefaultRules(), Rule{Field: "category", Pattern: regexp.MustCompile(`"category":"(.*?)"`)})
	reg, err := NewRegistry(rules, nil)
	if err != nil {
		t.Fatalf("NewRegistry() error: %v", err)
	}

	doc := loadPage(t, "watch_page.html") + `{"category":"Music"}`
	e := New(&countingFetcher{doc: doc}, WithRegistry(reg), WithLogger(quietLogger()))

	rec, err := e.All(context.Background(), media.Resolve("abc123"))
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	keys := rec.Keys()
	if keys[len(keys)-1] != "category" {
		t.Errorf("extra record field should follow the fixed keys, got %v", keys)
	}
	if s, _ := rec.Get("category").Str(); s != "Music" {
		t.Errorf("category = %q, want Music", s)
	}
}
