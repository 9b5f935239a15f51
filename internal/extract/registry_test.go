package extract

import (
	"errors"
	"regexp"
	"testing"

	"vidmeta/internal/media"
)

func TestDefaultRegistryOrder(t *testing.T) {
	reg := DefaultRegistry()

	wantRecord := []string{
		media.FieldTitle,
		media.FieldViews,
		media.FieldLikes,
		media.FieldDuration,
		media.FieldAuthor,
		media.FieldUploaded,
		media.FieldThumbnail,
		media.FieldTags,
	}
	rules := reg.RecordRules()
	if len(rules) != len(wantRecord) {
		t.Fatalf("RecordRules() has %d rules, want %d", len(rules), len(wantRecord))
	}
	for i, r := range rules {
		if r.Field != wantRecord[i] {
			t.Errorf("RecordRules()[%d] = %q, want %q", i, r.Field, wantRecord[i])
		}
	}

	fields := reg.Fields()
	if fields[len(fields)-2] != media.FieldDescription || fields[len(fields)-1] != media.FieldDislikes {
		t.Errorf("Fields() = %v, want description and dislikes last", fields)
	}
}

func TestDefaultRegistryIsShared(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestLookup(t *testing.T) {
	reg := DefaultRegistry()

	tests := []struct {
		name      string
		field     string
		wantField string
		wantScope Scope
		wantErr   error
	}{
		{"plain", "title", media.FieldTitle, ScopeRecord, nil},
		{"case and spaces", "  Views ", media.FieldViews, ScopeRecord, nil},
		{"date alias", "date", media.FieldUploaded, ScopeRecord, nil},
		{"channel alias", "channel", media.FieldAuthor, ScopeRecord, nil},
		{"single-field only", "description", media.FieldDescription, ScopeSingle, nil},
		{"retired", "dislikes", media.FieldDislikes, ScopeRetired, nil},
		{"unknown", "comments", "", 0, ErrUnknownField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := reg.Lookup(tt.field)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Lookup(%q) error = %v, want %v", tt.field, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Lookup(%q) error: %v", tt.field, err)
			}
			if rule.Field != tt.wantField {
				t.Errorf("Lookup(%q).Field = %q, want %q", tt.field, rule.Field, tt.wantField)
			}
			if rule.Scope != tt.wantScope {
				t.Errorf("Lookup(%q).Scope = %v, want %v", tt.field, rule.Scope, tt.wantScope)
			}
		})
	}
}

func TestAliases(t *testing.T) {
	got := DefaultRegistry().Aliases(media.FieldUploaded)
	if len(got) != 1 || got[0] != "date" {
		t.Errorf("Aliases(uploaded) = %v, want [date]", got)
	}
}

func TestNewRegistryValidation(t *testing.T) {
	one := regexp.MustCompile(`a(b)`)

	tests := []struct {
		name    string
		rules   []Rule
		aliases map[string]string
	}{
		{"empty name", []Rule{{Field: " ", Pattern: one}}, nil},
		{"nil pattern", []Rule{{Field: "x"}}, nil},
		{"no capture group", []Rule{{Field: "x", Pattern: regexp.MustCompile(`ab`)}}, nil},
		{"two capture groups", []Rule{{Field: "x", Pattern: regexp.MustCompile(`(a)(b)`)}}, nil},
		{"duplicate", []Rule{{Field: "x", Pattern: one}, {Field: "X", Pattern: one}}, nil},
		{"dangling alias", []Rule{{Field: "x", Pattern: one}}, map[string]string{"y": "z"}},
		{"alias shadows rule", []Rule{{Field: "x", Pattern: one}, {Field: "y", Pattern: one}}, map[string]string{"y": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRegistry(tt.rules, tt.aliases); err == nil {
				t.Error("NewRegistry() expected error, got nil")
			}
		})
	}
}

func TestRulesReturnsCopy(t *testing.T) {
	reg := DefaultRegistry()
	rules := reg.Rules()
	rules[0].Field = "mutated"
	if reg.Rules()[0].Field != media.FieldTitle {
		t.Error("Rules() should not expose the registry's backing slice")
	}
}
