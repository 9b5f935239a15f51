package extract

import (
	"fmt"
	"sort"
	"strings"
)

// Registry is a read-only, ordered set of rules indexed by field name.
// It is safe for concurrent use because nothing mutates it after NewRegistry.
type Registry struct {
	rules   []Rule
	byName  map[string]int
	aliases map[string]string
	record  []Rule
}

// NewRegistry validates rules and aliases and builds a registry. Rule order
// is preserved and defines the order of Rules and RecordRules.
func NewRegistry(rules []Rule, aliases map[string]string) (*Registry, error) {
	reg := &Registry{
		rules:   make([]Rule, 0, len(rules)),
		byName:  make(map[string]int, len(rules)),
		aliases: make(map[string]string, len(aliases)),
	}

	for _, r := range rules {
		name := normalizeField(r.Field)
		if name == "" {
			return nil, fmt.Errorf("rule field name cannot be empty")
		}
		if r.Pattern == nil {
			return nil, fmt.Errorf("rule %q has no pattern", name)
		}
		if n := r.Pattern.NumSubexp(); n != 1 {
			return nil, fmt.Errorf("rule %q: pattern must have exactly one capture group, has %d", name, n)
		}
		if _, ok := reg.byName[name]; ok {
			return nil, fmt.Errorf("duplicate rule for field %q", name)
		}

		r.Field = name
		reg.byName[name] = len(reg.rules)
		reg.rules = append(reg.rules, r)
		if r.Scope == ScopeRecord {
			reg.record = append(reg.record, r)
		}
	}

	for alias, target := range aliases {
		alias, target = normalizeField(alias), normalizeField(target)
		if _, ok := reg.byName[target]; !ok {
			return nil, fmt.Errorf("alias %q points at unknown field %q", alias, target)
		}
		if _, ok := reg.byName[alias]; ok {
			return nil, fmt.Errorf("alias %q shadows a rule", alias)
		}
		reg.aliases[alias] = target
	}

	return reg, nil
}

// Lookup returns the rule for a field name or alias.
func (r *Registry) Lookup(field string) (Rule, error) {
	name := normalizeField(field)
	if target, ok := r.aliases[name]; ok {
		name = target
	}
	i, ok := r.byName[name]
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return r.rules[i], nil
}

// Rules returns every rule in registry order.
func (r *Registry) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// RecordRules returns the rules that feed the full record, in registry order.
// The position of a rule in this slice is its result slot during full
// extraction.
func (r *Registry) RecordRules() []Rule {
	out := make([]Rule, len(r.record))
	copy(out, r.record)
	return out
}

// Fields returns the field names in registry order.
func (r *Registry) Fields() []string {
	names := make([]string, len(r.rules))
	for i, rule := range r.rules {
		names[i] = rule.Field
	}
	return names
}

// Aliases returns the alternate names that resolve to field.
func (r *Registry) Aliases(field string) []string {
	field = normalizeField(field)
	var out []string
	for alias, target := range r.aliases {
		if target == field {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out
}

func normalizeField(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
