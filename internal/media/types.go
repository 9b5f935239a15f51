// Package media defines the shared types for vidmeta: video identifiers,
// extracted values and the metadata record.
package media

import (
	"strconv"
	"strings"
)

// Kind describes which variant a Value holds.
type Kind int

const (
	KindAbsent Kind = iota
	KindString
	KindInt
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is one extracted field: a string, an integer, a list of strings,
// or absent. The zero Value is absent.
type Value struct {
	kind Kind
	str  string
	num  int64
	list []string
}

// Absent returns the "no value" marker.
func Absent() Value { return Value{} }

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// IntValue returns an integer Value.
func IntValue(n int64) Value { return Value{kind: KindInt, num: n} }

// ListValue returns a list Value. The slice is copied.
func ListValue(items []string) Value {
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{kind: KindList, list: cp}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether v carries no value.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// Str returns the string held by v.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

// Int returns the integer held by v.
func (v Value) Int() (int64, bool) {
	return v.num, v.kind == KindInt
}

// List returns a copy of the list held by v.
func (v Value) List() ([]string, bool) {
	if v.kind != KindList {
		return nil, false
	}
	cp := make([]string, len(v.list))
	copy(cp, v.list)
	return cp, true
}

// String formats v for display. Absent values format as an empty string.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindList:
		return strings.Join(v.list, ", ")
	default:
		return ""
	}
}

// Equal reports whether two values hold the same variant and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindInt:
		return v.num == o.num
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Identifier is a resolved video reference. URL is always the canonical
// watch URL used for fetching.
type Identifier struct {
	ID  string
	URL string
}
