package media

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field names used in records and by the extraction rules.
const (
	FieldTitle       = "title"
	FieldID          = "id"
	FieldViews       = "views"
	FieldLikes       = "likes"
	FieldDuration    = "duration"
	FieldAuthor      = "author"
	FieldUploaded    = "uploaded"
	FieldURL         = "url"
	FieldThumbnail   = "thumbnail"
	FieldTags        = "tags"
	FieldDescription = "description"
	FieldDislikes    = "dislikes"
)

// RecordKeys is the fixed key order of a full metadata record.
// description is reachable through single-field access only.
var RecordKeys = []string{
	FieldTitle,
	FieldID,
	FieldViews,
	FieldLikes,
	FieldDuration,
	FieldAuthor,
	FieldUploaded,
	FieldURL,
	FieldThumbnail,
	FieldTags,
}

// Entry is one key/value pair of a Record.
type Entry struct {
	Key   string
	Value Value
}

// Record is an ordered, read-only mapping from field name to Value.
type Record struct {
	entries []Entry
}

// NewRecord builds a record from entries, keeping their order.
func NewRecord(entries []Entry) Record {
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	return Record{entries: cp}
}

// Get returns the value stored under key, or Absent when the key is missing.
func (r Record) Get(key string) Value {
	for _, e := range r.entries {
		if e.Key == key {
			return e.Value
		}
	}
	return Absent()
}

// Keys returns the record keys in order.
func (r Record) Keys() []string {
	keys := make([]string, len(r.entries))
	for i, e := range r.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the record entries in order.
func (r Record) Entries() []Entry {
	cp := make([]Entry, len(r.entries))
	copy(cp, r.entries)
	return cp
}

// Len returns the number of keys in the record.
func (r Record) Len() int { return len(r.entries) }

// MarshalJSON writes v as null, a string, a number or an array of strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindInt:
		return json.Marshal(v.num)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON reads a value written by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Absent()
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*v = ListValue(items)
	default:
		var n int64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("decoding value %s: %w", data, err)
		}
		*v = IntValue(n)
	}
	return nil
}

// MarshalJSON writes the record as a JSON object in key order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		val, err := e.Value.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", e.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object into the record, keeping key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	var entries []Entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decoding %s: %w", key, err)
		}
		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("decoding %s: %w", key, err)
		}
		entries = append(entries, Entry{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	r.entries = entries
	return nil
}
