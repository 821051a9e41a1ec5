package querylist

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is a named value within a Record.
type Field struct {
	Name  string
	Value any
}

// Record maps field names to extracted values and keeps insertion order.
//
// A value is a string, a bool, nil (absent attribute), a []any when a rule
// produced one result per element, a *Record for mapping modes, or whatever
// a callback returned.
type Record struct {
	fields []Field
	index  map[string]int
}

// NewRecord returns a record holding the given fields in order.
func NewRecord(fields ...Field) *Record {
	r := &Record{}
	for _, f := range fields {
		r.Set(f.Name, f.Value)
	}
	return r
}

// Set stores value under name. An existing field keeps its position.
func (r *Record) Set(name string, value any) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[name]; ok {
		r.fields[i].Value = value
		return
	}
	r.index[name] = len(r.fields)
	r.fields = append(r.fields, Field{Name: name, Value: value})
}

// Get returns the value stored under name.
func (r *Record) Get(name string) (any, bool) {
	if r == nil {
		return nil, false
	}
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.fields[i].Value, true
}

// Fields returns a copy of the fields in order.
func (r *Record) Fields() []Field {
	if r == nil {
		return nil
	}
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Names returns the field names in order.
func (r *Record) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fields)
}

// Clone returns a shallow copy of the record.
func (r *Record) Clone() *Record {
	return NewRecord(r.Fields()...)
}

// MarshalJSON encodes the record as a JSON object in field order.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeJSON(&buf, f.Name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeJSON(&buf, f.Value); err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeJSON writes v without HTML escaping, so fragments stay readable
// when the caller's encoder does not escape either.
func encodeJSON(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode terminates each value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// UnmarshalJSON decodes a JSON object keeping key order. Nested objects
// become *Record values and arrays become []any.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok != json.Delim('{') {
		return fmt.Errorf("record must be a JSON object")
	}
	rec, err := decodeObject(dec)
	if err != nil {
		return err
	}
	*r = *rec
	return nil
}

func decodeObject(dec *json.Decoder) (*Record, error) {
	rec := &Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		rec.Set(name, value)
	}
	// closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return rec, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			values := []any{}
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				values = append(values, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return values, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		return t.Float64()
	}
	return tok, nil
}

// Collection is an ordered sequence of records, one per item context.
type Collection []*Record

// RecordFunc transforms one record of a collection.
type RecordFunc func(r *Record) (*Record, error)

// MapCollection applies fn to every record and returns a new collection in
// the same order. A nil fn returns a copy of c. Errors returned by fn abort
// the mapping and are returned unchanged.
func MapCollection(c Collection, fn RecordFunc) (Collection, error) {
	out := make(Collection, 0, len(c))
	for _, r := range c {
		if fn == nil {
			out = append(out, r)
			continue
		}
		mapped, err := fn(r)
		if err != nil {
			return nil, err
		}
		out = append(out, mapped)
	}
	return out, nil
}

// MapFields returns a RecordFunc that applies fn to every field value and
// builds a new record in the same field order.
func MapFields(fn FieldFunc) RecordFunc {
	return func(r *Record) (*Record, error) {
		out := &Record{}
		for _, f := range r.Fields() {
			v, err := fn(f.Value, f.Name)
			if err != nil {
				return nil, err
			}
			out.Set(f.Name, v)
		}
		return out, nil
	}
}
