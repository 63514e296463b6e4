// Package form990 extracts and flattens IRS Form 990 header, balance, and
// compensation fields into rows ready for tabular storage.
package form990

import (
	"bytes"
	"encoding/json"
)

// Record is an ordered field mapping. Values are nil (absent), string, or int64.
// Keys keep their first insertion order so column order stays stable.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// Set stores v under k. Re-setting an existing key overwrites the value in place.
func (r *Record) Set(k string, v any) {
	if _, ok := r.values[k]; !ok {
		r.keys = append(r.keys, k)
	}
	r.values[k] = v
}

// Get returns the value for k and whether the key exists.
func (r *Record) Get(k string) (any, bool) {
	v, ok := r.values[k]
	return v, ok
}

// Has reports whether k is present, even with a nil value.
func (r *Record) Has(k string) bool {
	_, ok := r.values[k]
	return ok
}

// Keys returns the field names in insertion order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.keys) }

// Map returns a copy of the record as a plain map.
func (r *Record) Map() map[string]any {
	m := make(map[string]any, len(r.keys))
	for _, k := range r.keys {
		m[k] = r.values[k]
	}
	return m
}

// MarshalJSON emits the record as a JSON object in key order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
