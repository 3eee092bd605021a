// Package result converts between POSLavu result records and the
// <result> XML fragments exchanged with the POSLavu API.
//
// A Record is an ordered mapping from field name to text. Values of other
// types are coerced to text when they are inserted, so reading a Record
// never yields anything but strings.
//
//	<result><id>42</id><name>Widget</name></result>
//
// Parse extracts a Record from a fragment holding exactly one such element;
// Serialize renders it back. Records preserve insertion order, which is
// also the order fields appear in on parse.
package result

import (
	"iter"
	"maps"
	"slices"
)

// Record is an ordered set of text fields. The zero value is an empty
// record ready to use. A Record is not safe for concurrent mutation.
type Record struct {
	keys   []string
	values map[string]string
}

// Field is a key/value pair used for ordered construction.
type Field struct {
	Key   string
	Value any
}

// New returns an empty record.
func New() *Record {
	return &Record{}
}

// FromMap copies source into a new record, coercing every value to text.
// Keys are inserted in sorted order since Go maps carry no order.
func FromMap[V any](source map[string]V) (*Record, error) {
	r := &Record{}
	for _, key := range slices.Sorted(maps.Keys(source)) {
		if err := r.Set(key, source[key]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// FromFields builds a record from fields in order. A repeated key
// overwrites the earlier value but keeps its position.
func FromFields(fields ...Field) (*Record, error) {
	r := &Record{}
	for _, f := range fields {
		if err := r.Set(f.Key, f.Value); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Set coerces value to text and stores it under key.
func (r *Record) Set(key string, value any) error {
	text, err := Coerce(value)
	if err != nil {
		return &fieldError{key: key, err: err}
	}
	r.SetString(key, text)
	return nil
}

// SetString stores value under key. Existing keys keep their position.
func (r *Record) SetString(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value for key and whether it was present.
func (r *Record) Get(key string) (string, bool) {
	if r == nil {
		return "", false
	}
	v, ok := r.values[key]
	return v, ok
}

// Value returns the value for key, or "" if absent.
func (r *Record) Value(key string) string {
	v, _ := r.Get(key)
	return v
}

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Delete removes key and reports whether it was present.
func (r *Record) Delete(key string) bool {
	if r == nil {
		return false
	}
	if _, ok := r.values[key]; !ok {
		return false
	}
	delete(r.values, key)
	r.keys = slices.DeleteFunc(r.keys, func(k string) bool { return k == key })
	return true
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Keys returns the field names in order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	return slices.Clone(r.keys)
}

// All iterates over the fields in order.
func (r *Record) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if r == nil {
			return
		}
		for _, k := range r.keys {
			if !yield(k, r.values[k]) {
				return
			}
		}
	}
}

// Map returns a copy of the fields as a plain map.
func (r *Record) Map() map[string]string {
	m := make(map[string]string, r.Len())
	for k, v := range r.All() {
		m[k] = v
	}
	return m
}

// Clone returns an independent copy of r.
func (r *Record) Clone() *Record {
	c := &Record{}
	for k, v := range r.All() {
		c.SetString(k, v)
	}
	return c
}

// Equal reports whether r and other hold the same fields with the same
// values. Field order is not compared.
func (r *Record) Equal(other *Record) bool {
	if r.Len() != other.Len() {
		return false
	}
	for k, v := range r.All() {
		ov, ok := other.Get(k)
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// String returns the XML fragment for r, or a placeholder when a key
// cannot be rendered.
func (r *Record) String() string {
	s, err := r.Serialize()
	if err != nil {
		return "<result><!-- " + err.Error() + " --></result>"
	}
	return s
}
