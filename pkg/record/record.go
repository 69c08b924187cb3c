// Package record implements the ordered JSON object exchanged with the
// embedding host. Keys keep the order in which they were received so forms
// render fields in the same sequence the host sent them, and outbound payloads
// serialize keys in insertion order.
package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ErrNotObject is returned when a payload decodes to a JSON value other than
// an object.
var ErrNotObject = errors.New("record: payload is not a JSON object")

// Record is an ordered mapping from string keys to JSON values. Values are one
// of nil, bool, json.Number, string, *Record or []any. The zero value is ready
// to use.
type Record struct {
	keys   []string
	values map[string]any
}

// New returns an empty record.
func New() *Record {
	return &Record{values: make(map[string]any)}
}

// Set stores value under key. Existing keys keep their position.
func (r *Record) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	if r == nil || r.values == nil {
		return nil, false
	}
	value, ok := r.values[key]
	return value, ok
}

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Delete removes key, preserving the order of the remaining keys.
func (r *Record) Delete(key string) {
	if r == nil || r.values == nil {
		return
	}
	if _, ok := r.values[key]; !ok {
		return
	}
	delete(r.values, key)
	for i, existing := range r.keys {
		if existing == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns a copy of the keys in insertion order.
func (r *Record) Keys() []string {
	if r == nil || len(r.keys) == 0 {
		return nil
	}
	return append([]string(nil), r.keys...)
}

// Len reports the number of keys.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Each visits every entry in insertion order.
func (r *Record) Each(fn func(key string, value any)) {
	if r == nil || fn == nil {
		return
	}
	for _, key := range r.keys {
		fn(key, r.values[key])
	}
}

// Merge copies every entry of other into r, later values winning. Keys that
// already exist in r keep their position.
func (r *Record) Merge(other *Record) {
	other.Each(func(key string, value any) {
		r.Set(key, value)
	})
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := New()
	r.Each(func(key string, value any) {
		out.Set(key, cloneValue(value))
	})
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case *Record:
		return typed.Clone()
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return typed
	}
}

// String returns the text form of the scalar stored under key.
func (r *Record) String(key string) string {
	value, _ := r.Get(key)
	return Scalar(value)
}

// Scalar renders a scalar value the way it would appear as element text:
// null becomes the empty string, numbers keep their original spelling.
func Scalar(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case json.Number:
		return typed.String()
	case bool:
		return strconv.FormatBool(typed)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return fmt.Sprint(typed)
	}
}

// MarshalJSON writes the record with keys in insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		encodedKey, err := marshalNoEscape(key)
		if err != nil {
			return nil, err
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')
		encodedValue, err := marshalNoEscape(r.values[key])
		if err != nil {
			return nil, fmt.Errorf("record: marshal %q: %w", key, err)
		}
		buf.Write(encodedValue)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces the record contents, preserving key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*r = *decoded
	return nil
}

// Marshal encodes any JSON value (records included) without HTML escaping.
func Marshal(value any) ([]byte, error) {
	return marshalNoEscape(value)
}

// Indent encodes value as 4-space indented JSON.
func Indent(value any) ([]byte, error) {
	raw, err := marshalNoEscape(value)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "    "); err != nil {
		return nil, fmt.Errorf("record: indent: %w", err)
	}
	return out.Bytes(), nil
}

// Valid reports whether text is a single well-formed JSON value.
func Valid(text string) bool {
	return json.Valid([]byte(text))
}

func marshalNoEscape(value any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Decode parses a JSON object into a Record. Nested objects become records and
// numbers are kept as json.Number.
func Decode(data []byte) (*Record, error) {
	value, err := DecodeValue(data)
	if err != nil {
		return nil, err
	}
	rec, ok := value.(*Record)
	if !ok {
		return nil, ErrNotObject
	}
	return rec, nil
}

// DecodeValue parses any single JSON value using the record representation.
func DecodeValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	value, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("record: decode: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("record: decode: unexpected data after top-level value")
	}
	return value, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		return decodeObject(dec)
	case '[':
		return decodeArray(dec)
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

func decodeObject(dec *json.Decoder) (*Record, error) {
	rec := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		rec.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return rec, nil
}

func decodeArray(dec *json.Decoder) ([]any, error) {
	items := []any{}
	for dec.More() {
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		items = append(items, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return items, nil
}
