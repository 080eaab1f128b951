package related

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Warning records a lookup that degraded to an empty list.
type Warning struct {
	Collection string `json:"collection"`
	Err        error  `json:"-"`
}

func (w Warning) Error() string {
	if w.Err == nil {
		return w.Collection
	}
	return w.Collection + ": " + w.Err.Error()
}

func (w Warning) Unwrap() error { return w.Err }

// Bundle maps target collections to their related records. Keys keep the
// order they were configured in and every configured key is present.
type Bundle struct {
	keys    []string
	entries map[string][]Record
}

// NewBundle returns a bundle holding an empty list for each distinct key.
func NewBundle(keys []string) *Bundle {
	b := &Bundle{entries: make(map[string][]Record, len(keys))}
	for _, k := range keys {
		if _, ok := b.entries[k]; ok {
			continue
		}
		b.keys = append(b.keys, k)
		b.entries[k] = []Record{}
	}
	return b
}

func (b *Bundle) set(key string, records []Record) {
	if _, ok := b.entries[key]; !ok {
		return
	}
	if records == nil {
		records = []Record{}
	}
	b.entries[key] = records
}

// Keys returns the configured target collections in order.
func (b *Bundle) Keys() []string {
	out := make([]string, len(b.keys))
	copy(out, b.keys)
	return out
}

// Get returns the records of key. Unknown keys yield nil, false.
func (b *Bundle) Get(key string) ([]Record, bool) {
	r, ok := b.entries[key]
	return r, ok
}

// Len returns the number of configured keys.
func (b *Bundle) Len() int { return len(b.keys) }

// Total returns the number of records across all keys.
func (b *Bundle) Total() int {
	n := 0
	for _, r := range b.entries {
		n += len(r)
	}
	return n
}

// MarshalJSON writes the bundle as an object in key order.
func (b *Bundle) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range b.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(b.entries[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
