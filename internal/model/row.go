package model

// Row is an ordered column-name to value mapping. Key order is insertion order
// and drives the first-seen column order of assembled tables.
//
// Values are nil (missing), string, json.Number, float64, bool, or, for payload
// cells handed over already decoded, map[string]any / []any.
type Row struct {
	keys   []string
	values map[string]any
}

// NewRow creates an empty row with room for n columns.
func NewRow(n int) *Row {
	return &Row{
		keys:   make([]string, 0, n),
		values: make(map[string]any, n),
	}
}

// RowOf builds a row from alternating key/value arguments. Intended for tests
// and small fixtures.
func RowOf(kv ...any) *Row {
	r := NewRow(len(kv) / 2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		r.Set(key, kv[i+1])
	}
	return r
}

// Set stores value under key. A new key is appended to the key order; an
// existing key keeps its position.
func (r *Row) Set(key string, value any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key.
func (r *Row) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether key is present, even with a nil value.
func (r *Row) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Keys returns the keys in insertion order. The slice must not be modified.
func (r *Row) Keys() []string {
	if r == nil {
		return nil
	}
	return r.keys
}

// Len returns the number of keys.
func (r *Row) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Clone returns a shallow copy.
func (r *Row) Clone() *Row {
	out := NewRow(r.Len())
	for _, k := range r.Keys() {
		out.Set(k, r.values[k])
	}
	return out
}

// Map returns the row as a plain map (order is lost).
func (r *Row) Map() map[string]any {
	out := make(map[string]any, r.Len())
	for _, k := range r.Keys() {
		out[k] = r.values[k]
	}
	return out
}
