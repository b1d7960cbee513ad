// Package keyvalue holds dot-notation settings with typed accessors.
// The file and in-memory config stores share it.
package keyvalue

import (
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Map is a concurrency-safe set of dot-notation keys ("llm.provider").
type Map struct {
	mu     sync.RWMutex
	values map[string]any
}

// New creates a map seeded with values.
func New(values map[string]any) *Map {
	m := &Map{values: make(map[string]any, len(values))}
	maps.Copy(m.values, values)
	return m
}

// Lookup returns the raw value for key.
func (m *Map) Lookup(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

// String returns the value as a string, or "" when missing or not a string.
func (m *Map) String(key string) string {
	v, _ := m.Lookup(key)
	s, _ := v.(string)
	return s
}

// Int returns the value as an int. Whole floats and numeric strings convert;
// ok is false for anything else.
func (m *Map) Int(key string) (int, bool) {
	v, found := m.Lookup(key)
	if !found {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	default:
		return 0, false
	}
}

// Float returns the value as a float64.
func (m *Map) Float(key string) (float64, bool) {
	v, found := m.Lookup(key)
	if !found {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Duration returns a Go duration string ("90s") or whole seconds as a duration.
func (m *Map) Duration(key string) (time.Duration, bool) {
	if s := m.String(key); s != "" {
		d, err := time.ParseDuration(s)
		return d, err == nil
	}
	if secs, ok := m.Int(key); ok {
		return time.Duration(secs) * time.Second, true
	}
	return 0, false
}

// Merge sets every value; a nil value removes the key.
func (m *Map) Merge(values map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		if v == nil {
			delete(m.values, k)
			continue
		}
		m.values[k] = v
	}
}

// Replace swaps the whole contents.
func (m *Map) Replace(values map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string]any, len(values))
	maps.Copy(m.values, values)
}

// Snapshot returns a copy of the contents.
func (m *Map) Snapshot() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.values)
}

// Keys returns every key in sorted order.
func (m *Map) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.values))
}

// Flatten converts nested tables to dot-notation keys:
// {"llm": {"model": "x"}} becomes {"llm.model": "x"}.
func Flatten(nested map[string]any) map[string]any {
	flat := make(map[string]any)
	flattenInto(flat, nested, "")
	return flat
}

func flattenInto(dst, src map[string]any, prefix string) {
	for key, value := range src {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if table, ok := value.(map[string]any); ok {
			flattenInto(dst, table, full)
			continue
		}
		dst[full] = value
	}
}

// Nest is the inverse of Flatten. A key that is both a value and a table
// prefix cannot be represented and is reported as a conflict.
func Nest(flat map[string]any) (map[string]any, error) {
	root := make(map[string]any)
	for _, key := range slices.Sorted(maps.Keys(flat)) {
		parts := strings.Split(key, ".")
		node := root
		for _, part := range parts[:len(parts)-1] {
			child, exists := node[part]
			if !exists {
				table := make(map[string]any)
				node[part] = table
				node = table
				continue
			}
			table, ok := child.(map[string]any)
			if !ok {
				return nil, &ConflictError{Key: key, At: part}
			}
			node = table
		}

		leaf := parts[len(parts)-1]
		if _, isTable := node[leaf].(map[string]any); isTable {
			return nil, &ConflictError{Key: key, At: leaf}
		}
		node[leaf] = flat[key]
	}
	return root, nil
}

// ConflictError reports a key that collides with a table of the same name.
type ConflictError struct {
	Key string
	At  string
}

func (e *ConflictError) Error() string {
	return "config key " + strconv.Quote(e.Key) + " conflicts at " + strconv.Quote(e.At)
}
