package driven

import "time"

// ConfigStore holds settings under dot-notation keys ("llm.provider").
// Typed accessors report ok=false when a key is missing or has the wrong
// shape, so callers can tell an explicit zero from an unset key.
type ConfigStore interface {
	Lookup(key string) (any, bool)
	String(key string) string
	Int(key string) (int, bool)
	Float(key string) (float64, bool)
	Duration(key string) (time.Duration, bool)

	// Set stores one value and persists it.
	Set(key string, value any) error

	// Update stores every value in one write. A nil value removes the key.
	Update(values map[string]any) error

	// Path locates the backing file, or ":memory:".
	Path() string
}
