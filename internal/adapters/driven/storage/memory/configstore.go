package memory

import (
	"github.com/custodia-labs/lexcheck/internal/adapters/driven/config/keyvalue"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in memory. It backs tests and --no-config runs,
// where settings come only from the environment.
type ConfigStore struct {
	*keyvalue.Map
}

// NewConfigStore creates an empty in-memory config store.
func NewConfigStore() *ConfigStore {
	return NewConfigStoreFrom(nil)
}

// NewConfigStoreFrom creates a store seeded with dot-notation values.
func NewConfigStoreFrom(values map[string]any) *ConfigStore {
	return &ConfigStore{Map: keyvalue.New(values)}
}

// Set stores one value.
func (s *ConfigStore) Set(key string, value any) error {
	s.Merge(map[string]any{key: value})
	return nil
}

// Update stores every value.
func (s *ConfigStore) Update(values map[string]any) error {
	s.Merge(values)
	return nil
}

// Path returns ":memory:".
func (s *ConfigStore) Path() string {
	return ":memory:"
}
