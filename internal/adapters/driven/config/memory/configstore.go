// Package memory provides a ConfigStore that keeps settings in process
// memory. It backs pillmate when no config directory can be created, so
// settings edits last only for the current run.
package memory

import (
	"sync"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driven/config/kv"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// Path is reported in place of a config file path.
const Path = ":memory:"

// ConfigStore holds flattened dot keys ("catalog.dir", "scoring.name_exact").
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore creates a store seeded with a copy of initial, which may be nil.
func NewConfigStore(initial map[string]any) *ConfigStore {
	return &ConfigStore{values: kv.Clone(initial)}
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

func (s *ConfigStore) value(key string) any {
	v, _ := s.Get(key)
	return v
}

func (s *ConfigStore) GetString(key string) string        { return kv.String(s.value(key)) }
func (s *ConfigStore) GetInt(key string) int              { return kv.Int(s.value(key)) }
func (s *ConfigStore) GetFloat(key string) float64        { return kv.Float(s.value(key)) }
func (s *ConfigStore) GetBool(key string) bool            { return kv.Bool(s.value(key)) }
func (s *ConfigStore) GetStringSlice(key string) []string { return kv.Strings(s.value(key)) }

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Save is a no-op.
func (s *ConfigStore) Save() error { return nil }

// Load is a no-op.
func (s *ConfigStore) Load() error { return nil }

func (s *ConfigStore) Path() string { return Path }
