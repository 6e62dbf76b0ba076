// Package env overlays environment variables on a driven.ConfigStore.
package env

import (
	"os"
	"strings"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driven"
)

// Ensure Overlay implements the interface.
var _ driven.ConfigStore = (*Overlay)(nil)

// Environment variables read by the overlay.
const (
	VarOpenAIAPIKey    = "PILLMATE_OPENAI_API_KEY"
	VarAnthropicAPIKey = "PILLMATE_ANTHROPIC_API_KEY"
	VarCatalogDir      = "PILLMATE_CATALOG_DIR"
)

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// Overlay answers reads from the environment first and delegates everything
// else to the wrapped store. API key variables only apply to the section
// whose provider they belong to. Overridden values are never written back.
type Overlay struct {
	base   driven.ConfigStore
	lookup LookupFunc
}

// New wraps base with overrides from the process environment.
func New(base driven.ConfigStore) *Overlay {
	return NewWithLookup(base, os.LookupEnv)
}

// NewWithLookup wraps base with overrides resolved by lookup.
func NewWithLookup(base driven.ConfigStore, lookup LookupFunc) *Overlay {
	return &Overlay{base: base, lookup: lookup}
}

// override returns the environment value that replaces key, if any.
func (o *Overlay) override(key string) (string, bool) {
	switch key {
	case "catalog.dir":
		return o.get(VarCatalogDir)
	case "embedding.api_key":
		return o.providerKey(o.base.GetString("embedding.provider"))
	case "llm.api_key":
		return o.providerKey(o.base.GetString("llm.provider"))
	}
	return "", false
}

func (o *Overlay) providerKey(provider string) (string, bool) {
	switch strings.ToLower(provider) {
	case "openai":
		return o.get(VarOpenAIAPIKey)
	case "anthropic":
		return o.get(VarAnthropicAPIKey)
	}
	return "", false
}

func (o *Overlay) get(name string) (string, bool) {
	v, ok := o.lookup(name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// Get returns the overridden value when one is set.
func (o *Overlay) Get(key string) (any, bool) {
	if v, ok := o.override(key); ok {
		return v, true
	}
	return o.base.Get(key)
}

// GetString returns the overridden value when one is set.
func (o *Overlay) GetString(key string) string {
	if v, ok := o.override(key); ok {
		return v
	}
	return o.base.GetString(key)
}

// GetInt delegates to the wrapped store.
func (o *Overlay) GetInt(key string) int { return o.base.GetInt(key) }

// GetFloat delegates to the wrapped store.
func (o *Overlay) GetFloat(key string) float64 { return o.base.GetFloat(key) }

// GetBool delegates to the wrapped store.
func (o *Overlay) GetBool(key string) bool { return o.base.GetBool(key) }

// GetStringSlice delegates to the wrapped store.
func (o *Overlay) GetStringSlice(key string) []string { return o.base.GetStringSlice(key) }

// Set stores value unless it is the value the environment already supplies.
func (o *Overlay) Set(key string, value any) error {
	if v, ok := o.override(key); ok {
		if s, isString := value.(string); isString && s == v {
			return nil
		}
	}
	return o.base.Set(key, value)
}

// Save delegates to the wrapped store.
func (o *Overlay) Save() error { return o.base.Save() }

// Load delegates to the wrapped store.
func (o *Overlay) Load() error { return o.base.Load() }

// Path delegates to the wrapped store.
func (o *Overlay) Path() string { return o.base.Path() }
