package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_CopiesInitial(t *testing.T) {
	initial := map[string]any{"catalog.dir": "/data/catalog"}
	s := NewConfigStore(initial)

	initial["catalog.dir"] = "/elsewhere"

	assert.Equal(t, "/data/catalog", s.GetString("catalog.dir"))
}

func TestConfigStore_SetAndGet(t *testing.T) {
	s := NewConfigStore(nil)

	require.NoError(t, s.Set("safety.backend", "memory"))

	v, ok := s.Get("safety.backend")
	assert.True(t, ok)
	assert.Equal(t, "memory", v)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_Numbers(t *testing.T) {
	s := NewConfigStore(map[string]any{
		"search.top_n":       int64(7),
		"scoring.name_exact": 100,
		"scoring.company":    2.5,
	})

	assert.Equal(t, 7, s.GetInt("search.top_n"))
	assert.InDelta(t, 100.0, s.GetFloat("scoring.name_exact"), 1e-9)
	assert.InDelta(t, 2.5, s.GetFloat("scoring.company"), 1e-9)
	assert.Zero(t, s.GetInt("scoring.company"))
	assert.Zero(t, s.GetFloat("missing"))
}

func TestConfigStore_TypedGettersIgnoreWrongTypes(t *testing.T) {
	s := NewConfigStore(map[string]any{
		"catalog.watch": true,
		"catalog.dir":   42,
		"list":          []any{"a", 1, "b"},
	})

	assert.True(t, s.GetBool("catalog.watch"))
	assert.False(t, s.GetBool("catalog.dir"))
	assert.Empty(t, s.GetString("catalog.dir"))
	assert.Equal(t, []string{"a", "b"}, s.GetStringSlice("list"))
	assert.Nil(t, s.GetStringSlice("catalog.watch"))
}

func TestConfigStore_PersistenceIsNoop(t *testing.T) {
	s := NewConfigStore(nil)

	assert.NoError(t, s.Save())
	assert.NoError(t, s.Load())
	assert.Equal(t, Path, s.Path())
}
