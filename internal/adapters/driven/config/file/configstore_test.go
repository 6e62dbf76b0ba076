package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".pillmate", "config.toml"), store.Path())
}

func TestNewConfigStore_NestedDirectoryCreated(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "a", "b")

	_, err := NewConfigStore(nested)
	require.NoError(t, err)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not toml {{[["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("catalog.dir", "/data/catalog"))
	require.NoError(t, store.Set("search.top_n", 5))
	require.NoError(t, store.Set("catalog.watch", true))
	require.NoError(t, store.Set("scoring.name_full", 60.0))

	assert.Equal(t, "/data/catalog", store.GetString("catalog.dir"))
	assert.Equal(t, 5, store.GetInt("search.top_n"))
	assert.True(t, store.GetBool("catalog.watch"))
	assert.InDelta(t, 60.0, store.GetFloat("scoring.name_full"), 1e-9)

	// Wrong types and missing keys yield zero values.
	assert.Equal(t, "", store.GetString("search.top_n"))
	assert.Equal(t, 0, store.GetInt("catalog.dir"))
	assert.False(t, store.GetBool("catalog.dir"))
	assert.Equal(t, 0.0, store.GetFloat("missing"))
	val, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_GetInt_NumericForms(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	store.mu.Lock()
	store.data["a"] = int64(9999)
	store.data["b"] = 12.0
	store.data["c"] = 12.5
	store.mu.Unlock()

	assert.Equal(t, 9999, store.GetInt("a"))
	assert.Equal(t, 12, store.GetInt("b"))
	assert.Equal(t, 0, store.GetInt("c"))
}

func TestConfigStore_GetStringSlice(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	store.mu.Lock()
	store.data["direct"] = []string{"a", "b"}
	store.data["mixed"] = []any{"x", 1, "y"}
	store.mu.Unlock()

	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("direct"))
	assert.Equal(t, []string{"x", "y"}, store.GetStringSlice("mixed"))
	assert.Nil(t, store.GetStringSlice("missing"))
}

func TestConfigStore_PersistsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("safety.backend", "sqlite"))
	require.NoError(t, store.Set("safety.collection", "dur_safety"))
	require.NoError(t, store.Set("embedding.provider", "local"))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[safety]")
	assert.Contains(t, string(raw), "[embedding]")
	assert.NotContains(t, string(raw), "safety.backend")

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", reloaded.GetString("safety.backend"))
	assert.Equal(t, "dur_safety", reloaded.GetString("safety.collection"))
	assert.Equal(t, "local", reloaded.GetString("embedding.provider"))
}

func TestConfigStore_ReadsHandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[search]
top_n = 3

[scoring]
name_full = 70.0
imprint_front = 10
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, 3, store.GetInt("search.top_n"))
	assert.InDelta(t, 70.0, store.GetFloat("scoring.name_full"), 1e-9)
	assert.InDelta(t, 10.0, store.GetFloat("scoring.imprint_front"), 1e-9)
}

func TestConfigStore_ConflictingKeys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm", "openai"))
	assert.Error(t, store.Set("llm.model", "gpt-4o-mini"))
}

func TestConfigStore_EmptyAndCommentOnlyFiles(t *testing.T) {
	for _, content := range []string{"", "# comment only\n\n"} {
		tmpDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

		store, err := NewConfigStore(tmpDir)
		require.NoError(t, err)

		_, ok := store.Get("anything")
		assert.False(t, ok)
	}
}

func TestConfigStore_SaveWritesAtomically(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.provider", "anthropic"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = os.Stat(store.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestConfigStore_SaveExplicit(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	store.mu.Lock()
	store.data["catalog.dir"] = "/srv/catalog"
	store.mu.Unlock()
	require.NoError(t, store.Save())

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "/srv/catalog", reloaded.GetString("catalog.dir"))
}

func TestConfigStore_SaveFailsWhenPathIsDirectory(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("a", "b"))

	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("c", "d"))
}

func TestConfigStore_SetUnencodableValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Set("channel", make(chan int)))
}

func TestConfigStore_LoadInvalidTOML(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("valid", "data"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("invalid ][}{"), 0600))

	assert.Error(t, store.Load())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "workers.w" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_, _ = store.Get(key)
		}(i)
	}
	wg.Wait()
}
