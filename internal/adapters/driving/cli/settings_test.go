package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{key: "", want: "****"},
		{key: "12345678", want: "****"},
		{key: "sk-1234567890abcdef", want: "sk-1...cdef"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, maskAPIKey(tt.key))
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "empty", input: "", want: 2},
		{name: "in range", input: "3", want: 3},
		{name: "padded", input: " 4 ", want: 4},
		{name: "upper bound", input: "5", want: 5},
		{name: "zero", input: "0", want: 2},
		{name: "too large", input: "6", want: 2},
		{name: "not a number", input: "abc", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseChoice(tt.input, 5, 2))
		})
	}
}

func TestMaskDSN(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{
			name: "password is hidden",
			dsn:  "postgres://pill:secret@db:5432/pillmate",
			want: "postgres://pill:****@db:5432/pillmate",
		},
		{
			name: "no password",
			dsn:  "postgres://pill@db/pillmate",
			want: "postgres://pill@db/pillmate",
		},
		{
			name: "keyword form",
			dsn:  "host=db user=pill",
			want: "host=db user=pill",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, maskDSN(tt.dsn))
		})
	}
}

func TestSettingsShow(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.settings.Catalog.Dir = "/data/pills"
	ts.settings.settings.Safety.Path = "/data/safety.db"

	out, err := execute("settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Directory: /data/pills")
	assert.Contains(t, out, "Backend: sqlite")
	assert.Contains(t, out, "Path: /data/safety.db")
	assert.Contains(t, out, "Top N: 10")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShow_MasksSecrets(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.settings.Safety.Backend = domain.VectorBackendPostgres
	ts.settings.settings.Safety.DSN = "postgres://pill:secret@db/pillmate"
	ts.settings.settings.LLM = domain.LLMSettings{
		Provider: domain.AIProviderOpenAI,
		Model:    "gpt-4o-mini",
		APIKey:   "sk-1234567890abcdef",
	}

	out, err := execute("settings")

	require.NoError(t, err)
	assert.Contains(t, out, "DSN: postgres://pill:****@db/pillmate")
	assert.Contains(t, out, "API Key: sk-1...cdef")
	assert.NotContains(t, out, "secret")
}

func TestSettingsShow_ValidationWarning(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.validateErr = errors.New("embedding provider is not fully configured")

	out, err := execute("settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning: embedding provider is not fully configured")
	assert.Contains(t, out, "pillmate settings wizard")
}

func TestSettingsCatalog(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("settings", "catalog", "/data/pills")

	require.NoError(t, err)
	assert.Equal(t, "/data/pills", ts.settings.settings.Catalog.Dir)
	assert.Contains(t, out, "Catalog directory set to: /data/pills")
}

func TestSettingsBackend_SQLitePath(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("1\n/tmp/index.db\n"))

	out, err := execute("settings", "backend")

	require.NoError(t, err)
	assert.Equal(t, domain.VectorBackendSQLite, ts.settings.settings.Safety.Backend)
	assert.Equal(t, "/tmp/index.db", ts.settings.settings.Safety.Path)
	assert.Contains(t, out, "Safety backend set to: sqlite")
}

func TestSettingsEmbedding_RequiresAPIKey(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("3\n\n\n"))

	_, err := execute("settings", "embedding")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs an API key")
}

func TestSettingsLLM_DefaultModel(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("2\n\nsk-1234567890abcdef\n"))

	out, err := execute("settings", "llm")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, ts.settings.settings.LLM.Provider)
	assert.Equal(t, domain.DefaultLLMModels()[domain.AIProviderOpenAI], ts.settings.settings.LLM.Model)
	assert.Equal(t, "sk-1234567890abcdef", ts.settings.settings.LLM.APIKey)
	assert.Contains(t, out, "ok")
}

func TestSettingsWizard(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	// catalog dir, memory backend, local embedder with its default model, no LLM
	rootCmd.SetIn(strings.NewReader("/data/pills\n2\n1\n\nn\n"))

	out, err := execute("settings", "wizard")

	require.NoError(t, err)
	got := ts.settings.settings
	assert.Equal(t, "/data/pills", got.Catalog.Dir)
	assert.Equal(t, domain.VectorBackendMemory, got.Safety.Backend)
	assert.Equal(t, domain.AIProviderLocal, got.Embedding.Provider)
	assert.Equal(t, domain.DefaultEmbeddingModels()[domain.AIProviderLocal], got.Embedding.Model)
	assert.Contains(t, out, "Skipped.")
	assert.Contains(t, out, "Settings saved.")
}

func TestSettingsCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	settingsService = nil

	for _, args := range [][]string{
		{"settings", "show"},
		{"settings", "wizard"},
		{"settings", "embedding"},
		{"settings", "llm"},
	} {
		_, err := execute(args...)
		require.Error(t, err, args)
		assert.ErrorIs(t, err, errSettingsNotConfigured)
	}
}
