package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	for _, c := range []lipgloss.Color{
		theme.Primary, theme.Secondary, theme.Foreground, theme.Muted,
		theme.Success, theme.Warning, theme.Error, theme.Border, theme.Bar,
	} {
		assert.NotEmpty(t, string(c))
	}
}

func TestDefaultTheme_AccentsAreDistinct(t *testing.T) {
	theme := DefaultTheme()

	seen := make(map[lipgloss.Color]bool)
	for _, c := range []lipgloss.Color{theme.Primary, theme.Secondary, theme.Success, theme.Warning, theme.Error} {
		assert.False(t, seen[c], "duplicate accent: %s", c)
		seen[c] = true
	}
}

func TestNewStyles_NilThemeUsesDefault(t *testing.T) {
	s := NewStyles(nil)

	require.NotNil(t, s)
	assert.Equal(t, DefaultTheme(), s.Theme())
}

func TestDefaultStyles(t *testing.T) {
	s := DefaultStyles()

	require.NotNil(t, s)
	assert.True(t, s.Title.GetBold())
	assert.Equal(t, lipgloss.Color("#14B8A6"), s.Title.GetForeground())
}

func TestStyles_Score(t *testing.T) {
	s := DefaultStyles()
	theme := s.Theme()

	tests := []struct {
		name     string
		score    float64
		expected lipgloss.Color
	}{
		{"high", 0.95, theme.Success},
		{"threshold high", HighConfidence, theme.Success},
		{"medium", 0.6, theme.Warning},
		{"low", 0.2, theme.Muted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.Score(tt.score).GetForeground())
		})
	}
}

func TestStyles_Category(t *testing.T) {
	s := DefaultStyles()
	theme := s.Theme()

	assert.Equal(t, theme.Error, s.Category(domain.CategoryContraindication).GetForeground())
	assert.Equal(t, theme.Warning, s.Category(domain.CategoryAgeRestriction).GetForeground())
	assert.Equal(t, theme.Warning, s.Category(domain.CategoryPregnancyRestriction).GetForeground())
	assert.Equal(t, theme.Secondary, s.Category(domain.CategoryElderlyCaution).GetForeground())
}
