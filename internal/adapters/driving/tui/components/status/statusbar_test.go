package status

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/tui/keymap"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Equal(t, 0, bar.Count())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilDependencies(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
	assert.Nil(t, bar.Init())
}

func TestBar_UpdateIsPassive(t *testing.T) {
	bar := NewBar(nil, nil)

	updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Same(t, bar, updated)
	assert.Nil(t, cmd)
}

func TestBar_View(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(b *Bar)
		contains []string
	}{
		{
			name:     "ready",
			setup:    func(_ *Bar) {},
			contains: []string{"Ready", "enter: identify"},
		},
		{
			name:     "identifying",
			setup:    func(b *Bar) { b.SetState(StateIdentifying) },
			contains: []string{"Identifying..."},
		},
		{
			name: "error with message",
			setup: func(b *Bar) {
				b.SetState(StateError)
				b.SetMessage("catalog not loaded")
			},
			contains: []string{"Error: catalog not loaded"},
		},
		{
			name: "candidates show list hints",
			setup: func(b *Bar) {
				b.SetState(StateCandidates)
				b.SetCount(4)
			},
			contains: []string{"4 candidates", "n: new text", "enter: details"},
		},
		{
			name:     "catalog summary",
			setup:    func(b *Bar) { b.SetCatalog("catalog: 120 records") },
			contains: []string{"Ready", "catalog: 120 records"},
		},
		{
			name:     "ready message",
			setup:    func(b *Bar) { b.SetMessage("Catalog reloaded") },
			contains: []string{"Catalog reloaded"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(160)
			tt.setup(bar)

			view := bar.View()
			for _, s := range tt.contains {
				assert.Contains(t, view, s)
			}
		})
	}
}

func TestBar_ClearKeepsCatalog(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("boom")
	bar.SetCount(3)
	bar.SetCatalog("catalog: 2 records")

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Equal(t, 0, bar.Count())
	assert.Contains(t, bar.View(), "catalog: 2 records")
}
