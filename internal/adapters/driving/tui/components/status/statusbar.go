// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/tui/keymap"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/tui/styles"
)

// State represents the current application state for display.
type State string

// Status bar states.
const (
	StateReady       State = "ready"
	StateIdentifying State = "identifying"
	StateError       State = "error"
	StateCandidates  State = "candidates"
)

// Bar displays application status and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	count   int
	catalog string
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (b *Bar) Init() tea.Cmd {
	return nil
}

// Update is a no-op; the bar is driven through its setters.
func (b *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	return b, nil
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	// The bar style pads one cell on each side.
	padding := max(b.width-2-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return b.styles.StatusBar.Width(b.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (b *Bar) renderLeft() string {
	var left string
	switch b.state {
	case StateIdentifying:
		left = b.styles.Muted.Render("Identifying...")
	case StateError:
		if b.message != "" {
			left = b.styles.Error.Render("Error: " + b.message)
		} else {
			left = b.styles.Error.Render("Error")
		}
	case StateCandidates:
		left = b.styles.Normal.Render(fmt.Sprintf("%d candidates", b.count))
	default:
		if b.message != "" {
			left = b.styles.Normal.Render(b.message)
		} else {
			left = b.styles.Muted.Render("Ready")
		}
	}
	if b.catalog != "" {
		left += b.styles.Muted.Render("  " + b.catalog)
	}
	return left
}

func (b *Bar) renderRight() string {
	var bindings []key.Binding
	if b.state == StateCandidates && b.count > 0 {
		bindings = b.keymap.CandidatesHelp()
	} else {
		bindings = b.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		hints = append(hints, h.Key+": "+h.Desc)
	}
	return b.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (b *Bar) SetState(state State) {
	b.state = state
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// SetMessage sets a custom message.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// Message returns the current message.
func (b *Bar) Message() string {
	return b.message
}

// SetCount sets the candidate count.
func (b *Bar) SetCount(count int) {
	b.count = count
}

// Count returns the candidate count.
func (b *Bar) Count() int {
	return b.count
}

// SetCatalog sets the catalog summary shown after the state.
func (b *Bar) SetCatalog(summary string) {
	b.catalog = summary
}

// SetWidth sets the status bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Width returns the current width.
func (b *Bar) Width() int {
	return b.width
}

// Clear resets the status bar to its default state. The catalog summary is kept.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
	b.count = 0
}
