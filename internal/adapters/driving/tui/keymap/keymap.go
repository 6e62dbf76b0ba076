// Package keymap holds the TUI key bindings, grouped by the screen that
// reacts to them.
package keymap

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
)

// MaxPick is the number of candidates reachable with the digit keys.
const MaxPick = 9

// KeyMap holds every binding the TUI reacts to.
type KeyMap struct {
	Quit key.Binding
	Help key.Binding
	Back key.Binding

	// Identify submits the typed OCR text or name.
	Identify key.Binding

	Up   key.Binding
	Down key.Binding

	// Open shows the highlighted candidate.
	Open key.Binding

	// Pick opens candidate 1 to 9 by its rank.
	Pick key.Binding

	// NewQuery returns from the candidate list to the text input.
	NewQuery key.Binding

	// NextCategory scrolls the medicine view to the next safety category.
	NextCategory key.Binding

	// Recheck fetches the medicine's safety records again.
	Recheck key.Binding
}

// Section is one titled group of the help screen.
type Section struct {
	Title    string
	Bindings []key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Identify: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "identify")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Pick: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "open by rank"),
		),
		NewQuery:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new text")),
		NextCategory: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next category")),
		Recheck:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "recheck safety")),
	}
}

// ShortHelp is shown in the status bar while typing.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Identify, k.Back}
}

// CandidatesHelp is shown in the status bar over the candidate list.
func (k *KeyMap) CandidatesHelp() []key.Binding {
	return []key.Binding{k.NewQuery, k.Up, k.Down, k.Open, k.Pick, k.Back}
}

// MedicineHelp lists the bindings of the medicine view.
func (k *KeyMap) MedicineHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextCategory, k.Recheck, k.Back}
}

// Sections lays out the help screen, one section per screen.
func (k *KeyMap) Sections() []Section {
	return []Section{
		{Title: "Identify", Bindings: []key.Binding{k.Identify, k.Back}},
		{Title: "Candidates", Bindings: []key.Binding{k.Up, k.Down, k.Open, k.Pick, k.NewQuery}},
		{Title: "Medicine", Bindings: []key.Binding{k.Up, k.Down, k.NextCategory, k.Recheck, k.Back}},
		{Title: "General", Bindings: []key.Binding{k.Help, k.Quit}},
	}
}

// FullHelp returns the bindings of Sections without titles.
func (k *KeyMap) FullHelp() [][]key.Binding {
	sections := k.Sections()
	groups := make([][]key.Binding, len(sections))
	for i, s := range sections {
		groups[i] = s.Bindings
	}
	return groups
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	return slices.Contains(binding.Keys(), keyStr)
}

// PickIndex maps "1".."9" to a zero-based candidate index.
func PickIndex(keyStr string) (int, bool) {
	if len(keyStr) != 1 || keyStr[0] < '1' || keyStr[0] > '0'+MaxPick {
		return 0, false
	}
	return int(keyStr[0] - '1'), true
}
