// Package menu is the TUI start screen.
package menu

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/tui/keymap"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/tui/messages"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/tui/styles"
)

// Item is one menu entry. Selecting it switches to View, or quits.
type Item struct {
	Label string
	Hint  string
	View  messages.ViewType
	Quit  bool
}

// View lists the entry points and the catalog status.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	items  []Item

	selected int
	width    int
	height   int
	ready    bool

	// catalog is a one-line catalog summary; catalogOK picks its style.
	catalog   string
	catalogOK bool
}

// NewView creates the menu. A nil s uses the default styles.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		keymap: keymap.DefaultKeyMap(),
		items: []Item{
			{Label: "Identify", Hint: "match package text against the catalog", View: messages.ViewIdentify},
			{Label: "Help", Hint: "keybindings", View: messages.ViewHelp},
			{Label: "Quit", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

func (v *View) Init() tea.Cmd {
	return nil
}

func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		return v, v.handleKey(msg.String())
	}
	return v, nil
}

func (v *View) handleKey(k string) tea.Cmd {
	switch {
	case keymap.Matches(k, v.keymap.Up):
		v.selected = max(v.selected-1, 0)
	case keymap.Matches(k, v.keymap.Down):
		v.selected = min(v.selected+1, len(v.items)-1)
	case keymap.Matches(k, v.keymap.Help):
		return changeView(messages.ViewHelp)
	case keymap.Matches(k, v.keymap.Quit):
		return tea.Quit
	case k == "enter":
		item := v.items[v.selected]
		if item.Quit {
			return tea.Quit
		}
		return changeView(item.View)
	}
	return nil
}

func changeView(view messages.ViewType) tea.Cmd {
	return func() tea.Msg { return messages.ViewChanged{View: view} }
}

// SetCatalogStatus sets the catalog line shown under the title.
func (v *View) SetCatalogStatus(summary string, ready bool) {
	v.catalog = summary
	v.catalogOK = ready
}

func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Pillmate"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("Medicine identification and drug safety"))
	b.WriteString("\n\n")

	if v.catalog != "" {
		if v.catalogOK {
			b.WriteString(v.styles.Muted.Render(v.catalog))
		} else {
			b.WriteString(v.styles.Warning.Render(v.catalog))
		}
		b.WriteString("\n\n")
	}

	for i, item := range v.items {
		cursor, label := "  ", v.styles.Normal.Render(item.Label)
		if i == v.selected {
			cursor, label = "> ", v.styles.Selected.Render(item.Label)
		}
		b.WriteString(cursor + label)
		if item.Hint != "" {
			b.WriteString(v.styles.Muted.Render("  " + item.Hint))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] navigate  [enter] select  [?] help  [q] quit"))
	return b.String()
}

func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the index of the highlighted item.
func (v *View) Selected() int {
	return v.selected
}
