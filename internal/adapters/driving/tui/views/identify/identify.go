// Package identify provides the identification view: free text in, ranked
// medicine candidates out.
package identify

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/tui/components/input"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/tui/components/list"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/tui/components/status"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/tui/keymap"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/tui/messages"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/tui/styles"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driving"
)

// View is the identify view with input, candidate list, and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.CandidateList
	statusbar *status.Bar

	catalog    driving.CatalogService
	candidates driving.CandidateSearch
	ctx        context.Context

	width      int
	height     int
	ready      bool
	err        error
	lastText   string
	focusInput bool // true = typing, false = navigating candidates
}

// NewView creates a new identify view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	catalog driving.CatalogService,
	candidates driving.CandidateSearch,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQueryInput(s),
		list:       list.NewCandidateList(s),
		statusbar:  status.NewBar(s, km),
		catalog:    catalog,
		candidates: candidates,
		ctx:        context.Background(),
		width:      80,
		height:     24,
		focusInput: true,
	}
	v.RefreshCatalog()
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the identify view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.CandidatesFound:
		v.handleCandidates(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			text := strings.TrimSpace(v.input.Value())
			if text == "" {
				return v, nil
			}
			v.statusbar.SetState(status.StateIdentifying)
			return v, v.identify(text)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch k := msg.String(); {
	case keymap.Matches(k, v.keymap.Open):
		return v, openCandidate(v.list.SelectedCandidate())
	case keymap.Matches(k, v.keymap.Pick):
		i, _ := keymap.PickIndex(k)
		if i >= v.list.Count() {
			return v, nil
		}
		v.list.SetSelected(i)
		return v, openCandidate(v.list.SelectedCandidate())
	case keymap.Matches(k, v.keymap.NewQuery):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	default:
		v.list, _ = v.list.Update(msg)
	}
	return v, nil
}

func openCandidate(c *domain.MatchCandidate) tea.Cmd {
	if c == nil {
		return nil
	}
	record := c.Record
	return func() tea.Msg {
		return messages.MedicineSelected{Record: record}
	}
}

// identify runs the candidate search off the UI loop.
func (v *View) identify(text string) tea.Cmd {
	ctx := v.ctx
	search := v.candidates
	return func() tea.Msg {
		if search == nil {
			return messages.ErrorOccurred{Err: ErrNoCandidateSearch}
		}
		return messages.CandidatesFound{Text: text, Candidates: search.Search(ctx, text)}
	}
}

// handleCandidates shows a finished search and switches to list navigation.
func (v *View) handleCandidates(msg messages.CandidatesFound) {
	v.err = nil
	v.lastText = msg.Text
	v.list.SetCandidates(msg.Candidates)
	v.statusbar.SetMessage("")
	v.statusbar.SetState(status.StateCandidates)
	v.statusbar.SetCount(len(msg.Candidates))

	if len(msg.Candidates) > 0 {
		v.focusInput = false
		v.input.Blur()
	}
}

// RefreshCatalog updates the catalog summary in the status bar.
func (v *View) RefreshCatalog() {
	if v.catalog == nil {
		v.statusbar.SetCatalog("")
		return
	}
	state := v.catalog.State()
	if !state.IsReady() {
		v.statusbar.SetCatalog("catalog: " + state.String())
		return
	}
	v.statusbar.SetCatalog(fmt.Sprintf("catalog: %d records", v.catalog.Count()))
}

// Notify shows a transient message in the status bar.
func (v *View) Notify(message string) {
	v.statusbar.SetMessage(message)
}

// View renders the identify view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 9)
	sections = append(sections, v.styles.Title.Render("Pillmate · Identify"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}
	if v.catalog != nil && !v.catalog.State().IsReady() {
		sections = append(sections,
			v.styles.Warning.Render("The reference catalog is not loaded; no candidates can be found."), "")
	}

	sections = append(sections, v.list.View(), "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10)
	v.statusbar.SetWidth(width)
}

// Query returns the current input text.
func (v *View) Query() string {
	return v.input.Value()
}

// LastText returns the text of the last completed search.
func (v *View) LastText() string {
	return v.lastText
}

// Candidates returns the current candidates.
func (v *View) Candidates() []domain.MatchCandidate {
	return v.list.Candidates()
}

// SelectedIndex returns the index of the selected candidate.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Reset returns the view to input mode with no candidates.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetCandidates(nil)
	v.err = nil
	v.lastText = ""
	v.statusbar.Clear()
	v.RefreshCatalog()
}
