// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/tui/styles"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
)

// linesPerCandidate is the rendered height of one entry.
const linesPerCandidate = 2

// CandidateList displays scored medicine candidates in a navigable list.
type CandidateList struct {
	candidates []domain.MatchCandidate
	selected   int
	styles     *styles.Styles
	width      int
	height     int
}

// NewCandidateList creates a new candidate list component.
func NewCandidateList(s *styles.Styles) *CandidateList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &CandidateList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (c *CandidateList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (c *CandidateList) Update(msg tea.Msg) (*CandidateList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			c.MoveUp()
		case "down", "j":
			c.MoveDown()
		}
	}
	return c, nil
}

// View renders the candidate list.
func (c *CandidateList) View() string {
	if len(c.candidates) == 0 {
		return c.styles.Muted.Render("No candidates")
	}

	lines := make([]string, 0, len(c.candidates)+2)
	lines = append(lines, c.styles.Subtitle.Render(fmt.Sprintf("Candidates (%d)", len(c.candidates))), "")

	visible := max((c.height-4)/linesPerCandidate, 1)
	start := 0
	if c.selected >= visible {
		start = c.selected - visible + 1
	}
	end := min(start+visible, len(c.candidates))

	for i := start; i < end; i++ {
		lines = append(lines, c.renderCandidate(i, &c.candidates[i]))
	}

	return strings.Join(lines, "\n")
}

// renderCandidate formats one candidate: name and score, then company,
// imprints and ingredients.
func (c *CandidateList) renderCandidate(index int, cand *domain.MatchCandidate) string {
	indicator := "  "
	if index == c.selected {
		indicator = "> "
	}

	maxName := max(c.width-20, 10)
	name := truncate(cand.Record.Name, maxName)
	padded := name + strings.Repeat(" ", max(maxName-lipgloss.Width(name), 0))
	score := fmt.Sprintf("%3.0f%%", cand.Score*100)

	var title string
	if index == c.selected {
		title = c.styles.Selected.Render(indicator+padded+"  ") + c.styles.Score(cand.Score).Render(score)
	} else {
		title = c.styles.Normal.Render(indicator+padded+"  ") + c.styles.Score(cand.Score).Render(score)
	}

	return title + "\n" + c.styles.Muted.Render("    "+truncate(describe(&cand.Record), max(c.width-6, 20)))
}

// describe summarises the secondary fields of a record.
func describe(r *domain.ReferenceRecord) string {
	parts := make([]string, 0, 3)
	if r.Company != "" {
		parts = append(parts, r.Company)
	}
	if imprint := imprintLabel(r); imprint != "" {
		parts = append(parts, imprint)
	}
	if len(r.Ingredients) > 0 {
		parts = append(parts, strings.Join(r.Ingredients, ", "))
	}
	return strings.Join(parts, " · ")
}

func imprintLabel(r *domain.ReferenceRecord) string {
	var faces []string
	if domain.HasImprint(r.ImprintFront) {
		faces = append(faces, r.ImprintFront)
	}
	if domain.HasImprint(r.ImprintBack) {
		faces = append(faces, r.ImprintBack)
	}
	if len(faces) == 0 {
		return ""
	}
	return "[" + strings.Join(faces, "/") + "]"
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// SetCandidates replaces the list contents and resets the selection.
func (c *CandidateList) SetCandidates(candidates []domain.MatchCandidate) {
	c.candidates = candidates
	c.selected = 0
}

// Candidates returns the current candidates.
func (c *CandidateList) Candidates() []domain.MatchCandidate {
	return c.candidates
}

// Selected returns the index of the selected candidate.
func (c *CandidateList) Selected() int {
	return c.selected
}

// SetSelected sets the selected index.
func (c *CandidateList) SetSelected(index int) {
	if index >= 0 && index < len(c.candidates) {
		c.selected = index
	}
}

// SelectedCandidate returns the selected candidate, or nil if none.
func (c *CandidateList) SelectedCandidate() *domain.MatchCandidate {
	if c.selected < 0 || c.selected >= len(c.candidates) {
		return nil
	}
	return &c.candidates[c.selected]
}

// MoveUp moves selection up.
func (c *CandidateList) MoveUp() {
	if c.selected > 0 {
		c.selected--
	}
}

// MoveDown moves selection down.
func (c *CandidateList) MoveDown() {
	if c.selected < len(c.candidates)-1 {
		c.selected++
	}
}

// SetDimensions sets the component dimensions.
func (c *CandidateList) SetDimensions(width, height int) {
	c.width = width
	c.height = height
}

// Count returns the number of candidates.
func (c *CandidateList) Count() int {
	return len(c.candidates)
}

// IsEmpty returns whether the list is empty.
func (c *CandidateList) IsEmpty() bool {
	return len(c.candidates) == 0
}
