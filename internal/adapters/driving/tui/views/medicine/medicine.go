// Package medicine provides the medicine details view for the TUI: the
// reference record and the safety records retrieved for its ingredients.
package medicine

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/tui/keymap"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/tui/messages"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/tui/styles"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driving"
)

// maxDetail caps the rendered length of one safety detail.
const maxDetail = 120

// line is one rendered row with its style role.
type line struct {
	text string
	role string
}

// View is the medicine details view.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	safety driving.SafetyRetriever
	ctx    context.Context

	record       *domain.ReferenceRecord
	report       domain.SafetyReport
	loading      bool
	scrollOffset int
	nextCategory int
	width        int
	height       int
	ready        bool
	err          error
}

// NewView creates a new medicine view. safety may be nil, in which case no
// safety records are shown.
func NewView(s *styles.Styles, safety driving.SafetyRetriever) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		keymap: keymap.DefaultKeyMap(),
		safety: safety,
		ctx:    context.Background(),
		width:  80,
		height: 24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetRecord shows record and returns the command loading its safety report.
func (v *View) SetRecord(record domain.ReferenceRecord) tea.Cmd {
	v.record = &record
	v.report = nil
	v.scrollOffset = 0
	v.nextCategory = 0
	v.err = nil

	if v.safety == nil {
		v.loading = false
		return nil
	}
	v.loading = true

	ctx := v.ctx
	retriever := v.safety
	names := queryNames(&record)
	id := record.ID
	return func() tea.Msg {
		return messages.SafetyLoaded{RecordID: id, Report: retriever.SearchAllCategories(ctx, names)}
	}
}

// queryNames are the drug names a record is looked up by: its ingredients,
// or its name when the dataset lists none.
func queryNames(r *domain.ReferenceRecord) []string {
	if len(r.Ingredients) > 0 {
		return r.Ingredients
	}
	return []string{r.Name}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the medicine view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SafetyLoaded:
		// Ignore reports for a record that is no longer shown.
		if v.record != nil && msg.RecordID == v.record.ID {
			v.report = msg.Report
			v.loading = false
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.loading = false
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch k := msg.String(); {
	case keymap.Matches(k, v.keymap.Up):
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case keymap.Matches(k, v.keymap.Down):
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case keymap.Matches(k, v.keymap.NextCategory):
		v.jumpToNextCategory()
	case keymap.Matches(k, v.keymap.Recheck):
		if v.record == nil || v.loading {
			return v, nil
		}
		offset := v.scrollOffset
		cmd := v.SetRecord(*v.record)
		v.scrollOffset = min(offset, v.maxScrollOffset())
		return v, cmd
	case keymap.Matches(k, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewIdentify}
		}
	}
	return v, nil
}

// jumpToNextCategory scrolls to the safety categories in turn, wrapping
// after the last one.
func (v *View) jumpToNextCategory() {
	var starts []int
	for i, l := range v.buildContent() {
		if domain.SafetyCategory(l.role).IsValid() {
			starts = append(starts, i)
		}
	}
	if len(starts) == 0 {
		return
	}
	at := starts[v.nextCategory%len(starts)]
	v.nextCategory = (v.nextCategory + 1) % len(starts)
	v.scrollOffset = min(at, v.maxScrollOffset())
}

func (v *View) visibleLines() int {
	return max(v.height-6, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.buildContent())-v.visibleLines(), 0)
}

// buildContent lays out the record fields followed by one section per
// safety category.
func (v *View) buildContent() []line {
	if v.record == nil {
		return nil
	}
	r := v.record

	lines := []line{
		field("ID", r.ID),
		field("Name", r.Name),
	}
	optional := []struct{ label, value string }{
		{"Name (en)", r.NameEn},
		{"Company", r.Company},
		{"Company (en)", r.CompanyEn},
		{"Ingredients", strings.Join(r.Ingredients, ", ")},
		{"Shape", r.Shape},
		{"Color", r.Color},
		{"Front", imprint(r.ImprintFront)},
		{"Back", imprint(r.ImprintBack)},
		{"Image", r.ImageRef},
	}
	for _, f := range optional {
		if f.value != "" {
			lines = append(lines, field(f.label, f.value))
		}
	}

	lines = append(lines, line{}, line{text: "Safety", role: "heading"})
	switch {
	case v.safety == nil:
		lines = append(lines, line{text: "  Safety index not configured", role: "muted"})
	case v.loading:
		lines = append(lines, line{text: "  Loading safety records...", role: "muted"})
	default:
		for _, c := range domain.AllSafetyCategories() {
			docs := v.report[c]
			lines = append(lines, line{
				text: fmt.Sprintf("  %s (%s) · %d", c.Label(), c.Description(), len(docs)),
				role: string(c),
			})
			for i := range docs {
				lines = append(lines, line{text: "    - " + summarize(&docs[i]), role: "normal"})
			}
		}
	}
	return lines
}

func field(label, value string) line {
	return line{text: fmt.Sprintf("%-13s %s", label+":", value), role: "field"}
}

// imprint hides the no-imprint sentinel.
func imprint(value string) string {
	if !domain.HasImprint(value) {
		return ""
	}
	return value
}

// summarize renders one safety document on a single line.
func summarize(doc *domain.SafetyDocument) string {
	var b strings.Builder
	b.WriteString(doc.PrimaryDrug)
	if doc.PrimaryDrug == "" {
		b.WriteString(doc.PrimaryProduct)
	}
	if doc.SecondaryDrug != "" {
		b.WriteString(" + " + doc.SecondaryDrug)
	}
	if doc.Restriction != "" {
		b.WriteString(" [" + doc.Restriction + "]")
	}
	if doc.Detail != "" {
		detail := []rune(doc.Detail)
		if len(detail) > maxDetail {
			detail = append(detail[:maxDetail-3], []rune("...")...)
		}
		b.WriteString(": " + string(detail))
	}
	return b.String()
}

// View renders the medicine view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Medicine"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", max(min(v.width-4, 60), 0)))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}

	if v.record == nil {
		b.WriteString(v.styles.Muted.Render("No medicine selected"))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	lines := v.buildContent()
	visible := v.visibleLines()
	end := min(v.scrollOffset+visible, len(lines))
	for _, l := range lines[v.scrollOffset:end] {
		b.WriteString(v.render(l))
		b.WriteString("\n")
	}

	if len(lines) > visible {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [Line %d-%d of %d]",
			v.scrollOffset+1, end, len(lines))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *View) render(l line) string {
	switch l.role {
	case "field":
		parts := strings.SplitN(l.text, ":", 2)
		return v.styles.Subtitle.Render(parts[0]+":") + v.styles.Normal.Render(parts[1])
	case "heading":
		return v.styles.Title.Render(l.text)
	case "muted":
		return v.styles.Muted.Render(l.text)
	case "normal":
		return v.styles.Normal.Render(l.text)
	case "":
		return ""
	default:
		return v.styles.Category(domain.SafetyCategory(l.role)).Render(l.text)
	}
}

func (v *View) renderHelp() string {
	bindings := v.keymap.MedicineHelp()
	if v.safety == nil {
		bindings = []key.Binding{v.keymap.Up, v.keymap.Down, v.keymap.Back}
	}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, "["+b.Help().Key+"] "+b.Help().Desc)
	}
	return v.styles.Help.Render(strings.Join(parts, "  "))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Record returns the medicine being shown.
func (v *View) Record() *domain.ReferenceRecord {
	return v.record
}

// Report returns the loaded safety report.
func (v *View) Report() domain.SafetyReport {
	return v.report
}

// Loading reports whether the safety report is still being fetched.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
