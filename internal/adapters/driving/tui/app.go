package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/tui/keymap"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/tui/messages"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/tui/styles"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/tui/views/identify"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/tui/views/medicine"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/tui/views/menu"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// menuView is the main navigation menu.
	menuView *menu.View

	// identifyView takes free text and lists candidates.
	identifyView *identify.View

	// medicineView shows one medicine and its safety records.
	medicineView *medicine.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()

	a := &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		menuView:     menu.NewView(s),
		identifyView: identify.NewView(s, nil, ports.Catalog, ports.Candidates),
		medicineView: medicine.NewView(s, ports.Safety),
		currentView:  messages.ViewMenu,
	}
	a.refreshCatalog()
	return a, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.identifyView.WithContext(ctx)
	a.medicineView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("pillmate - Medicine Identification"),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.currentView {
		case messages.ViewMenu:
			a.menuView, cmd = a.menuView.Update(msg)
		case messages.ViewIdentify:
			a.identifyView, cmd = a.identifyView.Update(msg)
		case messages.ViewMedicine:
			a.medicineView, cmd = a.medicineView.Update(msg)
		case messages.ViewHelp:
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
			}
		}
		return a, cmd

	case messages.CandidatesFound:
		a.identifyView, cmd = a.identifyView.Update(msg)
		return a, cmd

	case messages.MedicineSelected:
		a.currentView = messages.ViewMedicine
		return a, a.medicineView.SetRecord(msg.Record)

	case messages.SafetyLoaded:
		a.medicineView, cmd = a.medicineView.Update(msg)
		return a, cmd

	case messages.CatalogReloaded:
		a.refreshCatalog()
		a.identifyView.Notify(reloadNotice(msg.Result))
		return a, nil

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewIdentify {
			return a, a.identifyView.Init()
		}
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		switch a.currentView {
		case messages.ViewIdentify:
			a.identifyView, cmd = a.identifyView.Update(msg)
		case messages.ViewMedicine:
			a.medicineView, cmd = a.medicineView.Update(msg)
		case messages.ViewMenu, messages.ViewHelp:
			// Other views don't handle error messages
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages (cursor blink etc.) to the active view
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewIdentify:
		a.identifyView, cmd = a.identifyView.Update(msg)
	case messages.ViewMedicine:
		a.medicineView, cmd = a.medicineView.Update(msg)
	case messages.ViewHelp:
	}

	return a, cmd
}

// refreshCatalog updates the catalog summary shown by the menu and the
// identify status bar.
func (a *App) refreshCatalog() {
	a.identifyView.RefreshCatalog()

	state := a.ports.Catalog.State()
	if state.IsReady() {
		a.menuView.SetCatalogStatus(fmt.Sprintf("catalog: %d records", a.ports.Catalog.Count()), true)
		return
	}
	a.menuView.SetCatalogStatus("catalog: "+state.String()+" (check catalog.dir with 'pillmate settings')", false)
}

// reloadNotice summarises a catalog reload for the status bar.
func reloadNotice(result domain.LoadResult) string {
	if !result.State.IsReady() {
		return "catalog reload failed: " + result.Reason
	}
	return fmt.Sprintf("catalog reloaded: %d records from %d files", result.Records, result.Files)
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewIdentify:
		return a.identifyView.View()
	case messages.ViewMedicine:
		return a.medicineView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

// viewHelp renders the help view from the key bindings.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString("Help\n")
	for _, section := range keymap.DefaultKeyMap().Sections() {
		fmt.Fprintf(&b, "\n%s:\n", section.Title)
		for _, binding := range section.Bindings {
			h := binding.Help()
			fmt.Fprintf(&b, "  %-10s %s\n", h.Key, h.Desc)
		}
	}
	b.WriteString("\n[esc] back to menu")
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.identifyView.SetDimensions(width, height)
	a.medicineView.SetDimensions(width, height)
}
