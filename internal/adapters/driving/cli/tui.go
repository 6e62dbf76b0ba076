package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/tui"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/tui/messages"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/logger"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for pillmate.

Type or paste text read off a package or pill, pick a candidate and see the
medicine with its safety records.

Controls:
  ↑/k, ↓/j - Navigate candidates
  Enter    - Identify / Open
  n        - New text
  Esc      - Back
  q        - Quit (menu)`,
	RunE:        runTUI,
	Annotations: catalogAnnotation,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	// Log lines must not reach the terminal while the TUI owns it.
	prevLevel := logger.CurrentLevel()
	logger.SetLevel(logger.LevelSilent)
	defer logger.SetLevel(prevLevel)

	app, err := tui.NewApp(tui.NewPorts(catalogService, candidateSearch, safetyRetriever))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	app.WithContext(ctx)

	p := tea.NewProgram(app, tea.WithAltScreen())

	startWatcher(ctx, func(result domain.LoadResult) {
		p.Send(messages.CatalogReloaded{Result: result})
	})

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
