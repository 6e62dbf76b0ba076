// Package cli provides the pillmate command line interface built on cobra.
// Services are injected by the binary through SetServices before Execute.
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driving"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/logger"
)

// version is set at build time.
var version = "dev"

var verbose bool

// IndexerFactory opens the safety index for writing. When reset is true the
// collection is emptied first. The returned closer releases the backends.
type IndexerFactory func(ctx context.Context, reset bool) (driving.SafetyIndexer, io.Closer, error)

// CatalogWatcher reloads the catalog when its dataset changes.
type CatalogWatcher interface {
	OnReload(fn func(domain.LoadResult))
	Run(ctx context.Context) error
}

// Services holds everything the commands need.
type Services struct {
	Catalog    driving.CatalogService
	Candidates driving.CandidateSearch
	Safety     driving.SafetyRetriever
	Advisor    driving.SafetyAdvisor
	Regimen    driving.RegimenAnalyzer
	Settings   driving.SettingsService
	Indexer    IndexerFactory

	// Watcher is nil unless catalog.watch is enabled.
	Watcher CatalogWatcher
}

var (
	catalogService  driving.CatalogService
	candidateSearch driving.CandidateSearch
	safetyRetriever driving.SafetyRetriever
	safetyAdvisor   driving.SafetyAdvisor
	regimenAnalyzer driving.RegimenAnalyzer
	settingsService driving.SettingsService
	indexerFactory  IndexerFactory
	catalogWatcher  CatalogWatcher
)

var rootCmd = &cobra.Command{
	Use:   "pillmate",
	Short: "Medicine identification and drug-safety lookup",
	Long: `pillmate identifies medicines from text read off a package or pill and
looks up drug-safety records (contraindications, age, pregnancy and elderly
restrictions) for them.

Run 'pillmate ingest' once to build the safety index, then use 'identify',
'safety', 'analyze', the interactive 'tui' or the 'mcp serve' tool server.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
		if needsCatalog(cmd) {
			loadCatalog(cmd)
		}
	},
}

// annotationCatalog marks commands (and their subcommands) that query the
// reference catalog, so it is only read when needed.
const annotationCatalog = "pillmate/catalog"

var catalogAnnotation = map[string]string{annotationCatalog: "load"}

func needsCatalog(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[annotationCatalog]; ok {
			return true
		}
	}
	return false
}

// loadCatalog reads the reference dataset once per process.
func loadCatalog(cmd *cobra.Command) {
	if catalogService == nil || catalogService.State().IsReady() {
		return
	}
	result := catalogService.Load(cmd.Context())
	logger.Debug("catalog %s: %d records from %d files", result.State, result.Records, result.Files)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs to stderr")
}

// SetServices injects the services used by the commands.
func SetServices(s *Services) {
	catalogService = s.Catalog
	candidateSearch = s.Candidates
	safetyRetriever = s.Safety
	safetyAdvisor = s.Advisor
	regimenAnalyzer = s.Regimen
	settingsService = s.Settings
	indexerFactory = s.Indexer
	catalogWatcher = s.Watcher
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
