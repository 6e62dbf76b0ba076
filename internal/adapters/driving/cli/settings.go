package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
)

var errSettingsNotConfigured = errors.New("settings service not configured")

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View or change pillmate configuration",
	Long: `Prints the active configuration when run without a subcommand.

Subcommands change one part of ~/.pillmate/config.toml: the reference catalog
directory, the safety index backend or the AI providers. 'wizard' walks
through all of them.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active configuration",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Configure everything step by step",
	RunE:  runSettingsWizard,
}

var settingsCatalogCmd = &cobra.Command{
	Use:   "catalog [dir]",
	Short: "Set the reference dataset directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsCatalog,
}

var settingsBackendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Choose where the safety index is stored",
	Long: `Select where the safety index is stored.

Available backends:
  sqlite    - Local SQLite file (default)
  memory    - Process memory only, lost on exit
  postgres  - PostgreSQL with the pgvector extension`,
	RunE: runSettingsBackend,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Choose the embedding provider for the safety index",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runProviderStep(cmd, embeddingStep)
	},
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Choose the LLM that answers safety questions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runProviderStep(cmd, llmStep)
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsWizardCmd, settingsCatalogCmd,
		settingsBackendCmd, settingsEmbeddingCmd, settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("[Catalog]")
	cmd.Printf("  Directory: %s\n", orNotSet(s.Catalog.Dir))
	cmd.Printf("  Watch: %s\n", yesNo(s.Catalog.Watch))
	cmd.Println()

	w := s.Search.Weights
	cmd.Println("[Search]")
	cmd.Printf("  Top N: %d\n", s.Search.TopN)
	cmd.Printf("  Weights: name %.1f, imprint %.1f/%.1f, company %.1f, ingredient %.1f\n",
		w.NameExact, w.ImprintFront, w.ImprintBack, w.Company, w.IngredientExact)
	cmd.Println()

	cmd.Println("[Safety Index]")
	cmd.Printf("  Backend: %s\n", s.Safety.Backend)
	switch s.Safety.Backend {
	case domain.VectorBackendPostgres:
		cmd.Printf("  DSN: %s\n", maskDSN(s.Safety.DSN))
	case domain.VectorBackendSQLite:
		cmd.Printf("  Path: %s\n", s.Safety.Path)
	}
	cmd.Printf("  Collection: %s\n", s.Safety.Collection)
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, s.Embedding.Provider, s.Embedding.Model, s.Embedding.BaseURL, s.Embedding.APIKey)
	if s.Embedding.CachePath != "" {
		cmd.Printf("  Cache: %s\n", s.Embedding.CachePath)
	}
	cmd.Printf("  Status: %s\n", configuredStatus(s.Embedding.IsConfigured(), "not configured"))
	cmd.Println()

	cmd.Println("[LLM]")
	printProvider(cmd, s.LLM.Provider, s.LLM.Model, s.LLM.BaseURL, s.LLM.APIKey)
	cmd.Printf("  Status: %s\n", configuredStatus(s.LLM.IsConfigured(), "not configured (safety ask disabled)"))
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'pillmate settings wizard' to fix configuration issues.")
		return nil
	}
	cmd.Println("Configuration is valid.")
	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if provider == domain.AIProviderOllama {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if !provider.RequiresAPIKey() {
		return
	}
	if apiKey == "" {
		cmd.Println("  API Key: (not set)")
		return
	}
	cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	current, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	in := bufio.NewReader(cmd.InOrStdin())

	heading(cmd, "1. Reference catalog")
	cmd.Printf("Directory of reference JSON files [%s]: ", current.Catalog.Dir)
	if dir := readLine(in); dir != "" {
		if err := setCatalogDir(cmd, dir); err != nil {
			return err
		}
	}
	cmd.Println()

	heading(cmd, "2. Safety index backend")
	if err := configureSafetyBackend(cmd, in); err != nil {
		return err
	}

	heading(cmd, "3. Embedding provider")
	cmd.Println("The local provider works offline.")
	if err := configureProvider(cmd, in, embeddingStep()); err != nil {
		return err
	}

	heading(cmd, "4. LLM provider (optional)")
	cmd.Print("An LLM answers 'pillmate safety ask' questions. Configure one? [y/N]: ")
	switch strings.ToLower(readLine(in)) {
	case "y", "yes":
		if err := configureProvider(cmd, in, llmStep()); err != nil {
			return err
		}
	default:
		cmd.Println("Skipped.")
		cmd.Println()
	}

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Saved with warnings: %v\n", err)
		return nil
	}
	cmd.Println("Settings saved.")
	return nil
}

func heading(cmd *cobra.Command, title string) {
	cmd.Println(title)
	cmd.Println(strings.Repeat("-", len(title)))
}

func runSettingsCatalog(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	return setCatalogDir(cmd, args[0])
}

func setCatalogDir(cmd *cobra.Command, dir string) error {
	if err := settingsService.SetCatalogDir(dir); err != nil {
		return fmt.Errorf("failed to set catalog directory: %w", err)
	}
	cmd.Printf("Catalog directory set to: %s\n", dir)
	return nil
}

func runSettingsBackend(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	return configureSafetyBackend(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func configureSafetyBackend(cmd *cobra.Command, in *bufio.Reader) error {
	backends := []domain.VectorBackend{
		domain.VectorBackendSQLite,
		domain.VectorBackendMemory,
		domain.VectorBackendPostgres,
	}
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b)
	}
	cmd.Print("Backend [1]: ")
	selected := backends[parseChoice(readLine(in), len(backends), 1)-1]

	var location string
	switch selected {
	case domain.VectorBackendSQLite:
		cmd.Print("Index file path (empty = default): ")
		location = readLine(in)
	case domain.VectorBackendPostgres:
		cmd.Print("Postgres DSN: ")
		location = readSecret(cmd, in)
		cmd.Println()
	}

	if err := settingsService.SetSafetyBackend(selected, location); err != nil {
		return fmt.Errorf("failed to set safety backend: %w", err)
	}
	cmd.Printf("Safety backend set to: %s\n\n", selected)
	return nil
}

// providerStep describes one provider prompt. The embedding and LLM
// prompts differ only in these fields.
type providerStep struct {
	kind      string
	providers []domain.AIProvider
	models    map[domain.AIProvider]string
	set       func(provider domain.AIProvider, model, apiKey string) error
	validate  func() error
}

func embeddingStep() providerStep {
	return providerStep{
		kind:      "embedding",
		providers: domain.AllEmbeddingProviders(),
		models:    domain.DefaultEmbeddingModels(),
		set:       settingsService.SetEmbeddingProvider,
		validate:  settingsService.ValidateEmbeddingConfig,
	}
}

func llmStep() providerStep {
	return providerStep{
		kind:      "LLM",
		providers: domain.AllLLMProviders(),
		models:    domain.DefaultLLMModels(),
		set:       settingsService.SetLLMProvider,
		validate:  settingsService.ValidateLLMConfig,
	}
}

func runProviderStep(cmd *cobra.Command, step func() providerStep) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	return configureProvider(cmd, bufio.NewReader(cmd.InOrStdin()), step())
}

func configureProvider(cmd *cobra.Command, in *bufio.Reader, step providerStep) error {
	for i, p := range step.providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Printf("%s provider [1]: ", step.kind)
	provider := step.providers[parseChoice(readLine(in), len(step.providers), 1)-1]

	model := step.models[provider]
	cmd.Printf("Model [%s]: ", model)
	if m := readLine(in); m != "" {
		model = m
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("API key: ")
		apiKey = readSecret(cmd, in)
		cmd.Println()
		if apiKey == "" {
			return fmt.Errorf("%s needs an API key", provider.Description())
		}
	}

	if err := step.set(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", step.kind, err)
	}

	cmd.Printf("Checking %s... ", provider)
	if err := step.validate(); err != nil {
		cmd.Println("failed")
		return fmt.Errorf("%s provider unreachable: %w", step.kind, err)
	}
	cmd.Println("ok")
	cmd.Printf("%s provider: %s (%s)\n\n", step.kind, provider.Description(), model)
	return nil
}

//nolint:errcheck // a read error ends input the same way as EOF
func readLine(in *bufio.Reader) string {
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

// parseChoice turns a 1-based menu answer into an index, falling back to
// defaultVal on anything out of range.
func parseChoice(input string, maxVal, defaultVal int) int {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > maxVal {
		return defaultVal
	}
	return n
}

// readSecret reads without echo when stdin is the terminal.
func readSecret(cmd *cobra.Command, in *bufio.Reader) string {
	if cmd.InOrStdin() == os.Stdin && term.IsTerminal(int(os.Stdin.Fd())) {
		if secret, err := term.ReadPassword(int(os.Stdin.Fd())); err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	return readLine(in)
}

func orNotSet(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

func configuredStatus(ok bool, missing string) string {
	if ok {
		return "configured"
	}
	return missing
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// maskDSN hides the password of a postgres:// DSN.
func maskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	if user, _, ok := strings.Cut(creds, ":"); ok {
		return dsn[:scheme+3] + user + ":****" + dsn[at:]
	}
	return dsn
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
