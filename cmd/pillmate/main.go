// Command pillmate identifies medicines and looks up drug-safety records.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driven/ai"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driven/config/env"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driven/config/file"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driven/config/memory"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driven/dataset/aihub"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driven/watch"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/cli"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driven"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driving"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/services"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env is normal.
	_ = godotenv.Load()

	dir, err := file.DefaultDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	var configStore driven.ConfigStore
	configStore, err = file.NewConfigStore(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; settings will not be saved\n", err)
		configStore = memory.NewConfigStore(nil)
	}

	settingsService := services.NewSettingsService(env.New(configStore), ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load settings: %v\n", err)
		return 1
	}
	applyDataDefaults(settings, dir)
	if err := settings.Search.Weights.Validate(); err != nil {
		logger.Warn("scoring weights: %v; using defaults", err)
		settings.Search.Weights = domain.DefaultScoreWeights()
	}

	catalog := services.NewCatalogService(aihub.NewReader(settings.Catalog.Dir))
	scorer := services.NewScorer(settings.Search.Weights)
	candidates := services.NewCandidateSearchService(catalog, scorer, settings.Search.TopN)

	backends := services.NewLazyBackends(ai.SafetyBackendBuilder(settings, ai.OpenForQuery))
	defer backends.Close()
	retriever := services.NewSafetyRetrieverService(backends)

	llm, err := ai.CreateLLMService(&settings.LLM)
	if err != nil {
		logger.Warn("LLM unavailable: %v", err)
	}
	if llm != nil {
		defer llm.Close()
	}
	advisor := services.NewSafetyAdvisorService(retriever, llm)
	if prompts, err := file.NewPromptStore(filepath.Join(dir, "prompts")); err == nil {
		advisor.SetPromptStore(prompts)
	}

	svc := &cli.Services{
		Catalog:    catalog,
		Candidates: candidates,
		Safety:     retriever,
		Advisor:    advisor,
		Regimen:    services.NewRegimenService(catalog, retriever),
		Settings:   settingsService,
		Indexer:    indexerFactory(settings),
	}
	if settings.Catalog.Watch {
		svc.Watcher = watch.NewCatalogWatcher(settings.Catalog.Dir, catalog)
	}

	cli.SetVersion(version)
	cli.SetServices(svc)

	if err := cli.ExecuteContext(context.Background()); err != nil {
		return 1
	}
	return 0
}

// applyDataDefaults places the catalog and sqlite index under the config
// directory when they are not configured.
func applyDataDefaults(settings *domain.AppSettings, dir string) {
	if settings.Catalog.Dir == "" {
		settings.Catalog.Dir = filepath.Join(dir, "catalog")
	}
	if settings.Safety.Path == "" {
		settings.Safety.Path = filepath.Join(dir, "safety.db")
	}
}

// indexerFactory opens the safety index for writing on demand, so commands
// other than ingest never create the index file.
func indexerFactory(settings *domain.AppSettings) cli.IndexerFactory {
	build := ai.SafetyBackendBuilder(settings, ai.OpenForIngest)

	return func(ctx context.Context, reset bool) (driving.SafetyIndexer, io.Closer, error) {
		embedder, store, err := build(ctx)
		if err != nil {
			return nil, nil, err
		}
		closer := closerFunc(func() error {
			return errors.Join(store.Close(), embedder.Close())
		})

		if reset {
			if err := store.Reset(ctx); err != nil {
				_ = closer.Close()
				return nil, nil, fmt.Errorf("failed to reset safety index: %w", err)
			}
			logger.Info("safety index reset")
		}

		indexer := services.NewSafetyIndexService(embedder, store,
			services.WithRateLimit(ai.EmbeddingRateLimit(&settings.Embedding)))
		return indexer, closer, nil
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
