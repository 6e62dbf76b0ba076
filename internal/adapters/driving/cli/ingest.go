package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driven/dataset/dur"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driven"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/logger"
)

var (
	ingestManifest string
	ingestFile     string
	ingestCategory string
	ingestEncoding string
	ingestLimit    int
	ingestReset    bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the safety index from DUR CSV files",
	Long: `Reads drug-safety CSV files, renders each row into a safety document,
embeds it with the configured embedding provider and stores it in the safety
index. Ingestion is an offline job; run it once before querying.

Either list every file in a YAML manifest:

  sources:
    - path: data/병용금기.csv
      category: contraindication
    - path: data/노인주의.csv
      category: elderly
      encoding: utf-8
      limit: 5000

  pillmate ingest --manifest dur.yaml --reset

or ingest a single file:

  pillmate ingest --file data/연령금기.csv --category age_restriction`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestManifest, "manifest", "m", "", "YAML manifest listing the files to ingest")
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "single CSV file to ingest")
	ingestCmd.Flags().StringVarP(&ingestCategory, "category", "c", "", "category of --file")
	ingestCmd.Flags().StringVar(&ingestEncoding, "encoding", "cp949", "encoding of --file (cp949 or utf-8)")
	ingestCmd.Flags().IntVar(&ingestLimit, "limit", 0, "maximum rows read from --file (0 = all)")
	ingestCmd.Flags().BoolVar(&ingestReset, "reset", false, "empty the safety index before ingesting")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if indexerFactory == nil {
		return errors.New("safety indexer not configured")
	}

	sources, err := ingestSources()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	indexer, closer, err := indexerFactory(ctx, ingestReset)
	if err != nil {
		return fmt.Errorf("failed to open safety index: %w", err)
	}
	defer func() {
		if cerr := closer.Close(); cerr != nil {
			logger.Warn("closing safety index: %v", cerr)
		}
	}()

	total := 0
	for _, src := range sources {
		rows, skipped, err := src.Rows(ctx)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", src.Name(), err)
		}
		if skipped > 0 {
			logger.Warn("%s: skipped %d malformed rows", src.Name(), skipped)
		}

		added, err := indexer.Ingest(ctx, rows, src.Category())
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", src.Name(), err)
		}
		cmd.Printf("%s [%s]: %d documents\n", src.Name(), src.Category(), added)
		total += added
	}

	cmd.Printf("Ingested %d documents.\n", total)
	return nil
}

// ingestSources resolves the flags into the files to read.
func ingestSources() ([]driven.SafetySource, error) {
	switch {
	case ingestManifest != "" && ingestFile != "":
		return nil, errors.New("use either --manifest or --file, not both")

	case ingestManifest != "":
		manifest, err := dur.LoadManifest(ingestManifest)
		if err != nil {
			return nil, err
		}
		return manifest.Files()

	case ingestFile != "":
		category, ok := domain.ParseSafetyCategory(ingestCategory)
		if !ok {
			return nil, fmt.Errorf("%w: --category must name a safety category, got %q",
				domain.ErrInvalidInput, ingestCategory)
		}
		file, err := dur.NewFile(ingestFile, category, ingestEncoding, ingestLimit)
		if err != nil {
			return nil, err
		}
		return []driven.SafetySource{file}, nil

	default:
		return nil, errors.New("give --manifest or --file")
	}
}
