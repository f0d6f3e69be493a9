// ABOUTME: Ingest command loads guideline documents into the knowledge index
// ABOUTME: Splits, embeds, and stores each file so triage answers stay grounded
package commands

import (
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/welldesk/careline/internal/ingest"
)

// NewIngestCmd creates the ingest command
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Ingest guideline documents into the knowledge index",
		Long: `Ingest medical guideline documents into the knowledge index.

Each file is split into chunks, embedded, and stored. Triage and
home-care answers are composed only from this indexed material.

Examples:
  careline ingest guidelines/fever.md
  careline ingest guidelines/*.md`,
		Args: cobra.MinimumNArgs(1),
		RunE: runIngest,
	}

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	a, err := buildAssistant()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ingester := ingest.NewIngester(a.client, a.index)
	ctx := cmd.Context()

	total := 0
	for _, path := range args {
		data, err := readDocument(path)
		if err != nil {
			return err
		}

		n, err := ingester.IngestDocument(ctx, data, filepath.Base(path))
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", path, err)
		}
		total += n

		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d chunks\n", path, n)
		}
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d chunks from %d files.\n", total, len(args))
	}
	return nil
}
