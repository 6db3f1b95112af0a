package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/refmine/refmine/internal/config"
	"github.com/refmine/refmine/internal/ingest"
	"github.com/refmine/refmine/internal/store"
)

func init() {
	rootCmd.AddCommand(ingestCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <manifest.yaml>",
	Short: "Ingest bibliographic export files into the corpus",
	Long: `Ingest bibliographic export files into the corpus.

The manifest lists export files grouped by format:

  sources:
    - format: ieee
      files: [exports/ieee_batch1.csv]
    - format: bibtex
      files: [exports/scopus.bib]

Supported formats: bibtex, ieee, springer, dblp, proquest.
Files are processed in manifest order; entries already present (same
normalized DOI, or same title and authors for entries without one) are
counted as duplicates and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

// IngestResult is the JSON report for one ingestion run.
type IngestResult struct {
	Files  []ingest.FileResult `json:"files"`
	Totals ingest.Stats        `json:"totals"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	manifest, err := ingest.LoadManifest(args[0])
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		exitWithError(ExitConfigError, "opening database %s: %v", cfg.DBPath, err)
	}
	defer db.Close()

	gate := ingest.NewGate(db)
	results, err := gate.ProcessBatch(context.Background(), manifest)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	out := IngestResult{Files: results}
	for _, r := range results {
		out.Totals.Inserted += r.Stats.Inserted
		out.Totals.Duplicate += r.Stats.Duplicate
		out.Totals.NoIdentifier += r.Stats.NoIdentifier
		out.Totals.RowErrors += r.Stats.RowErrors
	}

	if humanOutput {
		for _, r := range results {
			outputHuman("%s (%s): %d inserted, %d duplicate, %d without identifier, %d row errors\n",
				r.File, r.Format, r.Stats.Inserted, r.Stats.Duplicate, r.Stats.NoIdentifier, r.Stats.RowErrors)
			for _, e := range r.Errors {
				outputHuman("  ! %s\n", e)
			}
		}
		outputHuman("total: %d inserted, %d duplicate, %d without identifier, %d row errors\n",
			out.Totals.Inserted, out.Totals.Duplicate, out.Totals.NoIdentifier, out.Totals.RowErrors)
		return nil
	}
	return outputJSON(out)
}
