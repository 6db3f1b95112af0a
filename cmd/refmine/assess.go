package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/refmine/refmine/internal/assess"
	"github.com/refmine/refmine/internal/config"
	"github.com/refmine/refmine/internal/store"
)

func init() {
	// Load .env file if present (for REFMINE_API_KEY)
	_ = godotenv.Load()

	rootCmd.AddCommand(assessCmd)
}

var assessCmd = &cobra.Command{
	Use:   "assess <pdf-dir>",
	Short: "Match downloaded PDFs to stored records and assess them",
	Long: `Match downloaded PDFs to stored records and assess them.

Each PDF in the directory is matched back to an ingested record by its
extracted DOI or title, then screened for relevance; relevant papers get
a category, summary, and key takeaways. Calls to the assessment engine
are paced by the configured requests-per-minute budget.

The API key is read from REFMINE_API_KEY (or OPENAI_API_KEY), including
from a .env file in the working directory. Documents that already have a
recorded outcome are not re-assessed.`,
	Args: cobra.ExactArgs(1),
	RunE: runAssess,
}

// AssessSummary is the JSON report for one assessment run.
type AssessSummary struct {
	Documents []DocReport    `json:"documents"`
	Counts    map[string]int `json:"counts"`
}

// DocReport is the per-document slice of the summary.
type DocReport struct {
	Path    string `json:"path"`
	PaperID int64  `json:"paper_id,omitempty"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

func runAssess(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	apiKey := os.Getenv("REFMINE_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		exitWithError(ExitConfigError, "no API key: set REFMINE_API_KEY or OPENAI_API_KEY")
	}

	paths, err := listPDFs(args[0])
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if len(paths) == 0 {
		exitWithError(ExitDataError, "no PDF files in %s", args[0])
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		exitWithError(ExitConfigError, "opening database %s: %v", cfg.DBPath, err)
	}
	defer db.Close()

	var clientOpts []assess.ClientOption
	if cfg.Model != "" {
		clientOpts = append(clientOpts, assess.WithModel(cfg.Model))
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, assess.WithBaseURL(cfg.BaseURL))
	}
	client, err := assess.NewOpenAIClient(apiKey, clientOpts...)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	orch := assess.New(db, client, assess.NewLimiter(cfg.RequestsPerMinute),
		assess.WithMaxPages(cfg.MaxPages))

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Assessing documents"),
	)

	summary := AssessSummary{Counts: make(map[string]int)}
	for _, path := range paths {
		res := orch.AssessDocument(context.Background(), path)
		report := DocReport{Path: res.Path, PaperID: res.PaperID, Outcome: res.Outcome}
		if res.Err != nil {
			report.Error = res.Err.Error()
		}
		summary.Documents = append(summary.Documents, report)
		summary.Counts[res.Outcome]++
		bar.Add(1)
	}
	bar.Finish()
	os.Stderr.WriteString("\n")

	if humanOutput {
		for _, d := range summary.Documents {
			line := d.Outcome
			if d.Error != "" {
				line += ": " + d.Error
			}
			outputHuman("%s: %s\n", filepath.Base(d.Path), line)
		}
		outputHuman("assessed %d, not applicable %d, skipped %d, unmatched %d, already recorded %d, errors %d\n",
			summary.Counts[assess.OutcomeAssessed],
			summary.Counts[assess.OutcomeNotApplicable],
			summary.Counts[assess.OutcomeSkipped],
			summary.Counts[assess.OutcomeUnmatched],
			summary.Counts[assess.OutcomeAlreadyAssessed],
			summary.Counts[assess.OutcomeError])
		return nil
	}
	return outputJSON(summary)
}

// listPDFs returns the PDF files directly under dir, in name order.
func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}
