package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/refmine/refmine/internal/citation"
	"github.com/refmine/refmine/internal/config"
	"github.com/refmine/refmine/internal/doi"
	"github.com/refmine/refmine/internal/store"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <doi>",
	Short: "Show one record and its assessment detail",
	Long: `Show one record and its assessment detail.

The identifier is normalized first, so resolver URLs and "doi:" prefixes
are accepted as-is.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

// ShowResult is the show command output.
type ShowResult struct {
	Record     citation.Record      `json:"record"`
	Assessment *citation.Assessment `json:"assessment,omitempty"`
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	id := doi.Normalize(args[0])
	if id == "" {
		exitWithError(ExitDataError, "no identifier found in %q", args[0])
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		exitWithError(ExitConfigError, "opening database %s: %v", cfg.DBPath, err)
	}
	defer db.Close()

	ctx := context.Background()
	rec, err := db.FindByDOI(ctx, id)
	if store.IsNotFound(err) {
		rec, err = db.FindByDOIFold(ctx, id)
	}
	if store.IsNotFound(err) {
		exitWithError(ExitDataError, "no record for %s", id)
	}
	if err != nil {
		exitWithError(ExitError, "looking up %s: %v", id, err)
	}

	out := ShowResult{Record: *rec}
	if a, err := db.GetAssessment(ctx, rec.ID); err == nil {
		out.Assessment = a
	} else if !store.IsNotFound(err) {
		exitWithError(ExitError, "reading assessment: %v", err)
	}

	if humanOutput {
		printRecordHuman(out)
		return nil
	}
	return outputJSON(out)
}

func printRecordHuman(r ShowResult) {
	rec := r.Record
	outputHuman("%s\n", truncateString(rec.Title, DetailTitleMaxLen))
	outputHuman("  doi:     %s\n", rec.DOI)
	if rec.Authors != "" {
		outputHuman("  authors: %s\n", rec.Authors)
	}
	if rec.Venue != "" {
		outputHuman("  venue:   %s", rec.Venue)
		if rec.Year != 0 {
			outputHuman(" (%d)", rec.Year)
		}
		outputHuman("\n")
	} else if rec.Year != 0 {
		outputHuman("  year:    %d\n", rec.Year)
	}
	if rec.PubType != "" {
		outputHuman("  type:    %s\n", rec.PubType)
	}
	if rec.DownloadLink != "" {
		outputHuman("  link:    %s\n", rec.DownloadLink)
	}
	outputHuman("  source:  %s\n", rec.SourceFile)

	if r.Assessment == nil {
		outputHuman("\nno assessment recorded\n")
		return
	}

	a := r.Assessment
	outputHuman("\nassessment (%s, %s)\n", a.Status, a.AssessedAt.Format("2006-01-02"))
	if a.Status == citation.StatusAssessed {
		outputHuman("  relevant:    %t\n", a.Relevant)
		outputHuman("  significant: %t\n", a.Significant)
		outputHuman("  category:    %s\n", a.Category)
		outputHuman("  summary:     %s\n", a.Summary)
		outputHuman("  takeaways:   %s\n", a.Takeaways)
	}
}
