package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/refmine/refmine/internal/config"
	"github.com/refmine/refmine/internal/store"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored records with their assessment status",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

// ListRow is one record in the list output.
type ListRow struct {
	ID       int64  `json:"id"`
	DOI      string `json:"doi"`
	Title    string `json:"title"`
	Year     int    `json:"year,omitempty"`
	Venue    string `json:"venue,omitempty"`
	Status   string `json:"status"`
	Category string `json:"category,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		exitWithError(ExitConfigError, "opening database %s: %v", cfg.DBPath, err)
	}
	defer db.Close()

	ctx := context.Background()
	records, err := db.ListIdentified(ctx)
	if err != nil {
		exitWithError(ExitError, "listing records: %v", err)
	}

	rows := make([]ListRow, 0, len(records))
	for _, rec := range records {
		row := ListRow{
			ID:     rec.ID,
			DOI:    rec.DOI,
			Title:  rec.Title,
			Year:   rec.Year,
			Venue:  rec.Venue,
			Status: "pending",
		}
		if a, err := db.GetAssessment(ctx, rec.ID); err == nil {
			row.Status = a.Status
			row.Category = a.Category
		} else if !store.IsNotFound(err) {
			exitWithError(ExitError, "reading assessment for %d: %v", rec.ID, err)
		}
		rows = append(rows, row)
	}

	if humanOutput {
		for _, r := range rows {
			outputHuman("%4d  %-14s %-40s %s\n", r.ID, r.Status, r.DOI, truncateString(r.Title, ListTitleMaxLen))
		}
		outputHuman("%d records\n", len(rows))
		return nil
	}
	return outputJSON(rows)
}
