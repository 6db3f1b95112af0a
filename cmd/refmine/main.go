// Package main provides the refmine CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// cfgFile is an explicit config file path; empty means search defaults.
var cfgFile string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "refmine",
	Short: "Citation ingestion and assessment pipeline",
	Long: `refmine ingests bibliographic exports from multiple databases into a
single deduplicated SQLite corpus, then matches downloaded PDFs back to
their records and runs a rate-limited assessment pass over them.

All commands output JSON by default for easy integration with other
tools; pass --human for readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: refmine.yaml)")
	rootCmd.Version = Version
}
