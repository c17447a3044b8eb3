// Package main provides the pdftools CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// configPath overrides the default config file location
var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pdftools",
	Short: "Rename, retag, and deduplicate a PDF library",
	Long: `pdftools cleans up a folder of academic PDFs.

It resolves each document's title, author, and year from embedded
metadata, first-page text, and registry lookups, then renames files to
a consistent author-year-title scheme, deduplicates identical content,
and records every change in a revertible CSV audit trail. All commands
output JSON by default for easy integration with other tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/pdf-tools/config.yml)")
	rootCmd.Version = Version
}
