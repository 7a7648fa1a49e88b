// Package cmd provides the CLI for the course axis extractor.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "courseaxis",
	Short: "Courseaxis - flatten course content trees into axis records",
	Long: `Courseaxis reads course export directories and flattens each course run's
content tree into an ordered list of axis records, written as CSV, text, or
SQLite.`,
}

func Execute() error {
	return rootCmd.Execute()
}
