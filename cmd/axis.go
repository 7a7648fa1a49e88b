// This file implements the axis command, which processes one or more course
// export directories.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/spf13/cobra"

	"github.com/adalundhe/courseaxis/core/axis"
	"github.com/adalundhe/courseaxis/core/config"
	"github.com/adalundhe/courseaxis/core/export"
)

var (
	axisConfigPath string
	axisDataDir    string
	axisFormats    []string
	axisSQLitePath string
	axisNoHide     bool
	axisVerbose    bool
)

var axisCmd = &cobra.Command{
	Use:   "axis [flags] COURSE_DIR...",
	Short: "Flatten course export directories into axis files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAxis,
}

func init() {
	axisCmd.Flags().StringVar(&axisConfigPath, "config", "courseaxis.yaml", "path to YAML config file")
	axisCmd.Flags().StringVar(&axisDataDir, "data-dir", "", "output directory for axis files (overrides config)")
	axisCmd.Flags().StringSliceVar(&axisFormats, "format", nil, "file formats to write: csv, txt (overrides config)")
	axisCmd.Flags().StringVar(&axisSQLitePath, "sqlite", "", "also export to this SQLite database")
	axisCmd.Flags().BoolVar(&axisNoHide, "no-hide", false, "include elements hidden via hide_from_toc")
	axisCmd.Flags().BoolVar(&axisVerbose, "verbose", false, "enable missing-identifier diagnostics")
	rootCmd.AddCommand(axisCmd)
}

func runAxis(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	cfg, err := config.Load(axisConfigPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, &cfg)

	if err := os.MkdirAll(cfg.Export.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	var sink *export.SQLiteExporter
	if cfg.Export.SQLitePath != "" {
		sink, err = export.OpenSQLite(cfg.Export.SQLitePath, logger)
		if err != nil {
			return err
		}
		defer sink.Close()
	}

	opts := axis.BuildOptions{
		Walk: axis.Config{
			ForceNoHide:     cfg.Walk.ForceNoHide,
			VerboseWarnings: cfg.Walk.VerboseWarnings,
		},
		PolicyExcludes: cfg.Discovery.PolicyExcludes,
	}

	for _, dir := range args {
		courses, err := axis.Build(dir, opts, logger)
		if err != nil {
			return err
		}
		for _, courseID := range sortedKeys(courses) {
			if err := exportCourse(cmd.Context(), cfg, sink, courses[courseID], logger); err != nil {
				return err
			}
		}
	}
	return nil
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("data-dir") {
		cfg.Export.DataDir = axisDataDir
	}
	if cmd.Flags().Changed("format") {
		cfg.Export.Formats = axisFormats
	}
	if cmd.Flags().Changed("sqlite") {
		cfg.Export.SQLitePath = axisSQLitePath
	}
	if cmd.Flags().Changed("no-hide") {
		cfg.Walk.ForceNoHide = axisNoHide
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Walk.VerboseWarnings = axisVerbose
	}
}

func exportCourse(ctx context.Context, cfg config.Config, sink *export.SQLiteExporter, ca *axis.CourseAxis, logger *slog.Logger) error {
	base := filepath.Join(cfg.Export.DataDir, export.FileBase(ca.CourseID))

	if slices.Contains(cfg.Export.Formats, "csv") {
		if err := writeFile(base+".csv", ca, export.WriteCSV); err != nil {
			return err
		}
		logger.Info("saved course axis", "course_id", ca.CourseID, "path", base+".csv")
	}
	if slices.Contains(cfg.Export.Formats, "txt") {
		if err := writeFile(base+".txt", ca, export.WriteText); err != nil {
			return err
		}
		logger.Info("saved course axis", "course_id", ca.CourseID, "path", base+".txt")
	}
	if sink != nil {
		runID, err := sink.Export(ctx, ca)
		if err != nil {
			return err
		}
		logger.Info("saved course axis to database", "course_id", ca.CourseID, "run_id", runID)
	}
	return nil
}

func writeFile(path string, ca *axis.CourseAxis, write func(w io.Writer, elements []axis.Element) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := write(f, ca.Elements); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func sortedKeys(m map[string]*axis.CourseAxis) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
