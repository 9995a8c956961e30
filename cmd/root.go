package cmd

import (
	"fmt"
	"os"
	"spiderstat/internal/config"
	"spiderstat/internal/predictions"
	"spiderstat/internal/report"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version info, set by main from the ldflags variables.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "spiderstat",
	Short: "Dataset statistics and prediction formatting for text-to-SQL benchmarks",
	Long:  "A CLI tool for classifying gold-query hardness, summarizing SQL clause usage, and preparing model predictions for evaluation",
}

var analyseCmd = &cobra.Command{
	Use:   "analyse-dataset <dataset_name>",
	Short: "Write hardness and clause statistics for a dataset's gold queries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load shared config (~/.spiderstat/config.json) so SPIDERSTAT_*
		// from that file are visible as env vars when running via CLI.
		if err := config.LoadFromUserConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		}

		root, _ := cmd.Flags().GetString("root")
		delim, _ := cmd.Flags().GetString("delimiter")
		if utf8.RuneCountInString(delim) != 1 {
			return fmt.Errorf("delimiter must be a single character, got %q", delim)
		}
		d, _ := utf8.DecodeRuneInString(delim)

		reporter := report.New(config.Root(root), d)
		fmt.Printf("Analysing dataset: %s\n", args[0])
		return reporter.Run(args[0])
	},
}

var formatCmd = &cobra.Command{
	Use:   "format-predictions <predictions_file>",
	Short: "Convert a JSON prediction dump to a plain predictions.sql file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		check, _ := cmd.Flags().GetBool("check")

		queries, err := predictions.Format(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %d queries to %s\n", len(queries), predictions.OutputPath(args[0]))

		if check {
			if invalid := predictions.Check(queries); invalid > 0 {
				logrus.Warnf("%d of %d predictions did not parse as SQL", invalid, len(queries))
			}
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("spiderstat %s (commit %s, built %s)\n", Version, GitCommit, BuildTime)
	},
}

func init() {
	analyseCmd.Flags().String("root", "", "Directory containing dataset_files (defaults to SPIDERSTAT_ROOT or .)")
	analyseCmd.Flags().String("delimiter", "|", "Field delimiter for the statistics report")
	formatCmd.Flags().Bool("check", false, "Parse each formatted query and warn about invalid SQL")

	rootCmd.AddCommand(analyseCmd)
	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(versionCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
