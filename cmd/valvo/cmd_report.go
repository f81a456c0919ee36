package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/yairfalse/valvo/report"
)

var reportOutput string

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a JSON compliance report to a file",
	Long: `Report runs one evaluation pass and writes the full compliance report -
per-check and per-resource verdicts plus the framework control rollup - as
JSON for downstream reporting and persistence collaborators.`,
	Example: `  valvo report --output compliance.json
  valvo report -c prod.yaml --output reports/prod.json`,
	RunE: runReportCmd,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "compliance.json", "Report file path")
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := setup(ctx)
	if err != nil {
		return err
	}

	collections, err := s.collect(ctx)
	if err != nil {
		return err
	}

	results := s.engine.EvaluateAll(ctx, s.registry.Checks(), collections)
	r := report.Build(s.registry.Checks(), results)

	f, err := os.Create(filepath.Clean(reportOutput))
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := r.WriteJSON(f); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	fmt.Printf("report written to %s (%d checks, %d passed, %d failed, %d errored)\n",
		reportOutput, r.TotalChecks, r.TotalPassed, r.TotalFailed, r.TotalErrored)
	return nil
}
