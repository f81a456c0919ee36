package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yairfalse/valvo/report"
)

var runOutput string

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one evaluation pass over configured snapshots",
	Long: `Run loads the configured checks, collects resource snapshots, evaluates
every check against every resource, and prints the compliance report.`,
	Example: `  valvo run                       # Evaluate with valvo.yaml
  valvo run --output json         # Machine-readable report
  valvo run -c prod.yaml          # Alternate configuration`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Output format: table, json (default from config)")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := setup(ctx)
	if err != nil {
		return err
	}

	output := s.cfg.Output
	if runOutput != "" {
		output = runOutput
	}
	if output != "table" && output != "json" {
		return fmt.Errorf("invalid output format: %s (must be table or json)", output)
	}

	collections, err := s.collect(ctx)
	if err != nil {
		return err
	}

	results := s.engine.EvaluateAll(ctx, s.registry.Checks(), collections)
	r := report.Build(s.registry.Checks(), results)

	if output == "json" {
		return r.WriteJSON(os.Stdout)
	}
	if err := r.WriteTable(os.Stdout); err != nil {
		return err
	}

	if r.TotalFailed > 0 || r.TotalErrored > 0 {
		return fmt.Errorf("%d failed and %d errored evaluations", r.TotalFailed, r.TotalErrored)
	}
	return nil
}
