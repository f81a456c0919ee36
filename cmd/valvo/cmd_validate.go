package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yairfalse/valvo/resolver"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate check definitions against collected snapshots",
	Long: `Validate loads every check (catching unknown operations, conflicting
operation/custom-logic configuration and uncompilable logic fragments), then
resolves each field path strictly against the configured snapshots so broken
paths surface before a real evaluation run.`,
	Example: `  valvo validate                  # Validate checks in valvo.yaml
  valvo validate -c prod.yaml     # Validate alternate configuration`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Loading alone performs all configuration-time validation.
	s, err := setup(ctx)
	if err != nil {
		return err
	}

	if len(s.connectors) == 0 {
		fmt.Printf("✓ %d checks valid (no snapshots configured, field paths not exercised)\n", s.registry.Len())
		return nil
	}

	collections, err := s.collect(ctx)
	if err != nil {
		return err
	}

	broken := 0
	for _, check := range s.registry.Checks() {
		for _, collection := range collections {
			for _, res := range collection.Resources {
				if _, err := resolver.ResolveStrict(res.Data, check.FieldPath); err != nil {
					fmt.Printf("✗ check %s (%s): resource %s: %v\n", check.ID, check.Name, res.ID, err)
					broken++
				}
			}
		}
	}

	if broken > 0 {
		return fmt.Errorf("%d field path resolutions failed in strict mode", broken)
	}

	fmt.Printf("✓ %d checks valid against %d collections\n", s.registry.Len(), len(collections))
	return nil
}
