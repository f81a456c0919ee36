package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	configPath string
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "valvo",
		Short: "Compliance Check Engine",
		Long: `Valvo - Compliance Check Engine

Valvo evaluates declarative YAML-defined checks against collections of
collected cloud resources (AWS, GitHub, Azure, Google Workspace snapshots)
and produces compliance reports mapped to frameworks like NIST 800-53.

Field-path comparisons cover most checks; custom logic fragments handle
the rest in a sandboxed evaluator.`,
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// init sets up the root command
func init() {
	rootCmd.SetVersionTemplate(`Valvo {{.Version}} - Compliance Check Engine
`)
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "valvo.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}
