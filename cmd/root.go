// =============================================================================
// Compliance Batch Processor - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that the 'process' and 'version' commands attach to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (compliance-batch)
//   ├── processCmd (compliance-batch process)
//   └── versionCmd (compliance-batch version)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// cfgFile holds the path to the configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose forces debug-level logging when set to true.
var verbose bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "compliance-batch",
	Short: "Compliance Batch Processor - Evaluate business-entity compliance records from delimited files",
	Long: `Compliance Batch Processor ingests batches of business-entity compliance
records from delimited files (CSV or XLSX) placed in a drop directory,
normalizes heterogeneous column naming into a canonical schema, drives each
record through the compliance evaluation service, and persists one report
artifact per row.

Processing is resumable: a checkpoint records the last fully completed row,
so an interrupted or crashed run picks up exactly where it left off without
reprocessing committed work.

Example Usage:
  compliance-batch process                      # Process all pending files once
  compliance-batch process --watch              # Keep running, process files as they arrive
  compliance-batch process --wait-time 2s       # Override the inter-row pacing delay
  compliance-batch process --config ./my.yaml   # Use a custom configuration file`,

	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print the help message.
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags are available to this command and all subcommands.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file (default is config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
