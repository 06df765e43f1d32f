// =============================================================================
// Compliance Batch Processor - Main Entry Point
// =============================================================================
//
// This is the main entry point for the compliance batch processor CLI.
// It initializes the Cobra CLI framework and delegates command execution
// to the cmd package.
//
// USAGE:
//   compliance-batch process    - Process all pending files in the drop directory
//   compliance-batch version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : core pipeline logic (not for external import)
//   - pkg/       : shared utilities
//
// =============================================================================

package main

import (
	"github.com/entityops/compliance-batch/cmd"
)

func main() {
	cmd.Execute()
}
