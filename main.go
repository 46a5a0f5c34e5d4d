// =============================================================================
// Disperse Validator - Main Entry Point
// =============================================================================
//
// USAGE:
//   disperse validate [file|-]   - Report problems in a recipient list
//   disperse resolve [file|-]    - Resolve duplicate addresses
//   disperse process             - Validate every file in the input directory
//   disperse serve               - Start the JSON API
//   disperse version             - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Parsing, validation, reconciliation, import, API
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/disperse-validator/cmd"
)

func main() {
	cmd.Execute()
}
