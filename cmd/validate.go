// =============================================================================
// Disperse Validator - Validate Command
// =============================================================================
//
// COMMAND USAGE:
//   disperse validate [file|-] [flags]
//
// FLAGS:
//   --format : Report format: text, yaml or xml (default text)
//   --strict : Exit with status 1 when any error or duplicate is found
//
// Without a file argument, or with "-", the list is read from stdin.
// CSV and XLSX files are imported with the "import" settings of the config.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/disperse-validator/internal/processor"
	"github.com/ginjaninja78/disperse-validator/internal/report"
	"github.com/ginjaninja78/disperse-validator/internal/validation"
)

var (
	validateFormat string
	validateStrict bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [file|-]",
	Short: "Validate a recipient list",
	Long: `Validate checks every line of a recipient list and prints one message per
problem: invalid address length or format, invalid amount, missing values, and
addresses that appear on more than one line.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", string(report.FormatText),
		"Report format (text, yaml, xml)")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false,
		"Exit with status 1 when any problem is found")
}

func runValidate(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(validateFormat)
	if err != nil {
		return err
	}

	input, source, err := loadInput(cmd, args)
	if err != nil {
		return err
	}

	result := validation.New(processor.ValidatorOptions(appConfig)).Validate(input.Text)
	appLogger.Debug("Validated %s: %s", source, validation.FormatErrors(result))

	r := report.New(result, report.Options{Source: source})
	if err := report.Write(cmd.OutOrStdout(), r, format); err != nil {
		return err
	}

	if validateStrict && !result.Valid() {
		return &exitError{code: 1}
	}
	return nil
}

// loadInput reads the list named by args, or stdin for no argument or "-".
func loadInput(cmd *cobra.Command, args []string) (*processor.Input, string, error) {
	if len(args) == 0 || args[0] == "-" {
		input, err := processor.LoadText(cmd.InOrStdin())
		if err != nil {
			return nil, "", err
		}
		return input, "stdin", nil
	}

	input, err := processor.Load(args[0], appConfig.Import)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load %s: %w", args[0], err)
	}
	return input, args[0], nil
}
