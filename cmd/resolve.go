// =============================================================================
// Disperse Validator - Resolve Command
// =============================================================================
//
// COMMAND USAGE:
//   disperse resolve [file|-] --policy keep-first|combine-balance [flags]
//
// FLAGS:
//   --policy, -p : Duplicate policy (default: duplicate_policy from config)
//   --output, -o : Write the resolved list to this file instead of stdout
//   --write, -w  : Overwrite the input file with the resolved list
//
// The resolved list goes to stdout (or the chosen file); the problems that
// remain after re-validation go to stderr.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/disperse-validator/internal/processor"
	"github.com/ginjaninja78/disperse-validator/internal/reconcile"
	"github.com/ginjaninja78/disperse-validator/internal/validation"
	"github.com/ginjaninja78/disperse-validator/pkg/utils"
)

var (
	resolvePolicy string
	resolveOutput string
	resolveWrite  bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [file|-]",
	Short: "Resolve duplicate addresses in a recipient list",
	Long: `Resolve rewrites a recipient list according to a duplicate policy and
validates the result again.

Policies:
  keep-first       Drop later lines repeating an exact address and amount.
  combine-balance  Merge every address into one line carrying the summed amount.
                   Lines without an address and an amount are dropped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runResolve(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVarP(&resolvePolicy, "policy", "p", "",
		"Duplicate policy (keep-first, combine-balance); defaults to duplicate_policy from the config")
	resolveCmd.Flags().StringVarP(&resolveOutput, "output", "o", "",
		"Write the resolved list to this file")
	resolveCmd.Flags().BoolVarP(&resolveWrite, "write", "w", false,
		"Overwrite the input file with the resolved list")
}

func runResolve(cmd *cobra.Command, args []string) error {
	name := resolvePolicy
	if name == "" {
		name = appConfig.DuplicatePolicy
	}
	policy, err := reconcile.ParsePolicy(name)
	if err != nil {
		return err
	}

	if resolveWrite {
		if len(args) == 0 || args[0] == "-" {
			return fmt.Errorf("--write needs an input file")
		}
		if resolveOutput != "" {
			return fmt.Errorf("--write and --output cannot be used together")
		}
		if processor.DetectKind(args[0]) != processor.KindText {
			return fmt.Errorf("--write only supports plain text files; use --output for %s", filepath.Ext(args[0]))
		}
	}

	input, source, err := loadInput(cmd, args)
	if err != nil {
		return err
	}

	validator := validation.New(processor.ValidatorOptions(appConfig))
	outcome, err := reconcile.New(validator).Resolve(input.Text, policy)
	if err != nil {
		return err
	}

	appLogger.Info("Resolved %s with %s: %d line(s) removed", source, policy, outcome.Removed())

	switch {
	case resolveWrite:
		if err := writeResolved(args[0], outcome.Text); err != nil {
			return err
		}
	case resolveOutput != "":
		if err := writeResolved(resolveOutput, outcome.Text); err != nil {
			return err
		}
	default:
		fmt.Fprintln(cmd.OutOrStdout(), outcome.Text)
	}

	for _, message := range outcome.Result.Messages() {
		fmt.Fprintln(cmd.ErrOrStderr(), message)
	}

	return nil
}

// writeResolved replaces path with text, ending the file with a newline.
func writeResolved(path, text string) error {
	dir := filepath.Dir(path)
	if _, err := utils.WriteOutputFile(dir, filepath.Base(path), text+"\n"); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
