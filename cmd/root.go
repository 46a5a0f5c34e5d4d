// =============================================================================
// Disperse Validator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (disperse)
//   ├── validateCmd (disperse validate)
//   ├── resolveCmd  (disperse resolve)
//   ├── processCmd  (disperse process)
//   ├── serveCmd    (disperse serve)
//   └── versionCmd  (disperse version)
//
// The root command is responsible for:
//   1. Setting up global flags (--config, --verbose, --log-level)
//   2. Loading the configuration file
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/disperse-validator/internal/config"
	"github.com/ginjaninja78/disperse-validator/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// logLevel overrides the configured log level when set.
var logLevel string

// appConfig and appLogger are prepared by PersistentPreRunE for every
// command except version.
var (
	appConfig *config.MainConfig
	appLogger *logging.ZapLogger
)

// exitError carries a process exit status without printing an error.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "disperse",
	Short: "Disperse Validator - Check recipient lists before a token disperse",
	Long: `Disperse Validator checks recipient lists of the form "address amount"
before tokens are sent to many addresses in one transaction.

Each line holds an Ethereum address and an amount separated by spaces, "="
or ",". The validator reports malformed addresses, invalid amounts, missing
values and addresses that appear more than once, and can resolve duplicates
by keeping the first occurrence or by combining the balances.

Example Usage:
  disperse validate recipients.txt          # Report problems in a list
  disperse validate - < recipients.txt      # Read the list from stdin
  disperse resolve list.txt --policy combine-balance -o fixed.txt
  disperse process                          # Validate every file in input_dir
  disperse serve --addr :8080               # Start the JSON API`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		return initApp()
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		appLogger.Close()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			stop()
			os.Exit(exit.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// initApp loads the configuration and sets up logging.
func initApp() error {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if verbose {
		level = "debug"
	}

	logger, err := logging.New(level, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	appConfig = cfg
	appLogger = logger
	appLogger.Debug("Loaded configuration from %s", cfgFile)

	return nil
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultPath,
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	rootCmd.PersistentFlags().StringVar(
		&logLevel,
		"log-level",
		"",
		"Log level (debug, info, warn, error); overrides the config file",
	)
}
