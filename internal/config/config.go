// =============================================================================
// Disperse Validator - Configuration Module
// =============================================================================
//
// This module loads the application configuration from a YAML file and fills
// in defaults for anything left unset.
//
// CONFIGURATION FILE (config.yaml):
//   - Directory settings used by the batch "process" command
//   - Logging settings
//   - Duplicate handling policy and validation options
//   - Spreadsheet import settings (CSV / XLSX uploads)
//   - HTTP server settings used by the "serve" command
//
// A missing file at the default path is not an error: the defaults are used.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/disperse-validator/internal/reconcile"
)

// DefaultPath is the configuration file used when --config is not given.
const DefaultPath = "config.yaml"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for recipient files by the process command.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the validated (and possibly reconciled) files.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives input files once they were processed cleanly.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// ErrorLogDir receives one error log per file that still has problems.
	// Default: same as OutputDir
	ErrorLogDir string `yaml:"error_log_dir"`

	// FilePatterns are the glob patterns matched inside InputDir.
	// Default: ["*.txt", "*.csv", "*.xlsx"]
	FilePatterns []string `yaml:"file_patterns"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is the path to the application log file. Empty means stderr.
	LogFile string `yaml:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat defines the name of each output file.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {original}  - Input file name without extension
	//   {policy}    - Duplicate policy applied
	// Default: "{original}_{policy}_{uuid}.txt"
	OutputNameFormat string `yaml:"output_name_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files processed at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError writes the output file even when validation errors
	// remain. Default: true
	ContinueOnError *bool `yaml:"continue_on_error"`

	// ArchiveOnSuccess moves clean input files to InputArchiveDir.
	// Default: false
	ArchiveOnSuccess bool `yaml:"archive_on_success"`

	// DuplicatePolicy is applied automatically when duplicates are found.
	// Valid values: "none", "keep-first", "combine-balance"
	// Default: "none"
	DuplicatePolicy string `yaml:"duplicate_policy"`

	// Validation contains the validator options.
	Validation ValidationSettings `yaml:"validation"`

	// Import contains the spreadsheet import settings.
	Import ImportSettings `yaml:"import"`

	// Server contains the HTTP API settings.
	Server ServerSettings `yaml:"server"`
}

// =============================================================================
// NESTED SETTINGS
// =============================================================================

// ValidationSettings mirrors the validator options.
type ValidationSettings struct {
	// CaseSensitiveDuplicates disables lower-casing before duplicate detection.
	CaseSensitiveDuplicates bool `yaml:"case_sensitive_duplicates"`

	// ReportExtraFields flags lines with more than two values.
	ReportExtraFields bool `yaml:"report_extra_fields"`
}

// ImportSettings contains settings for reading CSV and XLSX uploads.
type ImportSettings struct {
	// Delimiter is the CSV field separator.
	// Common values: "," (comma), ";" (semicolon), "\t" or "tab"
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// HeaderRows is the number of rows skipped before the first recipient.
	// Default: 0
	HeaderRows int `yaml:"header_rows"`

	// AddressColumn is the 0-based column holding the address.
	// Default: 0 (Column A)
	AddressColumn int `yaml:"address_column"`

	// AmountColumn is the 0-based column holding the amount.
	// Default: 1 (Column B)
	AmountColumn *int `yaml:"amount_column"`

	// Sheet is the XLSX sheet to read. Empty means the first sheet.
	Sheet string `yaml:"sheet"`
}

// AmountCol returns the configured amount column.
func (s ImportSettings) AmountCol() int {
	if s.AmountColumn == nil {
		return 1
	}
	return *s.AmountColumn
}

// ServerSettings contains settings for the HTTP API.
type ServerSettings struct {
	// Addr is the listen address.
	// Default: ":8080"
	Addr string `yaml:"addr"`

	// ReleaseMode puts gin in release mode (less console output).
	// Default: true
	ReleaseMode *bool `yaml:"release_mode"`
}

// IsReleaseMode reports whether gin should run in release mode.
func (s ServerSettings) IsReleaseMode() bool {
	return s.ReleaseMode == nil || *s.ReleaseMode
}

// ShouldContinueOnError reports whether outputs are written despite errors.
func (c *MainConfig) ShouldContinueOnError() bool {
	return c.ContinueOnError == nil || *c.ContinueOnError
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	config := &MainConfig{}
	applyMainConfigDefaults(config)
	return config
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read or parsed, or holds invalid values.
//     A missing file at DefaultPath yields the defaults instead.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && configPath == DefaultPath {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a YAML document into a MainConfig and applies defaults.
func Parse(data []byte) (*MainConfig, error) {
	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.ErrorLogDir == "" {
		config.ErrorLogDir = config.OutputDir
	}
	if len(config.FilePatterns) == 0 {
		config.FilePatterns = []string{"*.txt", "*.csv", "*.xlsx"}
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{original}_{policy}_{uuid}.txt"
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.DuplicatePolicy == "" {
		config.DuplicatePolicy = "none"
	}

	// Import defaults.
	if config.Import.Delimiter == "" {
		config.Import.Delimiter = ","
	}

	// Server defaults.
	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}
}

// validateMainConfig rejects values that cannot work at run time.
func validateMainConfig(config *MainConfig) error {
	switch config.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error (got %q)", config.LogLevel)
	}

	if _, err := reconcile.ParsePolicy(config.DuplicatePolicy); err != nil {
		return fmt.Errorf("duplicate_policy must be none, keep-first or combine-balance: %w", err)
	}

	if config.Import.HeaderRows < 0 {
		return fmt.Errorf("import.header_rows must not be negative")
	}
	if config.Import.AddressColumn < 0 || config.Import.AmountCol() < 0 {
		return fmt.Errorf("import columns must not be negative")
	}
	if config.Import.AddressColumn == config.Import.AmountCol() {
		return fmt.Errorf("import.address_column and import.amount_column must differ")
	}

	return nil
}
