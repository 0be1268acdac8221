// =============================================================================
// Back-office Extract - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (backoffice)
//   ├── invoicesCmd  (backoffice invoices)
//   ├── stocktakeCmd (backoffice stocktake)
//   ├── promosCmd    (backoffice promos)
//   ├── catalogCmd   (backoffice catalog)
//   └── versionCmd   (backoffice version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading .env and the main configuration
//   3. Setting up logging with a per-run id
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/backoffice-extract/internal/config"
	"github.com/ginjaninja78/backoffice-extract/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// mainConfig and logger are set up before any subcommand runs.
var (
	mainConfig *config.MainConfig
	logger     *zap.Logger
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "backoffice",

	Short: "Back-office Extract - Turn supplier PDFs and scanner exports into tables",

	Long: `Back-office Extract turns the paperwork of a bottle shop into tables:

  - Supplier invoice PDFs become one line item workbook per document,
    filed under the detected supplier (ALM, COKE, CUB, LION)
  - Two scanner exports are reconciled against the products table into a
    final count, with every unmatched barcode listed
  - A promo catalog PDF becomes one consolidated product and price table

Example Usage:
  backoffice invoices                              # Process the invoice input directory
  backoffice stocktake --scanner1 a.csv --scanner2 b.xlsx --products products.csv
  backoffice promos --pdf catalog.pdf --category-ranges "ALM BEER:6-8|CUB BEER:9-10"
  backoffice catalog                               # Check the supplier workbook`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == versionCmd {
			return nil
		}
		return initRun()
	},

	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print the help message.
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// initRun loads the environment and the configuration and builds the logger.
func initRun() error {
	if err := config.LoadEnv(".env"); err != nil {
		return err
	}

	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	log, err := logging.New(cfg.LogLevel, verbose, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	mainConfig = cfg
	logger = log.With(zap.String("run_id", uuid.New().String()))
	logger.Debug("configuration loaded", zap.String("config", cfgFile))
	return nil
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================
	// Persistent flags are available to this command and all subcommands.

	// --config flag: A missing file falls back to the defaults.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	// --verbose flag: Enables debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
