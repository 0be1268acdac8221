// =============================================================================
// Back-office Extract - Configuration Module
// =============================================================================
//
// This module loads the application configuration from config.yaml and the
// environment.
//
// CONFIGURATION SOURCES (later wins):
//   1. Built-in defaults
//   2. config.yaml (optional; a missing file is not an error)
//   3. .env file in the working directory (optional, via godotenv)
//   4. Environment variables:
//        BACKOFFICE_INPUT_DIR   -> invoice_input_dir
//        BACKOFFICE_OUTPUT_DIR  -> invoice_output_dir
//        BACKOFFICE_LOG_LEVEL   -> log_level
//
// SECTIONS:
//   - Directories and logging
//   - invoice:   PDF invoice batch settings
//   - stocktake: scanner / product table column detection
//   - promo:     promo catalog calibration and category page ranges
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override YAML values.
const (
	EnvInputDir  = "BACKOFFICE_INPUT_DIR"
	EnvOutputDir = "BACKOFFICE_OUTPUT_DIR"
	EnvLogLevel  = "BACKOFFICE_LOG_LEVEL"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InvoiceInputDir is the directory scanned for supplier invoice PDFs.
	// Default: "./PDF_invoices"
	InvoiceInputDir string `yaml:"invoice_input_dir"`

	// InvoiceOutputDir receives one sub-directory per supplier with the
	// extracted line item workbooks.
	// Default: "./Excel_invoices"
	InvoiceOutputDir string `yaml:"invoice_output_dir"`

	// ProductsWorkbook is the supplier reference workbook, one sheet per
	// supplier with Product Code / Product Name columns.
	// Default: "./assets/products.xlsx"
	ProductsWorkbook string `yaml:"products_workbook"`

	// ArchiveDir is where processed invoice PDFs are moved when archival
	// is enabled.
	// Default: "./archive"
	ArchiveDir string `yaml:"archive_dir"`

	// OutputDir is the default output directory for stocktake and promo
	// reports.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is an optional log file written in addition to stderr.
	// Default: "" (stderr only)
	LogFile string `yaml:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// COMMAND SETTINGS
	// =========================================================================

	Invoice   InvoiceSettings   `yaml:"invoice"`
	Stocktake StocktakeSettings `yaml:"stocktake"`
	Promo     PromoSettings     `yaml:"promo"`
}

// InvoiceSettings configures the invoice batch.
type InvoiceSettings struct {
	// DefaultPO is used for documents without a PO number.
	// Default: "PO00000000"
	DefaultPO string `yaml:"default_po"`

	// ArchiveProcessed moves classified PDFs to ArchiveDir.
	ArchiveProcessed bool `yaml:"archive_processed"`

	// UseTimestampSubdirs files archived PDFs under YYYY/MM/DD.
	UseTimestampSubdirs bool `yaml:"use_timestamp_subdirs"`
}

// StocktakeSettings configures scan and product table loading.
type StocktakeSettings struct {
	// Candidate header names, compared after lower-casing and trimming.
	BarcodeCandidates []string `yaml:"barcode_candidates"`
	CountCandidates   []string `yaml:"count_candidates"`
	NameCandidates    []string `yaml:"name_candidates"`
	IDCandidates      []string `yaml:"id_candidates"`

	// CSVSettings applies to delimited scan and product files.
	CSVSettings CSVSettings `yaml:"csv_settings"`
}

// CSVSettings defines how delimited files are read.
type CSVSettings struct {
	// Delimiter is the field separator: ",", ";", "|", "tab".
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// Encoding is the file encoding: "UTF-8", "ISO-8859-1",
	// "Windows-1252", "UTF-16".
	// Default: "UTF-8"
	Encoding string `yaml:"encoding"`
}

// PromoSettings configures the promo catalog parser.
type PromoSettings struct {
	// YTolerance is the vertical distance under which words share a line.
	// Default: 2.2
	YTolerance float64 `yaml:"y_tolerance"`

	// AutoMargin is the half-width of the calibrated code column band.
	// Default: 40
	AutoMargin float64 `yaml:"auto_margin"`

	// MinCodeX1 and MaxCodeX1 bound the code column when calibration is
	// disabled or finds nothing.
	// Defaults: 60 and 190
	MinCodeX1 float64 `yaml:"min_code_x1"`
	MaxCodeX1 float64 `yaml:"max_code_x1"`

	// Autocalibrate enables median based calibration.
	// Default: true
	Autocalibrate *bool `yaml:"autocalibrate"`

	// CategoryRanges maps a category name to an inclusive 0-based page
	// range such as "6-8".
	CategoryRanges map[string]string `yaml:"category_ranges"`
}

// AutocalibrateEnabled reports whether calibration is on.
func (p PromoSettings) AutocalibrateEnabled() bool {
	return p.Autocalibrate == nil || *p.Autocalibrate
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file. A missing file
//     yields the defaults.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be parsed or fails validation.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	var config MainConfig

	// Read the configuration file.
	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&config)
	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadEnv loads KEY=VALUE pairs from the given .env files into the process
// environment. Missing files are skipped. Variables already set are kept.
func LoadEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// applyEnvOverrides copies environment overrides into the configuration.
func applyEnvOverrides(config *MainConfig) {
	if v := os.Getenv(EnvInputDir); v != "" {
		config.InvoiceInputDir = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		config.InvoiceOutputDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		config.LogLevel = v
	}
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InvoiceInputDir == "" {
		config.InvoiceInputDir = "./PDF_invoices"
	}
	if config.InvoiceOutputDir == "" {
		config.InvoiceOutputDir = "./Excel_invoices"
	}
	if config.ProductsWorkbook == "" {
		config.ProductsWorkbook = "./assets/products.xlsx"
	}
	if config.ArchiveDir == "" {
		config.ArchiveDir = "./archive"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	if config.Invoice.DefaultPO == "" {
		config.Invoice.DefaultPO = "PO00000000"
	}

	st := &config.Stocktake
	if len(st.BarcodeCandidates) == 0 {
		st.BarcodeCandidates = []string{"barcode", "bar code", "code", "ean", "upc", "codigo", "código"}
	}
	if len(st.CountCandidates) == 0 {
		st.CountCandidates = []string{"count", "qty", "quantity", "cantidad", "scans"}
	}
	if len(st.NameCandidates) == 0 {
		st.NameCandidates = []string{"productname", "name", "product", "description", "descripcion"}
	}
	if len(st.IDCandidates) == 0 {
		st.IDCandidates = []string{"productid", "id", "product id", "lightspeed id", "ls_id"}
	}
	if st.CSVSettings.Delimiter == "" {
		st.CSVSettings.Delimiter = ","
	}
	if st.CSVSettings.Encoding == "" {
		st.CSVSettings.Encoding = "UTF-8"
	}

	p := &config.Promo
	if p.YTolerance == 0 {
		p.YTolerance = 2.2
	}
	if p.AutoMargin == 0 {
		p.AutoMargin = 40
	}
	if p.MinCodeX1 == 0 {
		p.MinCodeX1 = 60
	}
	if p.MaxCodeX1 == 0 {
		p.MaxCodeX1 = 190
	}
}

// pageRangePattern matches an inclusive page range such as "6-8".
var pageRangePattern = regexp.MustCompile(`^\s*(\d+)\s*-\s*(\d+)\s*$`)

// validateMainConfig validates the configuration.
func validateMainConfig(config *MainConfig) error {
	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", config.LogLevel)
	}

	p := config.Promo
	if p.YTolerance < 0 || p.AutoMargin < 0 {
		return fmt.Errorf("promo y_tolerance and auto_margin must be positive")
	}
	if p.MinCodeX1 >= p.MaxCodeX1 {
		return fmt.Errorf("promo min_code_x1 (%g) must be below max_code_x1 (%g)", p.MinCodeX1, p.MaxCodeX1)
	}

	for name, rng := range p.CategoryRanges {
		m := pageRangePattern.FindStringSubmatch(rng)
		if m == nil {
			return fmt.Errorf("promo category %q: malformed range %q", name, rng)
		}
		start, _ := strconv.Atoi(m[1])
		end, _ := strconv.Atoi(m[2])
		if end < start {
			return fmt.Errorf("promo category %q: range %q ends before it starts", name, rng)
		}
	}

	return nil
}
