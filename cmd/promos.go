// =============================================================================
// Back-office Extract - Promos Command
// =============================================================================
//
// COMMAND USAGE:
//   backoffice promos --pdf catalog.pdf \
//       --category-ranges "ALM BEER:6-8|CUB BEER:9-10" [--print-page-stats]
//
// Page ranges are 0-based and inclusive. Without --category-ranges the
// promo.category_ranges section of the configuration is used.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/backoffice-extract/internal/pdftext"
	"github.com/ginjaninja78/backoffice-extract/internal/pipeline"
	"github.com/ginjaninja78/backoffice-extract/internal/promo"
	"github.com/ginjaninja78/backoffice-extract/internal/report"
	"github.com/ginjaninja78/backoffice-extract/internal/types"
	"github.com/ginjaninja78/backoffice-extract/internal/xlsxwriter"
)

// pageStatSamples is the number of example rows printed per page.
const pageStatSamples = 3

var (
	promoPDF       string
	categoryRanges string
	printPageStats bool
	noAutocalib    bool
	minCodeX1      float64
	maxCodeX1      float64
	promoOut       string
)

// promosCmd represents the 'promos' command.
var promosCmd = &cobra.Command{
	Use:   "promos",
	Short: "Extract the product table of a promo catalog PDF",
	Long: `The promos command reads every product row of a promo catalog. A row starts
with a product code of at least four digits whose right edge lies in the
code column; the column is calibrated from the median code position unless
--no-autocalib is given. Rows are assigned to categories by page range.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runPromos(cmd)
	},
}

func init() {
	rootCmd.AddCommand(promosCmd)

	promosCmd.Flags().StringVar(&promoPDF, "pdf", "", "Promo catalog PDF")
	promosCmd.Flags().StringVar(&categoryRanges, "category-ranges", "", `Page ranges, e.g. "ALM BEER:6-8|CUB BEER:9-10"`)
	promosCmd.Flags().BoolVar(&printPageStats, "print-page-stats", false, "Print product rows per page with samples")
	promosCmd.Flags().BoolVar(&noAutocalib, "no-autocalib", false, "Use the manual code column bounds")
	promosCmd.Flags().Float64Var(&minCodeX1, "min-code-x1", 0, "Manual lower bound of the code column (default from config)")
	promosCmd.Flags().Float64Var(&maxCodeX1, "max-code-x1", 0, "Manual upper bound of the code column (default from config)")
	promosCmd.Flags().StringVar(&promoOut, "out", "", "Output workbook (default: <output_dir>/"+xlsxwriter.PromoFileName+")")
	promosCmd.MarkFlagRequired("pdf")
}

// runPromos extracts one promo catalog.
func runPromos(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	// =========================================================================
	// STEP 1: RESOLVE OPTIONS
	// =========================================================================

	ranges, err := resolveRanges()
	if err != nil {
		return err
	}

	opts := promo.OptionsFromConfig(mainConfig.Promo)
	if noAutocalib {
		opts.Autocalibrate = false
	}
	if cmd.Flags().Changed("min-code-x1") {
		opts.Manual.Min = minCodeX1
	}
	if cmd.Flags().Changed("max-code-x1") {
		opts.Manual.Max = maxCodeX1
	}
	if opts.Manual.Max < opts.Manual.Min {
		return fmt.Errorf("max-code-x1 %.1f is below min-code-x1 %.1f", opts.Manual.Max, opts.Manual.Min)
	}

	outPath := promoOut
	if outPath == "" {
		outPath = filepath.Join(mainConfig.OutputDir, xlsxwriter.PromoFileName)
	}

	samples := 0
	if printPageStats {
		samples = pageStatSamples
	}

	// =========================================================================
	// STEP 2: EXTRACT
	// =========================================================================

	fmt.Fprintln(out, "=== Back-office Extract: promos ===")

	issues := report.NewCollector(logger)
	runner := pipeline.NewPromoRunner(
		pdftext.New(pdftext.DefaultOptions()),
		promo.NewExtractor(opts, logger),
		issues,
		logger,
	)
	result := runner.Run(promoPDF, ranges, outPath, samples)
	if !result.Success {
		_ = writeIssueLog(out, issues, filepath.Dir(outPath), "promos")
		return result.Error
	}

	// =========================================================================
	// STEP 3: REPORT
	// =========================================================================

	mode := "manual"
	if result.Calibrated {
		mode = "calibrated"
	}
	fmt.Fprintf(out, "Code column: %.1f - %.1f (%s)\n", result.Band.Min, result.Band.Max, mode)

	if printPageStats {
		printStats(out, result.PageStats)
	}

	for _, category := range types.PromoCategories {
		fmt.Fprintf(out, "  %-18s %d\n", category, result.Counts[category])
	}
	fmt.Fprintf(out, "Products: %d (%d duplicate row(s) dropped)\n", result.Stats.Records, result.Stats.Duplicates)
	if result.OutputFile == "" {
		fmt.Fprintln(out, "No products extracted.")
	} else {
		fmt.Fprintf(out, "  ✓ %s\n", result.OutputFile)
	}

	return writeIssueLog(out, issues, filepath.Dir(outPath), "promos")
}

// resolveRanges prefers --category-ranges over the configuration.
func resolveRanges() (map[types.PromoCategory]promo.PageRange, error) {
	if strings.TrimSpace(categoryRanges) != "" {
		return promo.ParseRanges(categoryRanges)
	}
	return promo.RangesFromMap(mainConfig.Promo.CategoryRanges)
}

func printStats(out io.Writer, stats []promo.PageStat) {
	fmt.Fprintln(out, "Rows per page:")
	for _, s := range stats {
		fmt.Fprintf(out, "  page %3d: %d\n", s.Page, s.Rows)
		for _, r := range s.Samples {
			fmt.Fprintf(out, "      %s  %s  %s\n", r.Code, r.Name, r.Price.StringFixed(2))
		}
	}
}
