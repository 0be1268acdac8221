// =============================================================================
// Back-office Extract - Stocktake Command
// =============================================================================
//
// COMMAND USAGE:
//   backoffice stocktake --scanner1 a.csv --scanner2 b.xlsx --products p.csv
//
// OUTPUTS (in --outdir):
//   final_count.csv          ProductID, ProductName, count
//   unmatched_barcodes.xlsx  scanned_barcode, count, candidates
//                            (only when something is unmatched)
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/backoffice-extract/internal/pipeline"
	"github.com/ginjaninja78/backoffice-extract/internal/report"
	"github.com/ginjaninja78/backoffice-extract/internal/stocktake"
)

var (
	scanner1     string
	scanner2     string
	productsFile string
	stocktakeOut string
)

// stocktakeCmd represents the 'stocktake' command.
var stocktakeCmd = &cobra.Command{
	Use:   "stocktake",
	Short: "Reconcile two scanner exports with the products table",
	Long: `The stocktake command sums the counts of two scanner exports per barcode
and matches every barcode against the products table: an exact match first,
then the longest product barcode ending with the scanned one.

Headers are detected from candidate names; an export without a recognizable
header is read as barcode[, count]. Every scanned unit ends up either in
final_count.csv or in unmatched_barcodes.xlsx.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runStocktake(cmd)
	},
}

func init() {
	rootCmd.AddCommand(stocktakeCmd)

	stocktakeCmd.Flags().StringVar(&scanner1, "scanner1", "", "First scanner export (.csv, .xlsx, .xlsm)")
	stocktakeCmd.Flags().StringVar(&scanner2, "scanner2", "", "Second scanner export (.csv, .xlsx, .xlsm)")
	stocktakeCmd.Flags().StringVar(&productsFile, "products", "", "Products table (.csv, .xlsx, .xlsm)")
	stocktakeCmd.Flags().StringVar(&stocktakeOut, "outdir", "", "Output directory (default: output_dir from config)")
	stocktakeCmd.MarkFlagRequired("scanner1")
	stocktakeCmd.MarkFlagRequired("scanner2")
	stocktakeCmd.MarkFlagRequired("products")
}

// runStocktake performs one stocktake.
func runStocktake(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	outDir := stocktakeOut
	if outDir == "" {
		outDir = mainConfig.OutputDir
	}

	fmt.Fprintln(out, "=== Back-office Extract: stocktake ===")

	issues := report.NewCollector(logger)
	runner := pipeline.NewStocktakeRunner(stocktake.NewLoader(mainConfig.Stocktake, logger), issues, logger)
	result := runner.Run(pipeline.StocktakeInputs{
		Scanners: []string{scanner1, scanner2},
		Products: productsFile,
		OutDir:   outDir,
	})

	if !result.Success {
		_ = writeIssueLog(out, issues, outDir, "stocktake")
		return result.Error
	}

	rec := result.Reconciliation
	fmt.Fprintf(out, "Scanned units:    %d (%d barcode(s))\n", result.Stats.Scanned, result.Stats.Barcodes)
	fmt.Fprintf(out, "Matched units:    %d (%d product(s))\n", rec.MatchedTotal(), len(rec.Matched))
	fmt.Fprintf(out, "Unmatched units:  %d (%d barcode(s))\n", rec.UnmatchedTotal(), len(rec.Unmatched))
	fmt.Fprintf(out, "  ✓ %s\n", result.MatchedFile)
	if result.UnmatchedFile != "" {
		fmt.Fprintf(out, "  ✓ %s\n", result.UnmatchedFile)
	}

	if rec.MatchedTotal()+rec.UnmatchedTotal() != result.Stats.Scanned {
		return errors.New("scan counts not conserved")
	}

	return writeIssueLog(out, issues, outDir, "stocktake")
}
