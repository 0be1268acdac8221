package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/backoffice-extract/internal/catalog"
)

// catalogCmd represents the 'catalog' command.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Check the supplier reference workbook",
	Long: `The catalog command loads the supplier reference workbook and prints the
number of product codes per supplier, the sheets that were ignored and every
code that maps to more than one product name.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if productsWorkbook != "" {
			mainConfig.ProductsWorkbook = productsWorkbook
		}

		cat, err := catalog.Load(mainConfig.ProductsWorkbook)
		if err != nil {
			return fmt.Errorf("failed to load supplier workbook: %w", err)
		}

		fmt.Fprintf(out, "Workbook: %s\n", mainConfig.ProductsWorkbook)
		for _, s := range cat.Suppliers() {
			fmt.Fprintf(out, "  %-5s %d code(s)\n", s, cat.Len(s))
		}
		if ignored := cat.Ignored(); len(ignored) > 0 {
			fmt.Fprintf(out, "Ignored sheets: %s\n", strings.Join(ignored, ", "))
		}

		conflicts := cat.Conflicts()
		if len(conflicts) == 0 {
			fmt.Fprintln(out, "No conflicts.")
			return nil
		}
		fmt.Fprintf(out, "%d conflict(s):\n", len(conflicts))
		for _, c := range conflicts {
			fmt.Fprintf(out, "  %s\n", c)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().StringVar(&productsWorkbook, "products", "", "Supplier reference workbook (overrides config)")
}
