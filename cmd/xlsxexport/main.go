// Command xlsxexport renders records described by a YAML schema into an xlsx
// workbook, and previews or inspects the result.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "xlsxexport",
	Short: "Metadata-driven xlsx export",
	Long: `Render records into xlsx workbooks with nested, merged and styled headers.

Commands:
  render   Render a YAML or JSON data file using a YAML schema.
  preview  Convert a workbook to an HTML preview.
  inspect  Print the sheets, merges and column widths of a workbook.

Examples:
  xlsxexport render --schema orders.yaml --data orders.json -o orders.xlsx
  xlsxexport preview orders.xlsx -o orders.html
  xlsxexport inspect --dump orders.xlsx`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level in a human-readable format")
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
