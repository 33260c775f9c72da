package main

import (
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/aerissecure/export/xlsx"
)

var (
	previewOut string
	dumpModel  bool
)

var previewCmd = &cobra.Command{
	Use:   "preview FILE",
	Short: "Convert a workbook to an HTML preview",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := xlsx.ReadFile(args[0])
		if err != nil {
			return err
		}
		if previewOut == "" || previewOut == "-" {
			return xlsx.WriteHTML(cmd.OutOrStdout(), model)
		}
		f, err := os.Create(previewOut)
		if err != nil {
			return err
		}
		if err := xlsx.WriteHTML(f, model); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Print the structure of a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := xlsx.ReadFile(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if dumpModel {
			spew.Fdump(out, model)
			return nil
		}
		printSummary(out, model)
		return nil
	},
}

func init() {
	previewCmd.Flags().StringVarP(&previewOut, "output", "o", "", "Output HTML file (default stdout)")
	inspectCmd.Flags().BoolVar(&dumpModel, "dump", false, "Dump the full workbook model")
	rootCmd.AddCommand(previewCmd, inspectCmd)
}

func printSummary(w io.Writer, m xlsx.WorkbookModel) {
	for _, s := range m.Sheets {
		fmt.Fprintf(w, "%s: %d rows, %d columns\n", s.Name, len(s.Rows), len(s.ColWidths))
		if len(s.Merges) > 0 {
			fmt.Fprintf(w, "  merges: %v\n", s.Merges)
		}
		for i, width := range s.ColWidths {
			header := ""
			if c := s.Cell(0, i); c != nil {
				header = c.Value
			}
			fmt.Fprintf(w, "  column %d %q width %.2f\n", i+1, header, width)
		}
	}
}
