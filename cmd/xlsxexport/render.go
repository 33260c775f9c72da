package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/aerissecure/export"
	"github.com/aerissecure/export/render"
	"github.com/aerissecure/export/schema"
)

var (
	schemaPath   string
	dataPath     string
	outputPath   string
	sheetName    string
	modeFlag     string
	rowCeiling   int
	listSep      string
	metricsPath  string
	paddingChars float64
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a data file into a workbook",
	Long: `Render a list of records into an xlsx workbook.

The schema file describes the columns (see schema.ParseYAML) and may carry an
options block:

  options:
    sheet_name: Orders
    mode: single          # or multi
    row_ceiling: 50000
    list_separator: "; "
    auto_size_padding: 2
    origin: {row: 0, column: 0}

Flags override the options block. The data file is a YAML or JSON list of
objects whose keys follow the schema's field names.`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&schemaPath, "schema", "s", "", "YAML schema file")
	f.StringVarP(&dataPath, "data", "d", "", "YAML or JSON data file")
	f.StringVarP(&outputPath, "output", "o", "export.xlsx", "Output workbook")
	f.StringVar(&sheetName, "sheet-name", "", "Base sheet name")
	f.StringVar(&modeFlag, "mode", "", "Overflow mode: multi or single")
	f.IntVar(&rowCeiling, "row-ceiling", 0, "Row index at which a sheet counts as full")
	f.StringVar(&listSep, "list-separator", "", "Separator between list elements")
	f.Float64Var(&paddingChars, "padding", 0, "Characters added to auto-sized columns")
	f.StringVar(&metricsPath, "metrics-file", "", "Write Prometheus metrics to this file in text format")
	_ = renderCmd.MarkFlagRequired("schema")
	_ = renderCmd.MarkFlagRequired("data")
	rootCmd.AddCommand(renderCmd)
}

// fileOptions is the options block of a schema file.
type fileOptions struct {
	SheetName       string  `yaml:"sheet_name"`
	Mode            string  `yaml:"mode"`
	RowCeiling      int     `yaml:"row_ceiling"`
	ListSeparator   string  `yaml:"list_separator"`
	AutoSizePadding float64 `yaml:"auto_size_padding"`
	Origin          struct {
		Row    int `yaml:"row"`
		Column int `yaml:"column"`
	} `yaml:"origin"`
}

type schemaFile struct {
	Options fileOptions `yaml:"options"`
}

func runRender(cmd *cobra.Command, _ []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	raw, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema file %s: %w", schemaPath, err)
	}
	typ, err := schema.ParseYAML(raw)
	if err != nil {
		return err
	}
	var sf schemaFile
	if err := yaml.Unmarshal(raw, &sf); err != nil {
		return fmt.Errorf("failed to parse options in %s: %w", schemaPath, err)
	}

	cfg, err := buildConfig(cmd, sf.Options)
	if err != nil {
		return err
	}

	rows, err := loadRows(dataPath)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	opts := []export.Option{
		export.WithConfig(cfg),
		export.WithLogger(log),
		export.WithMetrics(render.NewMetrics(reg)),
	}

	f, err := export.NewWithSchema(typ, func(m schema.Map) schema.Record { return m }, opts...)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := f.AddRows(ctx, rows); err != nil {
		return err
	}
	if err := f.WriteFile(ctx, outputPath); err != nil {
		return err
	}

	if metricsPath != "" {
		if err := prometheus.WriteToTextfile(metricsPath, reg); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	log.Debug("render complete", zap.String("output", outputPath), zap.Int("rows", f.Rows()))
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s (%d sheets)\n", f.Rows(), outputPath, len(f.Sheets()))
	return nil
}

// buildConfig merges the schema file's options with the flags set on cmd.
func buildConfig(cmd *cobra.Command, fo fileOptions) (render.Config, error) {
	cfg := render.DefaultConfig()
	if fo.SheetName != "" {
		cfg.SheetName = fo.SheetName
	}
	if fo.ListSeparator != "" {
		cfg.ListSeparator = fo.ListSeparator
	}
	if fo.AutoSizePadding != 0 {
		cfg.AutoSizePadding = fo.AutoSizePadding
	}
	cfg.RowCeiling = fo.RowCeiling
	cfg.Origin = render.Origin{Row: fo.Origin.Row, Column: fo.Origin.Column}
	mode := fo.Mode

	flags := cmd.Flags()
	if flags.Changed("sheet-name") {
		cfg.SheetName = sheetName
	}
	if flags.Changed("mode") {
		mode = modeFlag
	}
	if flags.Changed("row-ceiling") {
		cfg.RowCeiling = rowCeiling
	}
	if flags.Changed("list-separator") {
		cfg.ListSeparator = listSep
	}
	if flags.Changed("padding") {
		cfg.AutoSizePadding = paddingChars
		if paddingChars == 0 {
			cfg.AutoSizePadding = render.NoPadding
		}
	}

	m, err := render.ParseMode(mode)
	if err != nil {
		return render.Config{}, err
	}
	cfg.Mode = m
	return cfg, nil
}

// loadRows decodes a YAML or JSON list of objects.
func loadRows(path string) ([]schema.Map, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file %s: %w", path, err)
	}
	var rows []schema.Map
	if err := yaml.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse data file %s: %w", path, err)
	}
	return rows, nil
}
