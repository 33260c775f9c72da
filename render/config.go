package render

import (
	"fmt"
	"strings"
)

// Mode selects what happens when a sheet runs out of rows.
type Mode int

const (
	// MultiSheet continues on a new sheet.
	MultiSheet Mode = iota
	// SingleSheet refuses input that does not fit on one sheet.
	SingleSheet
)

func (m Mode) String() string {
	switch m {
	case MultiSheet:
		return "multi"
	case SingleSheet:
		return "single"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode parses "multi" or "single".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "multi", "multisheet", "multi-sheet":
		return MultiSheet, nil
	case "single", "singlesheet", "single-sheet":
		return SingleSheet, nil
	}
	return 0, fmt.Errorf("%w: unknown mode %q", ErrConfig, s)
}

const (
	// MaxRows is the number of rows in an xlsx worksheet.
	MaxRows = 1 << 20
	// MaxSheetNameLength is the longest sheet name an xlsx file accepts.
	MaxSheetNameLength = 31
	// MaxColumnWidth is the widest column, in characters.
	MaxColumnWidth = 255
	// NoPadding disables auto-size padding.
	NoPadding = -1
)

// Origin is the top-left cell of the header.
type Origin struct {
	Row    int
	Column int
}

// Config controls pagination and cell formatting.
type Config struct {
	// SheetName is the base name; sheets are named SheetName1, SheetName2...
	SheetName string
	Mode      Mode
	// MaxRows is the row limit of the file format.
	MaxRows int
	// RowCeiling overrides the row index at which a sheet is considered full.
	// Zero means MaxRows-1 in MultiSheet mode and MaxRows in SingleSheet mode.
	RowCeiling int
	// ListSeparator joins the elements of list values.
	ListSeparator string
	// AutoSizePadding is added to every fitted column, in characters. Zero
	// means the default; use NoPadding for none.
	AutoSizePadding float64
	Origin          Origin
}

func DefaultConfig() Config {
	return Config{
		SheetName:       "Sheet",
		Mode:            MultiSheet,
		MaxRows:         MaxRows,
		ListSeparator:   ", ",
		AutoSizePadding: 2,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if strings.TrimSpace(c.SheetName) == "" {
		c.SheetName = defaults.SheetName
	}
	if c.MaxRows <= 0 {
		c.MaxRows = defaults.MaxRows
	}
	if c.ListSeparator == "" {
		c.ListSeparator = defaults.ListSeparator
	}
	switch {
	case c.AutoSizePadding == 0:
		c.AutoSizePadding = defaults.AutoSizePadding
	case c.AutoSizePadding < 0:
		c.AutoSizePadding = 0
	}
	return c
}

func (c Config) validate() error {
	if c.Mode != MultiSheet && c.Mode != SingleSheet {
		return fmt.Errorf("%w: %s", ErrConfig, c.Mode)
	}
	if c.RowCeiling < 0 || c.RowCeiling > c.MaxRows {
		return fmt.Errorf("%w: row ceiling %d outside 0..%d", ErrConfig, c.RowCeiling, c.MaxRows)
	}
	if c.Origin.Row < 0 || c.Origin.Column < 0 {
		return fmt.Errorf("%w: negative origin %+v", ErrConfig, c.Origin)
	}
	return nil
}

// limit is the first row index that may not hold a body row.
func (c Config) limit() int {
	if c.RowCeiling > 0 {
		return c.RowCeiling
	}
	if c.Mode == SingleSheet {
		return c.MaxRows
	}
	return c.MaxRows - 1
}
