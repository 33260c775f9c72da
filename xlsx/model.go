package xlsx

import (
	"fmt"
)

// The read-back model. Widths are in characters, heights in pixels.

// CellStyle is the subset of a cell's style that the exporter writes.
type CellStyle struct {
	FontFamily      string  // e.g. "Calibri"
	FontSizePt      float64 // original size in points
	FontColor       string  // "RRGGBB"
	Bold            bool
	Italic          bool
	BackgroundColor string // "RRGGBB"
	Bordered        bool   // every side has a line
	BorderColor     string // left border color as representative
	HorizontalAlign string // left|center|right|justify
	VerticalAlign   string // top|middle|bottom
	WrapText        bool
	NumberFormat    string
}

func (s CellStyle) String() string {
	return fmt.Sprintf("FontFamily: %s, FontSizePt: %g, FontColor: %s, Bold: %t, Italic: %t, BackgroundColor: %s, Bordered: %t, BorderColor: %s, HorizontalAlign: %s, VerticalAlign: %s, WrapText: %t, NumberFormat: %q",
		s.FontFamily, s.FontSizePt, s.FontColor, s.Bold, s.Italic, s.BackgroundColor, s.Bordered, s.BorderColor, s.HorizontalAlign, s.VerticalAlign, s.WrapText, s.NumberFormat)
}

// RenderCell is a single cell, or the origin of a merged region.
type RenderCell struct {
	Ref     string // e.g. "A1"
	Row     int    // 0-based
	Column  int    // 0-based
	Value   string // formatted value
	Text    string // raw value
	Number  float64
	Numeric bool
	ColSpan int // 1 if not merged
	RowSpan int // 1 if not merged
	Style   CellStyle
}

func (c RenderCell) String() string {
	return fmt.Sprintf("Ref: %s, Value: %s, Numeric: %t, ColSpan: %d, RowSpan: %d, Style: %s", c.Ref, c.Value, c.Numeric, c.ColSpan, c.RowSpan, c.Style)
}

// RenderRow is one row of a sheet.
type RenderRow struct {
	HeightPx float64
	Hidden   bool
	Cells    []*RenderCell // one per sheet column; nil for blank or covered cells
}

func (r RenderRow) String() string {
	return fmt.Sprintf("HeightPx: %g, Hidden: %t, Cells: %d", r.HeightPx, r.Hidden, len(r.Cells))
}

// RenderSheet is one worksheet.
type RenderSheet struct {
	Name      string
	ColWidths []float64 // characters; 0 means the default width
	ColHidden []bool
	Merges    []string // "A1:B2"
	Rows      []RenderRow
}

func (s RenderSheet) String() string {
	return fmt.Sprintf("Name: %s, ColWidths: %v, Merges: %v, Rows: %d", s.Name, s.ColWidths, s.Merges, len(s.Rows))
}

// Cell returns the cell at a 0-based row and column, or nil.
func (s RenderSheet) Cell(row, col int) *RenderCell {
	if row < 0 || row >= len(s.Rows) || col < 0 || col >= len(s.Rows[row].Cells) {
		return nil
	}
	return s.Rows[row].Cells[col]
}

// WorkbookModel holds every sheet of a workbook in order.
type WorkbookModel struct {
	Sheets []RenderSheet
}

// Sheet returns the sheet called name.
func (m WorkbookModel) Sheet(name string) (RenderSheet, bool) {
	for _, s := range m.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return RenderSheet{}, false
}
