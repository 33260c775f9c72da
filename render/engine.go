package render

import (
	"time"

	"github.com/aerissecure/export/layout"
	"github.com/aerissecure/export/style"
)

// Workbook is the spreadsheet engine the renderer writes into.
type Workbook interface {
	style.Factory
	// Outline returns a style equal to h with thin borders on all sides.
	// Repeated calls with the same handle return the same style.
	Outline(h style.Handle) (style.Handle, error)
	AddSheet(name string) (Sheet, error)
}

// Sheet is one worksheet of a Workbook. Rows and columns are 0-based.
type Sheet interface {
	Name() string
	SetString(row, col int, v string, h style.Handle)
	SetNumber(row, col int, v float64, h style.Handle)
	SetTime(row, col int, v time.Time, h style.Handle)
	SetStyle(row, col int, h style.Handle)
	Merge(r layout.Cell) error
	// AutoSize fits the column to its widest cell plus padding characters.
	AutoSize(col int, padding float64)
}
