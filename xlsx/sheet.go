package xlsx

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/unidoc/unioffice/spreadsheet"
	"github.com/unidoc/unioffice/spreadsheet/reference"

	"github.com/aerissecure/export/layout"
	"github.com/aerissecure/export/render"
	"github.com/aerissecure/export/style"
)

// Sheet is one worksheet of a Workbook. It remembers the widest content of
// every column so that AutoSize does not have to rescan the sheet.
type Sheet struct {
	wb     *Workbook
	sheet  spreadsheet.Sheet
	name   string
	rows   map[int]spreadsheet.Row
	maxRow int
	widths map[int]float64
	// wide holds the origins of merged cells spanning several columns. Their
	// text does not count towards a single column's width.
	wide map[[2]int]bool
}

var _ render.Sheet = (*Sheet)(nil)

func newSheet(wb *Workbook, sheet spreadsheet.Sheet, name string) *Sheet {
	return &Sheet{
		wb:     wb,
		sheet:  sheet,
		name:   name,
		rows:   make(map[int]spreadsheet.Row),
		maxRow: -1,
		widths: make(map[int]float64),
		wide:   make(map[[2]int]bool),
	}
}

func (s *Sheet) Name() string { return s.name }

// X returns the underlying unioffice sheet.
func (s *Sheet) X() spreadsheet.Sheet { return s.sheet }

func (s *Sheet) SetString(row, col int, v string, h style.Handle) {
	c := s.cell(row, col, h)
	c.SetString(v)
	s.measure(row, col, TextWidth(v))
}

func (s *Sheet) SetNumber(row, col int, v float64, h style.Handle) {
	c := s.cell(row, col, h)
	c.SetNumber(v)
	spec, _ := s.wb.Spec(h)
	s.measure(row, col, TextWidth(numberText(v, spec.Format)))
}

// SetTime writes v as a date. The zero time is written as an empty string and
// times before the workbook epoch, which have no serial date, as text.
func (s *Sheet) SetTime(row, col int, v time.Time, h style.Handle) {
	c := s.cell(row, col, h)
	if v.IsZero() {
		c.SetString("")
		return
	}
	text := v.Format(timeLayout)
	if v.Before(s.wb.wb.Epoch()) {
		c.SetString(text)
	} else {
		c.SetTime(v)
	}
	s.measure(row, col, TextWidth(text))
}

func (s *Sheet) SetStyle(row, col int, h style.Handle) {
	s.cell(row, col, h)
}

// Merge merges the cells covered by r.
func (s *Sheet) Merge(r layout.Cell) error {
	if r.FirstRow < 0 || r.FirstColumn < 0 || r.LastRow < r.FirstRow || r.LastColumn < r.FirstColumn {
		return fmt.Errorf("xlsx: bad merge range %s", r)
	}
	s.sheet.AddMergedCells(Ref(r.FirstRow, r.FirstColumn), Ref(r.LastRow, r.LastColumn))
	if r.ColSpan() > 1 {
		s.wide[[2]int{r.FirstRow, r.FirstColumn}] = true
	}
	return nil
}

// AutoSize sets the width of col to its widest content plus padding.
// Columns without content keep the default width.
func (s *Sheet) AutoSize(col int, padding float64) {
	w, ok := s.widths[col]
	if !ok {
		return
	}
	w = math.Min(w+padding, render.MaxColumnWidth)
	c := s.sheet.Column(uint32(col + 1)).X()
	c.WidthAttr = &w
	custom := true
	c.CustomWidthAttr = &custom
}

// ContentWidth returns the widest measured content of col, in characters.
func (s *Sheet) ContentWidth(col int) float64 { return s.widths[col] }

func (s *Sheet) measure(row, col int, w float64) {
	if s.wide[[2]int{row, col}] {
		return
	}
	if cur, ok := s.widths[col]; !ok || w > cur {
		s.widths[col] = w
	}
}

func (s *Sheet) cell(row, col int, h style.Handle) spreadsheet.Cell {
	c := s.row(row).Cell(reference.IndexToColumn(uint32(col)))
	if cs, ok := s.wb.cellStyle(h); ok {
		c.SetStyle(cs)
	}
	return c
}

// row returns the row at index r. Rows past the last one are appended
// directly, which keeps sequential writes from rescanning the sheet.
func (s *Sheet) row(r int) spreadsheet.Row {
	if row, ok := s.rows[r]; ok {
		return row
	}
	var row spreadsheet.Row
	if r > s.maxRow {
		row = s.sheet.AddNumberedRow(uint32(r + 1))
		s.maxRow = r
	} else {
		row = s.sheet.Row(uint32(r + 1))
	}
	s.rows[r] = row
	return row
}

const timeLayout = "2006-01-02 15:04:05"

// Ref returns the A1 reference of a 0-based row and column.
func Ref(row, col int) string {
	return reference.IndexToColumn(uint32(col)) + strconv.Itoa(row+1)
}

// numberText approximates how v is displayed under format: the number of
// decimals and thousands separators follow the format's pattern.
func numberText(v float64, format string) string {
	decimals := -1
	if format != "" && format != style.FormatGeneral {
		decimals = 0
		if i := strings.IndexByte(format, '.'); i >= 0 {
			for _, r := range format[i+1:] {
				if r != '0' && r != '#' {
					break
				}
				decimals++
			}
		}
	}
	text := strconv.FormatFloat(v, 'f', decimals, 64)
	if !strings.Contains(format, ",") {
		return text
	}

	neg := strings.HasPrefix(text, "-")
	text = strings.TrimPrefix(text, "-")
	intPart, frac, hasFrac := strings.Cut(text, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if hasFrac {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
