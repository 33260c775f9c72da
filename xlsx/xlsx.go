// Package xlsx implements the spreadsheet engine on top of unioffice and reads
// finished workbooks back into a model that can be inspected or previewed.
package xlsx

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/unidoc/unioffice/color"
	"github.com/unidoc/unioffice/schema/soo/sml"
	"github.com/unidoc/unioffice/spreadsheet"

	"github.com/aerissecure/export/render"
	"github.com/aerissecure/export/style"
)

var ErrDuplicateSheet = errors.New("xlsx: duplicate sheet name")

// Workbook is a unioffice workbook that the renderer can write into.
type Workbook struct {
	wb       *spreadsheet.Workbook
	styles   []spreadsheet.CellStyle
	specs    []style.Spec
	interned map[style.Spec]style.Handle
	outlines map[style.Handle]style.Handle
	sheets   []*Sheet
	names    map[string]bool
}

var _ render.Workbook = (*Workbook)(nil)

// New returns an empty workbook.
func New() *Workbook {
	return &Workbook{
		wb:       spreadsheet.New(),
		interned: make(map[style.Spec]style.Handle),
		outlines: make(map[style.Handle]style.Handle),
		names:    make(map[string]bool),
	}
}

// X returns the underlying unioffice workbook.
func (w *Workbook) X() *spreadsheet.Workbook { return w.wb }

// NewStyle creates a cell style for s. Equal specs share one style.
func (w *Workbook) NewStyle(s style.Spec) (style.Handle, error) {
	if h, ok := w.interned[s]; ok {
		return h, nil
	}

	cs := w.wb.StyleSheet.AddCellStyle()
	if s.Format != "" && s.Format != style.FormatGeneral {
		cs.SetNumberFormat(s.Format)
	}

	if s.FontColor != "" || s.FontFamily != "" || s.FontSizePt > 0 || s.Bold || s.Italic {
		font := w.wb.StyleSheet.AddFont()
		if s.FontFamily != "" {
			font.SetName(s.FontFamily)
		}
		if s.FontSizePt > 0 {
			font.SetSize(s.FontSizePt)
		}
		if s.FontColor != "" {
			c, err := parseColor(s.FontColor)
			if err != nil {
				return 0, fmt.Errorf("font color: %w", err)
			}
			font.SetColor(c)
		}
		font.SetBold(s.Bold)
		font.SetItalic(s.Italic)
		cs.SetFont(font)
	}

	if s.FillColor != "" {
		c, err := parseColor(s.FillColor)
		if err != nil {
			return 0, fmt.Errorf("fill color: %w", err)
		}
		fill := w.wb.StyleSheet.Fills().AddFill()
		pf := fill.SetPatternFill()
		pf.SetPattern(sml.ST_PatternTypeSolid)
		pf.SetFgColor(c)
		cs.SetFill(fill)
	}

	if s.Border != style.BorderNone {
		bs := sml.ST_BorderStyleThin
		if s.Border == style.BorderMedium {
			bs = sml.ST_BorderStyleMedium
		}
		black := color.RGB(0, 0, 0)
		b := w.wb.StyleSheet.AddBorder()
		b.SetLeft(bs, black)
		b.SetRight(bs, black)
		b.SetTop(bs, black)
		b.SetBottom(bs, black)
		cs.SetBorder(b)
	}

	switch s.HorizontalAlign {
	case style.AlignLeft:
		cs.SetHorizontalAlignment(sml.ST_HorizontalAlignmentLeft)
	case style.AlignCenter:
		cs.SetHorizontalAlignment(sml.ST_HorizontalAlignmentCenter)
	case style.AlignRight:
		cs.SetHorizontalAlignment(sml.ST_HorizontalAlignmentRight)
	}
	switch s.VerticalAlign {
	case style.AlignTop:
		cs.SetVerticalAlignment(sml.ST_VerticalAlignmentTop)
	case style.AlignMiddle:
		cs.SetVerticalAlignment(sml.ST_VerticalAlignmentCenter)
	case style.AlignBottom:
		cs.SetVerticalAlignment(sml.ST_VerticalAlignmentBottom)
	}
	if s.WrapText {
		cs.SetWrapped(true)
	}

	h := style.Handle(len(w.styles))
	w.styles = append(w.styles, cs)
	w.specs = append(w.specs, s)
	w.interned[s] = h
	return h, nil
}

// Outline returns h with a thin border on every side. Styles that already
// have a border are returned unchanged.
func (w *Workbook) Outline(h style.Handle) (style.Handle, error) {
	if o, ok := w.outlines[h]; ok {
		return o, nil
	}
	spec, err := w.Spec(h)
	if err != nil {
		return 0, err
	}
	if spec.Border == style.BorderNone {
		spec.Border = style.BorderThin
	}
	o, err := w.NewStyle(spec)
	if err != nil {
		return 0, err
	}
	w.outlines[h] = o
	return o, nil
}

// Spec returns the spec h was created from.
func (w *Workbook) Spec(h style.Handle) (style.Spec, error) {
	if h < 0 || int(h) >= len(w.specs) {
		return style.Spec{}, fmt.Errorf("xlsx: unknown style handle %d", h)
	}
	return w.specs[h], nil
}

// AddSheet appends a worksheet named name.
func (w *Workbook) AddSheet(name string) (render.Sheet, error) {
	key := strings.ToLower(name)
	if w.names[key] {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateSheet, name)
	}
	sheet := w.wb.AddSheet()
	sheet.SetName(name)
	s := newSheet(w, sheet, name)
	w.sheets = append(w.sheets, s)
	w.names[key] = true
	return s, nil
}

// Sheets returns the sheets added so far.
func (w *Workbook) Sheets() []*Sheet {
	out := make([]*Sheet, len(w.sheets))
	copy(out, w.sheets)
	return out
}

// Save writes the workbook to out.
func (w *Workbook) Save(out io.Writer) error {
	if err := w.wb.Save(out); err != nil {
		return fmt.Errorf("xlsx: save: %w", err)
	}
	return nil
}

// SaveToFile writes the workbook to path.
func (w *Workbook) SaveToFile(path string) error {
	if err := w.wb.SaveToFile(path); err != nil {
		return fmt.Errorf("xlsx: save %s: %w", path, err)
	}
	return nil
}

func (w *Workbook) cellStyle(h style.Handle) (spreadsheet.CellStyle, bool) {
	if h < 0 || int(h) >= len(w.styles) {
		return spreadsheet.CellStyle{}, false
	}
	return w.styles[h], true
}

// parseColor parses "RRGGBB" or "#RRGGBB".
func parseColor(hex string) (color.Color, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return color.Color{}, fmt.Errorf("xlsx: bad color %q", hex)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.Color{}, fmt.Errorf("xlsx: bad color %q: %w", hex, err)
	}
	return color.RGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}
