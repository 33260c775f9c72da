package xlsx

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/unidoc/unioffice/schema/soo/dml"
	"github.com/unidoc/unioffice/schema/soo/sml"
	"github.com/unidoc/unioffice/spreadsheet"
	"github.com/unidoc/unioffice/spreadsheet/reference"
)

// ReadFile reads the workbook at path into a WorkbookModel.
func ReadFile(path string) (WorkbookModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return WorkbookModel{}, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return WorkbookModel{}, err
	}
	return ReadWorkbookModel(f, info.Size())
}

// ReadWorkbookModel reads an xlsx file from r into a WorkbookModel.
func ReadWorkbookModel(r io.ReaderAt, size int64) (WorkbookModel, error) {
	wb, err := spreadsheet.Read(r, size)
	if err != nil {
		return WorkbookModel{}, fmt.Errorf("xlsx: read: %w", err)
	}

	var model WorkbookModel
	for _, sheet := range wb.Sheets() {
		model.Sheets = append(model.Sheets, readSheet(wb, sheet))
	}
	return model, nil
}

type span struct{ rows, cols int }

func readSheet(wb *spreadsheet.Workbook, sheet spreadsheet.Sheet) RenderSheet {
	cols := 0
	for _, row := range sheet.Rows() {
		for _, cell := range row.Cells() {
			name, err := cell.Column()
			if err != nil {
				continue
			}
			if idx := int(reference.ColumnToIndex(name)) + 1; idx > cols {
				cols = idx
			}
		}
	}

	rs := RenderSheet{
		Name:      sheet.Name(),
		ColWidths: make([]float64, cols),
		ColHidden: make([]bool, cols),
	}
	for c := 0; c < cols; c++ {
		x := sheet.Column(uint32(c + 1)).X()
		if x.CustomWidthAttr != nil && *x.CustomWidthAttr && x.WidthAttr != nil {
			rs.ColWidths[c] = *x.WidthAttr
		}
		if x.HiddenAttr != nil {
			rs.ColHidden[c] = *x.HiddenAttr
		}
	}

	origins := make(map[[2]int]span)
	covered := make(map[[2]int]bool)
	if sheet.X().MergeCells != nil {
		for _, mc := range sheet.X().MergeCells.MergeCell {
			from, to, err := reference.ParseRangeReference(mc.RefAttr)
			if err != nil {
				continue
			}
			rs.Merges = append(rs.Merges, mc.RefAttr)
			r0, c0 := int(from.RowIdx-1), int(from.ColumnIdx)
			r1, c1 := int(to.RowIdx-1), int(to.ColumnIdx)
			origins[[2]int{r0, c0}] = span{rows: r1 - r0 + 1, cols: c1 - c0 + 1}
			for r := r0; r <= r1; r++ {
				for c := c0; c <= c1; c++ {
					if r != r0 || c != c0 {
						covered[[2]int{r, c}] = true
					}
				}
			}
		}
	}

	for _, row := range sheet.Rows() {
		rowIdx := int(row.RowNumber()) - 1
		if rowIdx >= len(rs.Rows) {
			rs.Rows = append(rs.Rows, make([]RenderRow, rowIdx-len(rs.Rows)+1)...)
		}
		rr := &rs.Rows[rowIdx]
		rr.Cells = make([]*RenderCell, cols)
		rr.Hidden = row.IsHidden()
		rr.HeightPx = 15.0 * 1.333
		if row.X().CustomHeightAttr != nil && *row.X().CustomHeightAttr && row.X().HtAttr != nil {
			rr.HeightPx = *row.X().HtAttr * 1.333
		}

		for _, cell := range row.Cells() {
			name, err := cell.Column()
			if err != nil {
				continue
			}
			colIdx := int(reference.ColumnToIndex(name))
			if covered[[2]int{rowIdx, colIdx}] {
				continue
			}

			rc := &RenderCell{
				Ref:     fmt.Sprintf("%s%d", name, rowIdx+1),
				Row:     rowIdx,
				Column:  colIdx,
				Value:   cell.GetFormattedValue(),
				Text:    cell.GetString(),
				ColSpan: 1,
				RowSpan: 1,
			}
			if t := cell.X().TAttr; (t == sml.ST_CellTypeN || t == sml.ST_CellTypeUnset) && cell.X().V != nil {
				if n, err := cell.GetValueAsNumber(); err == nil {
					rc.Number, rc.Numeric = n, true
				}
			}
			if cell.X().SAttr != nil {
				rc.Style = readStyle(wb, *cell.X().SAttr)
			}
			if sp, ok := origins[[2]int{rowIdx, colIdx}]; ok {
				rc.RowSpan, rc.ColSpan = sp.rows, sp.cols
			}
			rr.Cells[colIdx] = rc
		}
	}
	return rs
}

func readStyle(wb *spreadsheet.Workbook, styleID uint32) CellStyle {
	var st CellStyle
	ss := wb.StyleSheet
	xf := xfOf(ss, styleID)
	if xf == nil {
		return st
	}

	if font := fontOf(ss, xf); font != nil {
		if len(font.Name) > 0 {
			st.FontFamily = font.Name[0].ValAttr
		}
		if len(font.Sz) > 0 {
			st.FontSizePt = font.Sz[0].ValAttr
		}
		if len(font.Color) > 0 && font.Color[0].RgbAttr != nil {
			st.FontColor = normalizeColor(*font.Color[0].RgbAttr)
		}
		st.Bold = boolProp(font.B)
		st.Italic = boolProp(font.I)
	}

	if fill := fillOf(ss, xf); fill != nil && fill.PatternFill != nil && fill.PatternFill.FgColor != nil {
		fg := fill.PatternFill.FgColor
		if fg.RgbAttr != nil {
			st.BackgroundColor = normalizeColor(*fg.RgbAttr)
		} else if fg.ThemeAttr != nil {
			if hex, ok := themeColor(wb, int(*fg.ThemeAttr)); ok {
				st.BackgroundColor = hex
			}
		}
	}

	if border := borderOf(ss, xf); border != nil {
		st.Bordered = hasLine(border.Left) && hasLine(border.Right) && hasLine(border.Top) && hasLine(border.Bottom)
		if border.Left != nil && border.Left.Color != nil && border.Left.Color.RgbAttr != nil {
			st.BorderColor = normalizeColor(*border.Left.Color.RgbAttr)
		}
	}

	if xf.Alignment != nil {
		if xf.Alignment.HorizontalAttr != sml.ST_HorizontalAlignmentUnset {
			st.HorizontalAlign = xf.Alignment.HorizontalAttr.String()
		}
		switch xf.Alignment.VerticalAttr {
		case sml.ST_VerticalAlignmentTop:
			st.VerticalAlign = "top"
		case sml.ST_VerticalAlignmentCenter:
			st.VerticalAlign = "middle"
		case sml.ST_VerticalAlignmentBottom:
			st.VerticalAlign = "bottom"
		}
		if xf.Alignment.WrapTextAttr != nil {
			st.WrapText = *xf.Alignment.WrapTextAttr
		}
	}

	st.NumberFormat = numberFormatOf(ss, xf)
	return st
}

func xfOf(ss spreadsheet.StyleSheet, styleID uint32) *sml.CT_Xf {
	if ss.X().CellXfs == nil || int(styleID) >= len(ss.X().CellXfs.Xf) {
		return nil
	}
	return ss.X().CellXfs.Xf[styleID]
}

func fontOf(ss spreadsheet.StyleSheet, xf *sml.CT_Xf) *sml.CT_Font {
	if xf.FontIdAttr == nil || ss.X().Fonts == nil {
		return nil
	}
	idx := int(*xf.FontIdAttr)
	if idx >= len(ss.X().Fonts.Font) {
		return nil
	}
	return ss.X().Fonts.Font[idx]
}

func fillOf(ss spreadsheet.StyleSheet, xf *sml.CT_Xf) *sml.CT_Fill {
	if xf.FillIdAttr == nil || ss.X().Fills == nil {
		return nil
	}
	idx := int(*xf.FillIdAttr)
	if idx >= len(ss.X().Fills.Fill) {
		return nil
	}
	return ss.X().Fills.Fill[idx]
}

func borderOf(ss spreadsheet.StyleSheet, xf *sml.CT_Xf) *sml.CT_Border {
	if xf.BorderIdAttr == nil || ss.X().Borders == nil {
		return nil
	}
	idx := int(*xf.BorderIdAttr)
	if idx >= len(ss.X().Borders.Border) {
		return nil
	}
	return ss.X().Borders.Border[idx]
}

// Built-in number formats the exporter may produce without a custom entry.
var builtinFormats = map[uint32]string{
	0:  "General",
	3:  "#,##0",
	4:  "#,##0.00",
	49: "@",
}

func numberFormatOf(ss spreadsheet.StyleSheet, xf *sml.CT_Xf) string {
	if xf.NumFmtIdAttr == nil {
		return ""
	}
	id := *xf.NumFmtIdAttr
	if ss.X().NumFmts != nil {
		for _, nf := range ss.X().NumFmts.NumFmt {
			if nf.NumFmtIdAttr == id {
				return nf.FormatCodeAttr
			}
		}
	}
	return builtinFormats[id]
}

func hasLine(pr *sml.CT_BorderPr) bool {
	return pr != nil && pr.StyleAttr != sml.ST_BorderStyleUnset && pr.StyleAttr != sml.ST_BorderStyleNone
}

func boolProp(props []*sml.CT_BooleanProperty) bool {
	if len(props) == 0 {
		return false
	}
	return props[0].ValAttr == nil || *props[0].ValAttr
}

// themeColor resolves a theme colour index to "RRGGBB". Tint is ignored.
func themeColor(wb *spreadsheet.Workbook, idx int) (string, bool) {
	themes := wb.Themes()
	if len(themes) == 0 || themes[0] == nil || themes[0].ThemeElements == nil || themes[0].ThemeElements.ClrScheme == nil {
		return "", false
	}
	scheme := themes[0].ThemeElements.ClrScheme

	var clr *dml.CT_Color
	switch idx {
	case 0:
		clr = scheme.Dk1
	case 1:
		clr = scheme.Lt1
	case 2:
		clr = scheme.Dk2
	case 3:
		clr = scheme.Lt2
	case 4:
		clr = scheme.Accent1
	case 5:
		clr = scheme.Accent2
	case 6:
		clr = scheme.Accent3
	case 7:
		clr = scheme.Accent4
	case 8:
		clr = scheme.Accent5
	case 9:
		clr = scheme.Accent6
	case 10:
		clr = scheme.Hlink
	case 11:
		clr = scheme.FolHlink
	}
	if clr == nil {
		return "", false
	}
	if clr.SrgbClr != nil && clr.SrgbClr.ValAttr != "" {
		return clr.SrgbClr.ValAttr, true
	}
	if clr.SysClr != nil && clr.SysClr.LastClrAttr != nil {
		return *clr.SysClr.LastClrAttr, true
	}
	return "", false
}

// normalizeColor turns the ARGB hex used by xlsx into "RRGGBB".
func normalizeColor(hex string) string {
	hex = strings.ToUpper(strings.TrimPrefix(hex, "#"))
	if len(hex) == 8 {
		return hex[2:]
	}
	return hex
}
