package xlsx

import (
	"fmt"
	"html"
	"io"
	"strings"
)

// Approximate pixel size of one character of column width.
const pxPerChar = 7.0

// RenderHTML renders m as one HTML table per sheet. Each distinct cell style
// becomes a CSS class; merged regions become rowspan/colspan cells.
func RenderHTML(m WorkbookModel) string {
	var b strings.Builder
	// strings.Builder never fails a write.
	_ = WriteHTML(&b, m)
	return b.String()
}

// WriteHTML is RenderHTML writing to w.
func WriteHTML(w io.Writer, m WorkbookModel) error {
	classes := make(map[CellStyle]string)
	var order []CellStyle
	for _, sheet := range m.Sheets {
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				if cell == nil {
					continue
				}
				if _, ok := classes[cell.Style]; !ok {
					classes[cell.Style] = fmt.Sprintf("cellstyle%d", len(order)+1)
					order = append(order, cell.Style)
				}
			}
		}
	}

	var b strings.Builder
	b.WriteString("<style>\n")
	b.WriteString(".table { border-collapse: collapse; table-layout: fixed; margin-bottom: 2em; }\n")
	b.WriteString(".table td { padding: 4px 8px; border: 1px solid #ddd; white-space: nowrap; overflow: hidden; }\n")
	for _, st := range order {
		if css := styleToCSS(st); css != "" {
			fmt.Fprintf(&b, ".%s { %s }\n", classes[st], css)
		}
	}
	b.WriteString("</style>\n")

	for _, sheet := range m.Sheets {
		widths := make([]float64, len(sheet.ColWidths))
		total := 0.0
		for i, cw := range sheet.ColWidths {
			if cw == 0 {
				cw = 8.43
			}
			widths[i] = cw*pxPerChar + 5
			total += widths[i]
		}

		fmt.Fprintf(&b, "<div class=\"sheet\" data-name=\"%s\">\n", html.EscapeString(sheet.Name))
		fmt.Fprintf(&b, "<table class=\"table\" style=\"width:%.0fpx;\">\n", total)
		b.WriteString("  <colgroup>\n")
		for i, px := range widths {
			if i < len(sheet.ColHidden) && sheet.ColHidden[i] {
				b.WriteString("    <col style=\"display:none;\">\n")
				continue
			}
			fmt.Fprintf(&b, "    <col style=\"width:%.0fpx;\">\n", px)
		}
		b.WriteString("  </colgroup>\n")

		covered := make(map[[2]int]bool)
		for r, row := range sheet.Rows {
			rowStyle := fmt.Sprintf("height:%.0fpx;", row.HeightPx)
			if row.Hidden {
				rowStyle += "display:none;"
			}
			fmt.Fprintf(&b, "  <tr style=\"%s\">\n", rowStyle)
			for c, cell := range row.Cells {
				if covered[[2]int{r, c}] {
					continue
				}
				if cell == nil {
					b.WriteString("    <td></td>\n")
					continue
				}
				attrs := fmt.Sprintf(" data-cell=\"%s\" class=\"%s\"", cell.Ref, classes[cell.Style])
				if cell.ColSpan > 1 {
					attrs += fmt.Sprintf(" colspan=\"%d\"", cell.ColSpan)
				}
				if cell.RowSpan > 1 {
					attrs += fmt.Sprintf(" rowspan=\"%d\"", cell.RowSpan)
				}
				for dr := 0; dr < cell.RowSpan; dr++ {
					for dc := 0; dc < cell.ColSpan; dc++ {
						if dr != 0 || dc != 0 {
							covered[[2]int{r + dr, c + dc}] = true
						}
					}
				}
				text := strings.ReplaceAll(html.EscapeString(cell.Value), "\n", "<br>")
				fmt.Fprintf(&b, "    <td%s>%s</td>\n", attrs, text)
			}
			b.WriteString("  </tr>\n")
		}
		b.WriteString("</table>\n</div>\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// styleToCSS converts a CellStyle to CSS declarations.
func styleToCSS(s CellStyle) string {
	var b strings.Builder
	if s.FontFamily != "" {
		fmt.Fprintf(&b, "font-family:'%s';", s.FontFamily)
	}
	if s.FontSizePt > 0 {
		fmt.Fprintf(&b, "font-size:%.1fpt;", s.FontSizePt)
	}
	if s.FontColor != "" {
		fmt.Fprintf(&b, "color:#%s;", s.FontColor)
	}
	if s.Bold {
		b.WriteString("font-weight:bold;")
	}
	if s.Italic {
		b.WriteString("font-style:italic;")
	}
	if s.BackgroundColor != "" {
		fmt.Fprintf(&b, "background-color:#%s;", s.BackgroundColor)
	}
	if s.Bordered {
		border := s.BorderColor
		if border == "" {
			border = "000000"
		}
		fmt.Fprintf(&b, "border:1px solid #%s;", border)
	}
	switch s.HorizontalAlign {
	case "center", "centerContinuous", "distributed":
		b.WriteString("text-align:center;")
	case "right":
		b.WriteString("text-align:right;")
	case "justify":
		b.WriteString("text-align:justify;")
	case "left":
		b.WriteString("text-align:left;")
	}
	switch s.VerticalAlign {
	case "top", "middle", "bottom":
		fmt.Fprintf(&b, "vertical-align:%s;", s.VerticalAlign)
	}
	if s.WrapText {
		b.WriteString("white-space:normal;")
	}
	return b.String()
}
