// Package style resolves declared style policies into physical cell styles
// and interns them into a read-only table keyed by field path and location.
package style

import (
	"fmt"
	"strings"
)

// Border is the line style drawn around a cell.
type Border int

const (
	BorderNone Border = iota
	BorderThin
	BorderMedium
)

// Horizontal and vertical alignments understood by the engines.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
	AlignTop    = "top"
	AlignMiddle = "middle"
	AlignBottom = "bottom"
)

// Spec is the physical description of a cell style. It is comparable so that
// identical specs can share one engine style.
type Spec struct {
	FillColor       string // "RRGGBB"
	FontColor       string // "RRGGBB"
	FontFamily      string
	FontSizePt      float64
	Bold            bool
	Italic          bool
	Border          Border
	HorizontalAlign string
	VerticalAlign   string
	WrapText        bool
	// Format is the number format code, e.g. "#,##0.00".
	Format string
}

func (s Spec) String() string {
	return fmt.Sprintf("FillColor: %s, FontColor: %s, FontFamily: %s, FontSizePt: %g, Bold: %t, Italic: %t, Border: %d, HorizontalAlign: %s, VerticalAlign: %s, WrapText: %t, Format: %q",
		s.FillColor, s.FontColor, s.FontFamily, s.FontSizePt, s.Bold, s.Italic, s.Border, s.HorizontalAlign, s.VerticalAlign, s.WrapText, s.Format)
}

// Style modifies a Spec. The number format is chosen separately and a Style
// should leave it alone.
type Style interface {
	Apply(s *Spec)
}

// Func adapts a function to the Style interface.
type Func func(s *Spec)

func (f Func) Apply(s *Spec) { f(s) }

// Configurer builds a Style from fill, font, border and alignment settings.
type Configurer struct {
	spec Spec
}

// Configure starts a new Configurer.
func Configure() *Configurer {
	return &Configurer{}
}

// Fill sets a solid background colour.
func (c *Configurer) Fill(r, g, b uint8) *Configurer {
	c.spec.FillColor = fmt.Sprintf("%02X%02X%02X", r, g, b)
	return c
}

// Font sets the font colour ("RRGGBB") and weight.
func (c *Configurer) Font(color string, bold bool) *Configurer {
	c.spec.FontColor = strings.ToUpper(strings.TrimPrefix(color, "#"))
	c.spec.Bold = bold
	return c
}

// Borders sets the same border on all four sides.
func (c *Configurer) Borders(b Border) *Configurer {
	c.spec.Border = b
	return c
}

// Align sets horizontal and vertical alignment.
func (c *Configurer) Align(horizontal, vertical string) *Configurer {
	c.spec.HorizontalAlign = horizontal
	c.spec.VerticalAlign = vertical
	return c
}

// Wrap enables text wrapping.
func (c *Configurer) Wrap() *Configurer {
	c.spec.WrapText = true
	return c
}

// Build returns the configured Style.
func (c *Configurer) Build() Style {
	tmpl := c.spec
	return Func(func(s *Spec) {
		format := s.Format
		*s = tmpl
		s.Format = format
	})
}

var (
	greyHeader = Configure().Fill(217, 217, 217).Borders(BorderThin).Align(AlignCenter, AlignMiddle).Build()
	blueHeader = Configure().Fill(223, 235, 246).Borders(BorderThin).Align(AlignCenter, AlignMiddle).Build()
	body       = Configure().Fill(255, 255, 255).Borders(BorderThin).Align(AlignRight, AlignMiddle).Build()

	solidBlueHeader  = Configure().Fill(79, 129, 189).Font("FFFFFF", true).Borders(BorderThin).Align(AlignCenter, AlignMiddle).Build()
	solidBlackHeader = Configure().Fill(0, 0, 0).Font("FFFFFF", true).Borders(BorderThin).Align(AlignCenter, AlignMiddle).Build()
)
