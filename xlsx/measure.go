package xlsx

import (
	"strings"
	"sync"
	"unicode/utf8"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/width"
)

// Column widths are measured in characters: the advance of the digit zero.

type measurer struct {
	mu    sync.Mutex
	font  *sfnt.Font
	buf   sfnt.Buffer
	ppem  fixed.Int26_6
	zero  fixed.Int26_6
	cache map[rune]float64
}

var defaultMeasurer = sync.OnceValue(func() *measurer {
	f, err := sfnt.Parse(goregular.TTF)
	if err != nil {
		return &measurer{}
	}
	m := &measurer{
		font:  f,
		ppem:  fixed.Int26_6(f.UnitsPerEm() << 6),
		cache: make(map[rune]float64),
	}
	m.zero = m.advance('0')
	return m
})

func (m *measurer) advance(r rune) fixed.Int26_6 {
	idx, err := m.font.GlyphIndex(&m.buf, r)
	if err != nil || idx == 0 {
		return 0
	}
	adv, err := m.font.GlyphAdvance(&m.buf, idx, m.ppem, xfont.HintingNone)
	if err != nil {
		return 0
	}
	return adv
}

// runeWidth returns the width of r in characters. East Asian wide and
// fullwidth runes are two characters regardless of the font.
func (m *measurer) runeWidth(r rune) float64 {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	if m.font == nil || m.zero == 0 {
		return 1
	}
	if w, ok := m.cache[r]; ok {
		return w
	}
	adv := m.advance(r)
	w := 1.0
	if adv > 0 {
		w = float64(adv) / float64(m.zero)
	}
	m.cache[r] = w
	return w
}

// TextWidth returns the display width of s in characters. For multi-line text
// the widest line counts.
func TextWidth(s string) float64 {
	if s == "" {
		return 0
	}
	m := defaultMeasurer()
	m.mu.Lock()
	defer m.mu.Unlock()

	widest := 0.0
	for _, line := range strings.Split(s, "\n") {
		w := 0.0
		for len(line) > 0 {
			r, size := utf8.DecodeRuneInString(line)
			line = line[size:]
			w += m.runeWidth(r)
		}
		if w > widest {
			widest = w
		}
	}
	return widest
}
