// Package layout compiles resolved fields into a grid of header cells.
//
// Internal nodes occupy one row and span the columns of their leaf
// descendants. Leaves span from their own row down to the last header row.
// Coordinates are relative to (0, 0) and are translated once, when a header is
// written into a sheet.
package layout

import (
	"fmt"

	"github.com/aerissecure/export/schema"
)

// Cell is one rectangular header region. Rows and columns are 0-based and
// inclusive.
type Cell struct {
	Header      string
	FirstRow    int
	LastRow     int
	FirstColumn int
	LastColumn  int
}

// RowSpan returns the number of rows the cell covers.
func (c Cell) RowSpan() int { return c.LastRow - c.FirstRow + 1 }

// ColSpan returns the number of columns the cell covers.
func (c Cell) ColSpan() int { return c.LastColumn - c.FirstColumn + 1 }

// Merged reports whether the cell spans more than one physical cell.
func (c Cell) Merged() bool {
	return c.LastRow > c.FirstRow || c.LastColumn > c.FirstColumn
}

// Translate returns a copy of c shifted by the given origin.
func (c Cell) Translate(row, col int) Cell {
	c.FirstRow += row
	c.LastRow += row
	c.FirstColumn += col
	c.LastColumn += col
	return c
}

func (c Cell) String() string {
	return fmt.Sprintf("%q[r%d-%d c%d-%d]", c.Header, c.FirstRow, c.LastRow, c.FirstColumn, c.LastColumn)
}

// Layout is a compiled header grid. It is never modified after Compile.
type Layout struct {
	height int
	width  int
	order  []schema.Path
	cells  map[schema.Path]Cell
}

// Compile places every descriptor on the header grid. descs must be in the
// breadth-first order produced by schema.Resolve.
func Compile(descs []schema.Descriptor) (*Layout, error) {
	if len(descs) == 0 {
		return nil, fmt.Errorf("%w: no fields to lay out", schema.ErrSchema)
	}

	height := schema.Depth(descs)
	l := &Layout{
		height: height,
		order:  make([]schema.Path, 0, len(descs)),
		cells:  make(map[schema.Path]Cell, len(descs)),
	}

	// next holds the next free column inside each placed node's range. The
	// root's range starts at column 0.
	next := map[schema.Path]int{"": 0}
	depth := 0
	for _, d := range descs {
		if d.Depth < depth {
			return nil, fmt.Errorf("layout: field %s at depth %d follows depth %d", d.Path, d.Depth, depth)
		}
		depth = d.Depth

		col, ok := next[d.Parent]
		if !ok {
			return nil, fmt.Errorf("layout: field %s placed before its parent %s", d.Path, d.Parent)
		}

		rowSpan, colSpan := 1, d.Leaves
		if d.Leaf() {
			rowSpan, colSpan = height-d.Depth+1, 1
		}
		row := d.Depth - 1

		l.cells[d.Path] = Cell{
			Header:      d.Header,
			FirstRow:    row,
			LastRow:     row + rowSpan - 1,
			FirstColumn: col,
			LastColumn:  col + colSpan - 1,
		}
		l.order = append(l.order, d.Path)

		next[d.Parent] = col + colSpan
		if !d.Leaf() {
			next[d.Path] = col
		} else {
			l.width++
		}
	}
	return l, nil
}

// Height returns the number of header rows.
func (l *Layout) Height() int { return l.height }

// Width returns the number of data columns.
func (l *Layout) Width() int { return l.width }

// Cell returns the header cell of path.
func (l *Layout) Cell(path schema.Path) (Cell, bool) {
	c, ok := l.cells[path]
	return c, ok
}

// Paths returns the laid out paths in placement order.
func (l *Layout) Paths() []schema.Path {
	out := make([]schema.Path, len(l.order))
	copy(out, l.order)
	return out
}

// Cells returns every header cell in placement order.
func (l *Layout) Cells() []Cell {
	out := make([]Cell, len(l.order))
	for i, p := range l.order {
		out[i] = l.cells[p]
	}
	return out
}
