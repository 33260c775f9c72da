package layout

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerissecure/export/schema"
)

func compile(t *testing.T, typ *schema.Type) *Layout {
	t.Helper()
	descs, err := schema.Resolve(typ)
	require.NoError(t, err)
	l, err := Compile(descs)
	require.NoError(t, err)
	return l
}

func cell(t *testing.T, l *Layout, path schema.Path) Cell {
	t.Helper()
	c, ok := l.Cell(path)
	require.True(t, ok, "no cell for %s in %s", path, spew.Sdump(l.Cells()))
	return c
}

func TestNestedThenLeaf(t *testing.T) {
	l := compile(t, &schema.Type{Fields: []schema.Field{
		{Name: "info", Header: "Info", Type: &schema.Type{Fields: []schema.Field{
			{Name: "name", Header: "Name"},
			{Name: "age", Header: "Age"},
		}}},
		{Name: "id", Header: "ID"},
	}})

	assert.Equal(t, 2, l.Height())
	assert.Equal(t, 3, l.Width())
	assert.Equal(t, Cell{Header: "Info", FirstRow: 0, LastRow: 0, FirstColumn: 0, LastColumn: 1}, cell(t, l, "info"))
	assert.Equal(t, Cell{Header: "ID", FirstRow: 0, LastRow: 1, FirstColumn: 2, LastColumn: 2}, cell(t, l, "id"))
	assert.Equal(t, Cell{Header: "Name", FirstRow: 1, LastRow: 1, FirstColumn: 0, LastColumn: 0}, cell(t, l, "info.name"))
	assert.Equal(t, Cell{Header: "Age", FirstRow: 1, LastRow: 1, FirstColumn: 1, LastColumn: 1}, cell(t, l, "info.age"))

	assert.True(t, cell(t, l, "info").Merged())
	assert.True(t, cell(t, l, "id").Merged())
	assert.False(t, cell(t, l, "info.name").Merged())
}

func TestLeafThenNestedKeepsChildrenUnderParent(t *testing.T) {
	l := compile(t, &schema.Type{Fields: []schema.Field{
		{Name: "id"},
		{Name: "info", Type: &schema.Type{Fields: []schema.Field{{Name: "x"}, {Name: "y"}}}},
	}})

	assert.Equal(t, 0, cell(t, l, "id").FirstColumn)
	assert.Equal(t, 1, cell(t, l, "info").FirstColumn)
	assert.Equal(t, 2, cell(t, l, "info").LastColumn)
	assert.Equal(t, 1, cell(t, l, "info.x").FirstColumn)
	assert.Equal(t, 2, cell(t, l, "info.y").FirstColumn)
}

func TestDeepTreeSpans(t *testing.T) {
	l := compile(t, &schema.Type{Fields: []schema.Field{
		{Name: "a"},
		{Name: "b", Type: &schema.Type{Fields: []schema.Field{
			{Name: "c", Type: &schema.Type{Fields: []schema.Field{{Name: "d"}, {Name: "e"}}}},
			{Name: "f"},
		}}},
		{Name: "g"},
	}})

	require.Equal(t, 3, l.Height())
	require.Equal(t, 5, l.Width())

	want := map[schema.Path]Cell{
		"a":     {Header: "a", FirstRow: 0, LastRow: 2, FirstColumn: 0, LastColumn: 0},
		"b":     {Header: "b", FirstRow: 0, LastRow: 0, FirstColumn: 1, LastColumn: 3},
		"g":     {Header: "g", FirstRow: 0, LastRow: 2, FirstColumn: 4, LastColumn: 4},
		"b.c":   {Header: "c", FirstRow: 1, LastRow: 1, FirstColumn: 1, LastColumn: 2},
		"b.f":   {Header: "f", FirstRow: 1, LastRow: 2, FirstColumn: 3, LastColumn: 3},
		"b.c.d": {Header: "d", FirstRow: 2, LastRow: 2, FirstColumn: 1, LastColumn: 1},
		"b.c.e": {Header: "e", FirstRow: 2, LastRow: 2, FirstColumn: 2, LastColumn: 2},
	}
	for path, c := range want {
		assert.Equal(t, c, cell(t, l, path), "cell %s", path)
	}
}

func TestLeafRowSpanMatchesDepth(t *testing.T) {
	typ := &schema.Type{Fields: []schema.Field{
		{Name: "a"},
		{Name: "b", Type: &schema.Type{Fields: []schema.Field{
			{Name: "c", Type: &schema.Type{Fields: []schema.Field{
				{Name: "d", Type: &schema.Type{Fields: []schema.Field{{Name: "e"}}}},
			}}},
			{Name: "f"},
		}}},
	}}
	descs, err := schema.Resolve(typ)
	require.NoError(t, err)
	l, err := Compile(descs)
	require.NoError(t, err)

	require.Equal(t, schema.Depth(descs), l.Height())
	for _, d := range descs {
		c := cell(t, l, d.Path)
		if d.Leaf() {
			assert.Equal(t, l.Height()-d.Depth+1, c.RowSpan(), "leaf %s", d.Path)
			assert.Equal(t, 1, c.ColSpan())
			assert.Equal(t, l.Height()-1, c.LastRow, "leaf %s reaches the last header row", d.Path)
		} else {
			assert.Equal(t, 1, c.RowSpan())
			assert.Equal(t, d.Leaves, c.ColSpan())
		}
	}
}

func TestCompileIsIdempotent(t *testing.T) {
	typ := &schema.Type{Fields: []schema.Field{
		{Name: "x", Type: &schema.Type{Fields: []schema.Field{{Name: "p"}, {Name: "q"}}}},
		{Name: "y"},
	}}
	first := compile(t, typ)
	second := compile(t, typ)
	assert.Equal(t, first.Cells(), second.Cells())
	assert.Equal(t, first.Paths(), second.Paths())
}

func TestTranslateDoesNotMutateLayout(t *testing.T) {
	l := compile(t, &schema.Type{Fields: []schema.Field{{Name: "a"}}})
	c := cell(t, l, "a")
	moved := c.Translate(3, 2)
	assert.Equal(t, Cell{Header: "a", FirstRow: 3, LastRow: 3, FirstColumn: 2, LastColumn: 2}, moved)
	assert.Equal(t, c, cell(t, l, "a"))
	assert.False(t, moved.Merged())
}

func TestCompileRejectsBadInput(t *testing.T) {
	_, err := Compile(nil)
	assert.ErrorIs(t, err, schema.ErrSchema)

	_, err = Compile([]schema.Descriptor{{Path: "a.b", Parent: "a", Depth: 2, Leaves: 1}})
	assert.Error(t, err)
}
