package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aerissecure/export/layout"
	"github.com/aerissecure/export/resource"
	"github.com/aerissecure/export/schema"
	"github.com/aerissecure/export/style"
)

type pos struct{ row, col int }

type fakeCell struct {
	kind  string // string | number | time | style
	str   string
	num   float64
	time  time.Time
	style style.Handle
}

type fakeSheet struct {
	name   string
	cells  map[pos]fakeCell
	merges []layout.Cell
	widths map[int]float64
}

func (s *fakeSheet) Name() string { return s.name }

func (s *fakeSheet) SetString(row, col int, v string, h style.Handle) {
	s.cells[pos{row, col}] = fakeCell{kind: "string", str: v, style: h}
}

func (s *fakeSheet) SetNumber(row, col int, v float64, h style.Handle) {
	s.cells[pos{row, col}] = fakeCell{kind: "number", num: v, style: h}
}

func (s *fakeSheet) SetTime(row, col int, v time.Time, h style.Handle) {
	s.cells[pos{row, col}] = fakeCell{kind: "time", time: v, style: h}
}

func (s *fakeSheet) SetStyle(row, col int, h style.Handle) {
	c, ok := s.cells[pos{row, col}]
	if !ok {
		c.kind = "style"
	}
	c.style = h
	s.cells[pos{row, col}] = c
}

func (s *fakeSheet) Merge(r layout.Cell) error {
	s.merges = append(s.merges, r)
	return nil
}

func (s *fakeSheet) AutoSize(col int, padding float64) {
	s.widths[col] = padding
}

// bodyRows returns the number of distinct row indexes holding cells at or below from.
func (s *fakeSheet) bodyRows(from int) int {
	seen := map[int]bool{}
	for p := range s.cells {
		if p.row >= from {
			seen[p.row] = true
		}
	}
	return len(seen)
}

type fakeWorkbook struct {
	specs    []style.Spec
	outlines map[style.Handle]style.Handle
	sheets   []*fakeSheet
	addErr   error
}

func newFakeWorkbook() *fakeWorkbook {
	return &fakeWorkbook{outlines: map[style.Handle]style.Handle{}}
}

func (w *fakeWorkbook) NewStyle(s style.Spec) (style.Handle, error) {
	w.specs = append(w.specs, s)
	return style.Handle(len(w.specs) - 1), nil
}

func (w *fakeWorkbook) Outline(h style.Handle) (style.Handle, error) {
	if o, ok := w.outlines[h]; ok {
		return o, nil
	}
	spec := w.specs[h]
	spec.Border = style.BorderThin
	o, _ := w.NewStyle(spec)
	w.outlines[h] = o
	return o, nil
}

func (w *fakeWorkbook) AddSheet(name string) (Sheet, error) {
	if w.addErr != nil {
		return nil, w.addErr
	}
	s := &fakeSheet{name: name, cells: map[pos]fakeCell{}, widths: map[int]float64{}}
	w.sheets = append(w.sheets, s)
	return s, nil
}

// employeeType lays out as
//
//	| Employee     | ID |
//	| Name  | Age  |    |
func employeeType() *schema.Type {
	return &schema.Type{
		Name: "Employee",
		Fields: []schema.Field{
			{Name: "info", Header: "Employee", Type: &schema.Type{Fields: []schema.Field{
				{Name: "name", Header: "Name", Kind: schema.KindString},
				{Name: "age", Header: "Age", Kind: schema.KindInt},
			}}},
			{Name: "id", Header: "ID", Kind: schema.KindString},
		},
	}
}

func compile(t *testing.T, typ *schema.Type, wb *fakeWorkbook) *resource.Resource {
	t.Helper()
	res, err := resource.Compile(typ, wb)
	require.NoError(t, err)
	return res
}

func employees(n int) []schema.Record {
	recs := make([]schema.Record, n)
	for i := range recs {
		recs[i] = schema.Map{
			"info": schema.Map{"name": fmt.Sprintf("emp-%d", i), "age": 20 + i},
			"id":   fmt.Sprintf("E%03d", i),
		}
	}
	return recs
}

func headerCells(s *fakeSheet, height int) map[pos]fakeCell {
	out := map[pos]fakeCell{}
	for p, c := range s.cells {
		if p.row < height {
			out[p] = c
		}
	}
	return out
}

func TestPagination(t *testing.T) {
	tests := []struct {
		records int
		sheets  int
		last    int
	}{
		{records: 0, sheets: 1, last: 0},
		{records: 1, sheets: 1, last: 1},
		{records: 3, sheets: 1, last: 3},
		{records: 4, sheets: 2, last: 1},
		{records: 9, sheets: 3, last: 3},
		{records: 10, sheets: 4, last: 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d records", tt.records), func(t *testing.T) {
			wb := newFakeWorkbook()
			res := compile(t, employeeType(), wb)

			// Rows 0-1 hold the header, rows 2-4 the body.
			r, err := New(res, wb, Config{RowCeiling: 5})
			require.NoError(t, err)
			require.NoError(t, r.Render(context.Background(), employees(tt.records)))

			require.Len(t, wb.sheets, tt.sheets)
			assert.Equal(t, tt.records, r.Rows())
			for i, s := range wb.sheets {
				assert.Equal(t, fmt.Sprintf("Sheet%d", i+1), s.name)
				want := 3
				if i == len(wb.sheets)-1 {
					want = tt.last
				}
				assert.Equal(t, want, s.bodyRows(2), "sheet %s", s.name)
				assert.Equal(t, headerCells(wb.sheets[0], 2), headerCells(s, 2), "header replayed on %s", s.name)
			}
		})
	}
}

func TestDefaultCeilingLeavesLastRowFree(t *testing.T) {
	wb := newFakeWorkbook()
	res := compile(t, employeeType(), wb)

	r, err := New(res, wb, Config{})
	require.NoError(t, err)
	assert.Equal(t, MaxRows-1, r.limit)
	assert.Equal(t, MaxRows-1-2, r.perSheet())
}

func TestBodyValuesUnderTheirHeaders(t *testing.T) {
	wb := newFakeWorkbook()
	res := compile(t, employeeType(), wb)

	r, err := New(res, wb, DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, r.Render(context.Background(), employees(1)))

	s := wb.sheets[0]
	assert.Equal(t, "Employee", s.cells[pos{0, 0}].str)
	assert.Equal(t, "ID", s.cells[pos{0, 2}].str)
	assert.Equal(t, "Name", s.cells[pos{1, 0}].str)
	assert.Equal(t, "Age", s.cells[pos{1, 1}].str)

	// Leaf paths are ordered id, info.name, info.age but each value lands in
	// its header's column.
	assert.Equal(t, fakeCell{kind: "string", str: "emp-0", style: res.Style("info.name", style.Body)}, s.cells[pos{2, 0}])
	assert.Equal(t, fakeCell{kind: "number", num: 20, style: res.Style("info.age", style.Body)}, s.cells[pos{2, 1}])
	assert.Equal(t, "E000", s.cells[pos{2, 2}].str)

	assert.Equal(t, map[int]float64{0: 2, 1: 2, 2: 2}, s.widths)
}

func TestMergedHeadersAreOutlined(t *testing.T) {
	wb := newFakeWorkbook()
	res := compile(t, employeeType(), wb)

	r, err := New(res, wb, DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, r.Finish())

	s := wb.sheets[0]
	assert.ElementsMatch(t, []layout.Cell{
		{Header: "Employee", FirstRow: 0, LastRow: 0, FirstColumn: 0, LastColumn: 1},
		{Header: "ID", FirstRow: 0, LastRow: 1, FirstColumn: 2, LastColumn: 2},
	}, s.merges, spew.Sdump(s.merges))

	h := res.Style("info", style.Header)
	o := wb.outlines[h]
	assert.Equal(t, style.BorderThin, wb.specs[o].Border)
	assert.Equal(t, o, s.cells[pos{0, 0}].style)
	assert.Equal(t, o, s.cells[pos{0, 1}].style)
	assert.Equal(t, "Employee", s.cells[pos{0, 0}].str, "outlining keeps the header text")
	assert.Equal(t, wb.outlines[res.Style("id", style.Header)], s.cells[pos{1, 2}].style)

	assert.Equal(t, res.Style("info.name", style.Header), s.cells[pos{1, 0}].style, "unmerged cells keep their own style")
}

func TestOrigin(t *testing.T) {
	wb := newFakeWorkbook()
	res := compile(t, employeeType(), wb)

	r, err := New(res, wb, Config{Origin: Origin{Row: 3, Column: 2}, RowCeiling: 7})
	require.NoError(t, err)
	require.NoError(t, r.Render(context.Background(), employees(3)))

	require.Len(t, wb.sheets, 2)
	s := wb.sheets[0]
	assert.Equal(t, "Employee", s.cells[pos{3, 2}].str)
	assert.Equal(t, "Name", s.cells[pos{4, 2}].str)
	assert.Equal(t, "emp-0", s.cells[pos{5, 2}].str)
	assert.Equal(t, "emp-1", s.cells[pos{6, 2}].str)
	assert.Equal(t, "emp-2", wb.sheets[1].cells[pos{5, 2}].str)
	assert.Equal(t, 2, s.merges[0].FirstColumn)
}

func TestSingleSheetCapacity(t *testing.T) {
	wb := newFakeWorkbook()
	res := compile(t, employeeType(), wb)

	r, err := New(res, wb, Config{Mode: SingleSheet, RowCeiling: 5})
	require.NoError(t, err)

	err = r.AddRows(context.Background(), employees(4))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Empty(t, wb.sheets, "nothing is written for oversize input")

	require.NoError(t, r.AddRows(context.Background(), employees(2)))
	assert.ErrorIs(t, r.AddRows(context.Background(), employees(2)), ErrCapacityExceeded)
	require.NoError(t, r.AddRows(context.Background(), employees(1)))
	require.NoError(t, r.Finish())

	require.Len(t, wb.sheets, 1)
	assert.Equal(t, 3, wb.sheets[0].bodyRows(2))
}

func TestSingleSheetDefaultCapacityUsesEveryRow(t *testing.T) {
	wb := newFakeWorkbook()
	res := compile(t, employeeType(), wb)

	r, err := New(res, wb, Config{Mode: SingleSheet})
	require.NoError(t, err)
	assert.Equal(t, MaxRows-2, r.perSheet())
}

func TestAddRowsAfterFinish(t *testing.T) {
	wb := newFakeWorkbook()
	res := compile(t, employeeType(), wb)

	r, err := New(res, wb, Config{RowCeiling: 5})
	require.NoError(t, err)
	require.NoError(t, r.Render(context.Background(), employees(2)))
	require.NoError(t, r.AddRows(context.Background(), employees(2)))
	require.NoError(t, r.Finish())

	assert.Equal(t, []string{"Sheet1", "Sheet2"}, r.Sheets())
	assert.Equal(t, 4, r.Rows())
}

func TestFieldAccessErrorAborts(t *testing.T) {
	wb := newFakeWorkbook()
	res := compile(t, employeeType(), wb)

	boom := errors.New("no age")
	recs := employees(2)
	recs[1] = schema.RecordFunc(func(p schema.Path) (any, error) {
		if p == "info.age" {
			return nil, boom
		}
		return "x", nil
	})

	core, logs := observer.New(zapcore.ErrorLevel)
	r, err := New(res, wb, DefaultConfig(), WithLogger(zap.New(core)))
	require.NoError(t, err)

	err = r.AddRows(context.Background(), recs)
	var fae *FieldAccessError
	require.ErrorAs(t, err, &fae)
	assert.Equal(t, "Sheet1", fae.Sheet)
	assert.Equal(t, 4, fae.Row)
	assert.Equal(t, schema.Path("info.age"), fae.Path)
	assert.ErrorIs(t, err, schema.ErrFieldAccess)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, 1, logs.FilterMessage("field read failed").Len())

	err = r.AddRows(context.Background(), employees(1))
	assert.ErrorIs(t, err, ErrRenderAborted)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, r.Finish(), ErrRenderAborted)
	assert.Equal(t, 1, r.Rows())
}

func TestMissingMapSegment(t *testing.T) {
	wb := newFakeWorkbook()
	res := compile(t, employeeType(), wb)

	r, err := New(res, wb, DefaultConfig())
	require.NoError(t, err)

	err = r.AddRows(context.Background(), []schema.Record{schema.Map{"id": "x"}, nil})
	assert.ErrorIs(t, err, schema.ErrFieldAccess)
}

func TestCanceledContext(t *testing.T) {
	wb := newFakeWorkbook()
	res := compile(t, employeeType(), wb)

	r, err := New(res, wb, DefaultConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = r.AddRows(ctx, employees(3))
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, r.Finish(), ErrRenderAborted)
}

func TestAddSheetFailure(t *testing.T) {
	wb := newFakeWorkbook()
	wb.addErr = errors.New("too many sheets")
	res := compile(t, employeeType(), wb)

	r, err := New(res, wb, DefaultConfig())
	require.NoError(t, err)
	assert.ErrorIs(t, r.Render(context.Background(), employees(1)), wb.addErr)
}

type point struct{ x, y int }

func (p point) String() string { return fmt.Sprintf("(%d,%d)", p.x, p.y) }

type level int

func TestValueDispatch(t *testing.T) {
	typ := &schema.Type{Fields: []schema.Field{
		{Name: "v"},
	}}
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	var nilPtr *int
	seven := 7

	tests := []struct {
		name  string
		value any
		want  fakeCell
	}{
		{"nil", nil, fakeCell{kind: "string"}},
		{"nil pointer", nilPtr, fakeCell{kind: "string"}},
		{"pointer", &seven, fakeCell{kind: "number", num: 7}},
		{"int", int64(-3), fakeCell{kind: "number", num: -3}},
		{"uint", uint8(200), fakeCell{kind: "number", num: 200}},
		{"float", 1.25, fakeCell{kind: "number", num: 1.25}},
		{"time", ts, fakeCell{kind: "time", time: ts}},
		{"bool", true, fakeCell{kind: "string", str: "true"}},
		{"bytes", []byte("raw"), fakeCell{kind: "string", str: "raw"}},
		{"list", []any{"a", nil, 3, &seven}, fakeCell{kind: "string", str: "a; ; 3; 7"}},
		{"array", [2]string{"x", "y"}, fakeCell{kind: "string", str: "x; y"}},
		{"empty list", []string{}, fakeCell{kind: "string"}},
		{"duration", 2 * time.Second, fakeCell{kind: "string", str: "2s"}},
		{"named int", level(4), fakeCell{kind: "number", num: 4}},
		{"stringer", point{1, 2}, fakeCell{kind: "string", str: "(1,2)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := newFakeWorkbook()
			res := compile(t, typ, wb)
			r, err := New(res, wb, Config{ListSeparator: "; "})
			require.NoError(t, err)

			rec := schema.RecordFunc(func(schema.Path) (any, error) { return tt.value, nil })
			require.NoError(t, r.Render(context.Background(), []schema.Record{rec}))

			got := wb.sheets[0].cells[pos{1, 0}]
			got.style = 0
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListDefaultSeparator(t *testing.T) {
	wb := newFakeWorkbook()
	res := compile(t, &schema.Type{Name: "row", Fields: []schema.Field{{Name: "v"}}}, wb)
	r, err := New(res, wb, Config{})
	require.NoError(t, err)

	rec := schema.RecordFunc(func(schema.Path) (any, error) { return []string{"a", "b"}, nil })
	require.NoError(t, r.Render(context.Background(), []schema.Record{rec}))
	assert.Equal(t, "a, b", wb.sheets[0].cells[pos{1, 0}].str)
}

func TestConfigErrors(t *testing.T) {
	wb := newFakeWorkbook()
	res := compile(t, employeeType(), wb)

	_, err := New(res, wb, Config{RowCeiling: MaxRows + 1})
	assert.ErrorIs(t, err, ErrConfig)

	_, err = New(res, wb, Config{RowCeiling: 2})
	assert.ErrorIs(t, err, ErrConfig, "a two-row header leaves no body rows")

	_, err = New(res, wb, Config{Origin: Origin{Row: -1}})
	assert.ErrorIs(t, err, ErrConfig)

	_, err = New(res, wb, Config{Mode: Mode(7)})
	assert.ErrorIs(t, err, ErrConfig)

	_, err = New(nil, wb, Config{})
	assert.ErrorIs(t, err, ErrConfig)

	_, err = ParseMode("sideways")
	assert.ErrorIs(t, err, ErrConfig)
	m, err := ParseMode("Single")
	require.NoError(t, err)
	assert.Equal(t, SingleSheet, m)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{SheetName: "  "}.withDefaults()
	assert.Equal(t, "Sheet", cfg.SheetName)
	assert.Equal(t, ", ", cfg.ListSeparator)
	assert.Equal(t, MaxRows, cfg.MaxRows)
	assert.Equal(t, 2.0, cfg.AutoSizePadding)

	cfg = Config{AutoSizePadding: NoPadding}.withDefaults()
	assert.Equal(t, 0.0, cfg.AutoSizePadding)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Sheet1", SheetName("Sheet", 1))
	assert.Equal(t, "Q1_Q2 report3", SheetName("Q1/Q2 report", 3))

	long := SheetName(strings.Repeat("x", 40), 12)
	assert.Len(t, long, MaxSheetNameLength)
	assert.True(t, strings.HasSuffix(long, "x12"))

	wide := SheetName(strings.Repeat("表", 40), 1)
	assert.Equal(t, MaxSheetNameLength, len([]rune(wide)))
}

func TestLogsAndMetrics(t *testing.T) {
	wb := newFakeWorkbook()
	res := compile(t, employeeType(), wb)

	core, logs := observer.New(zapcore.InfoLevel)
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r, err := New(res, wb, Config{RowCeiling: 5}, WithLogger(zap.New(core)), WithMetrics(m))
	require.NoError(t, err)
	require.NoError(t, r.Render(context.Background(), employees(7)))

	assert.Equal(t, 7.0, testutil.ToFloat64(m.rowsRendered))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.sheetsCreated.WithLabelValues("multi")))

	rollovers := logs.FilterMessage("sheet full, continuing on a new sheet").All()
	require.Len(t, rollovers, 2)
	assert.Equal(t, "render", rollovers[0].LoggerName)
	assert.Equal(t, "Sheet1", rollovers[0].ContextMap()["sheet"])
	assert.Equal(t, 1, logs.FilterMessage("render finished").Len())

	r, err = New(res, wb, Config{Mode: SingleSheet, RowCeiling: 5}, WithMetrics(m))
	require.NoError(t, err)
	assert.Error(t, r.AddRows(context.Background(), employees(9)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("capacity")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.addRows(3)
	m.incSheets(MultiSheet)
	m.incFailure("engine")
}
