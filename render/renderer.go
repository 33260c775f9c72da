// Package render writes records into a workbook as paginated sheets, each
// starting with a replay of the compiled header.
package render

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/aerissecure/export/layout"
	"github.com/aerissecure/export/resource"
	"github.com/aerissecure/export/schema"
	"github.com/aerissecure/export/style"
)

var (
	ErrConfig           = errors.New("render: invalid config")
	ErrCapacityExceeded = errors.New("render: rows do not fit on one sheet")
	ErrRenderAborted    = errors.New("render: aborted by an earlier error")
)

// FieldAccessError reports a record field that could not be read.
type FieldAccessError struct {
	Sheet string
	// Row is the 1-based row number on Sheet.
	Row  int
	Path schema.Path
	Err  error
}

func (e *FieldAccessError) Error() string {
	return fmt.Sprintf("sheet %q row %d field %s: %v", e.Sheet, e.Row, e.Path, e.Err)
}

func (e *FieldAccessError) Unwrap() []error {
	return []error{schema.ErrFieldAccess, e.Err}
}

type state int

const (
	stateNew state = iota
	stateBody
	stateFinished
	stateAborted
)

type headerCell struct {
	cell    layout.Cell
	style   style.Handle
	outline style.Handle
}

type column struct {
	path  schema.Path
	col   int
	style style.Handle
}

// Renderer is the pagination state machine. It is not safe for concurrent use.
type Renderer struct {
	res     *resource.Resource
	wb      Workbook
	cfg     Config
	log     *zap.Logger
	metrics *Metrics

	header  []headerCell
	columns []column
	height  int
	limit   int

	state  state
	sheet  Sheet
	sheets []string
	cursor int
	rows   int
	err    error
}

// Option configures a Renderer.
type Option func(*Renderer)

func WithLogger(log *zap.Logger) Option {
	return func(r *Renderer) {
		if log != nil {
			r.log = log
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(r *Renderer) { r.metrics = m }
}

// New prepares a renderer for res. The header cells and their outline styles
// are computed once, translated to the configured origin.
func New(res *resource.Resource, wb Workbook, cfg Config, opts ...Option) (*Renderer, error) {
	if res == nil || wb == nil {
		return nil, fmt.Errorf("%w: nil resource or workbook", ErrConfig)
	}
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	r := &Renderer{
		res:    res,
		wb:     wb,
		cfg:    cfg,
		log:    zap.NewNop(),
		height: res.Layout().Height(),
		limit:  cfg.limit(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.Named("render")

	if r.perSheet() < 1 {
		return nil, fmt.Errorf("%w: header of %d rows at row %d leaves no room below row %d",
			ErrConfig, r.height, cfg.Origin.Row, r.limit)
	}

	outlines := make(map[style.Handle]style.Handle)
	for _, path := range res.Layout().Paths() {
		c, _ := res.Layout().Cell(path)
		h := res.Style(path, style.Header)
		hc := headerCell{cell: c.Translate(cfg.Origin.Row, cfg.Origin.Column), style: h, outline: h}
		if c.Merged() {
			o, ok := outlines[h]
			if !ok {
				var err error
				if o, err = wb.Outline(h); err != nil {
					return nil, fmt.Errorf("outline header style: %w", err)
				}
				outlines[h] = o
			}
			hc.outline = o
		}
		r.header = append(r.header, hc)
	}

	for _, p := range res.LeafPaths() {
		cell, _ := res.Layout().Cell(p)
		r.columns = append(r.columns, column{
			path:  p,
			col:   cell.FirstColumn + cfg.Origin.Column,
			style: res.Style(p, style.Body),
		})
	}
	return r, nil
}

// perSheet is the number of body rows that fit on one sheet.
func (r *Renderer) perSheet() int {
	return r.limit - r.cfg.Origin.Row - r.height
}

// Render writes records and finishes the workbook.
func (r *Renderer) Render(ctx context.Context, records []schema.Record) error {
	if err := r.AddRows(ctx, records); err != nil {
		return err
	}
	return r.Finish()
}

// AddRows appends records below the rows already written, opening new sheets
// as needed. It may be called again after Finish.
func (r *Renderer) AddRows(ctx context.Context, records []schema.Record) error {
	if r.state == stateAborted {
		return fmt.Errorf("%w: %w", ErrRenderAborted, r.err)
	}

	if r.cfg.Mode == SingleSheet && r.rows+len(records) > r.perSheet() {
		r.metrics.incFailure("capacity")
		return fmt.Errorf("%w: %d rows already written, %d more requested, capacity %d",
			ErrCapacityExceeded, r.rows, len(records), r.perSheet())
	}

	if r.sheet == nil {
		if err := r.newSheet(); err != nil {
			return r.abort("engine", err)
		}
	}
	r.state = stateBody

	written := 0
	defer func() { r.metrics.addRows(written) }()

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return r.abort("canceled", err)
		}
		if r.cursor >= r.limit {
			if err := r.rollover(); err != nil {
				return r.abort("engine", err)
			}
		}
		if err := r.writeRecord(rec); err != nil {
			r.log.Error("field read failed", zap.Int("record", i), zap.Error(err))
			return r.abort("field_access", err)
		}
		r.cursor++
		r.rows++
		written++
	}
	return nil
}

// Finish fits the columns of the current sheet. A render with no records
// still produces one sheet holding the header.
func (r *Renderer) Finish() error {
	if r.state == stateAborted {
		return fmt.Errorf("%w: %w", ErrRenderAborted, r.err)
	}
	if r.sheet == nil {
		if err := r.newSheet(); err != nil {
			return r.abort("engine", err)
		}
	}
	r.autoSize()
	r.state = stateFinished
	r.log.Info("render finished",
		zap.Int("rows", r.rows),
		zap.Int("sheets", len(r.sheets)),
	)
	return nil
}

// Sheets returns the names of the sheets created so far.
func (r *Renderer) Sheets() []string {
	out := make([]string, len(r.sheets))
	copy(out, r.sheets)
	return out
}

// Rows returns the number of body rows written.
func (r *Renderer) Rows() int { return r.rows }

// Err returns the error that aborted the renderer, if any.
func (r *Renderer) Err() error { return r.err }

func (r *Renderer) rollover() error {
	if r.cfg.Mode == SingleSheet {
		return fmt.Errorf("%w: sheet %s is full", ErrCapacityExceeded, r.sheet.Name())
	}
	r.autoSize()
	r.log.Info("sheet full, continuing on a new sheet",
		zap.String("sheet", r.sheet.Name()),
		zap.Int("rows", r.rows),
	)
	return r.newSheet()
}

func (r *Renderer) newSheet() error {
	name := SheetName(r.cfg.SheetName, len(r.sheets)+1)
	sheet, err := r.wb.AddSheet(name)
	if err != nil {
		return fmt.Errorf("add sheet %q: %w", name, err)
	}
	r.sheet = sheet
	r.sheets = append(r.sheets, name)
	r.metrics.incSheets(r.cfg.Mode)

	if err := r.writeHeader(); err != nil {
		return err
	}
	r.cursor = r.cfg.Origin.Row + r.height
	return nil
}

func (r *Renderer) writeHeader() error {
	for _, hc := range r.header {
		c := hc.cell
		if c.Merged() {
			if err := r.sheet.Merge(c); err != nil {
				return fmt.Errorf("merge header %s: %w", c, err)
			}
		}
		r.sheet.SetString(c.FirstRow, c.FirstColumn, c.Header, hc.style)
		if !c.Merged() {
			continue
		}
		for row := c.FirstRow; row <= c.LastRow; row++ {
			for col := c.FirstColumn; col <= c.LastColumn; col++ {
				r.sheet.SetStyle(row, col, hc.outline)
			}
		}
	}
	r.log.Debug("header written",
		zap.String("sheet", r.sheet.Name()),
		zap.Int("cells", len(r.header)),
	)
	return nil
}

func (r *Renderer) writeRecord(rec schema.Record) error {
	if rec == nil {
		return &FieldAccessError{Sheet: r.sheet.Name(), Row: r.cursor + 1, Err: errors.New("nil record")}
	}
	for _, c := range r.columns {
		v, err := rec.Get(c.path)
		if err != nil {
			return &FieldAccessError{Sheet: r.sheet.Name(), Row: r.cursor + 1, Path: c.path, Err: err}
		}
		writeValue(r.sheet, r.cursor, c.col, v, c.style, r.cfg.ListSeparator)
	}
	return nil
}

func (r *Renderer) autoSize() {
	first := r.cfg.Origin.Column
	for col := first; col < first+r.res.Layout().Width(); col++ {
		r.sheet.AutoSize(col, r.cfg.AutoSizePadding)
	}
}

func (r *Renderer) abort(reason string, err error) error {
	r.state = stateAborted
	r.err = err
	r.metrics.incFailure(reason)
	return err
}

// SheetName returns the name of the n-th sheet, shortening base so that the
// result fits the sheet-name limit. Characters not allowed in sheet names are
// replaced with '_'.
func SheetName(base string, n int) string {
	base = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, base)

	suffix := strconv.Itoa(n)
	runes := []rune(base)
	if keep := MaxSheetNameLength - len(suffix); len(runes) > keep {
		runes = runes[:keep]
	}
	return string(runes) + suffix
}
