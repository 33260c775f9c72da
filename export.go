// Package export writes Go values to xlsx workbooks. Column headers, their
// nesting and their styles come from struct tags or from a schema.Type; large
// inputs continue on new sheets, each starting with the same header.
//
//	type Employee struct {
//		Info   Info    `xlsx:"Employee,header=BlueHeader"`
//		Salary float64 `xlsx:"Salary,body=default.BODY"`
//	}
//
//	f, err := export.New[Employee](export.WithSheetName("Staff"))
//	...
//	err = f.AddRows(ctx, employees)
//	...
//	err = f.WriteFile(ctx, "staff.xlsx")
package export

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/aerissecure/export/render"
	"github.com/aerissecure/export/resource"
	"github.com/aerissecure/export/schema"
	"github.com/aerissecure/export/xlsx"
)

const tracerName = "github.com/aerissecure/export"

// File is a workbook being filled with values of type T. It is not safe for
// concurrent use.
type File[T any] struct {
	wb   *xlsx.Workbook
	res  *resource.Resource
	r    *render.Renderer
	bind func(T) schema.Record
	log  *zap.Logger
}

// New prepares a workbook for T, reading the columns from T's struct tags.
func New[T any](opts ...Option) (*File[T], error) {
	t, err := schema.Of[T]()
	if err != nil {
		return nil, err
	}
	acc, err := schema.NewAccessor(t)
	if err != nil {
		return nil, err
	}
	return NewWithSchema(t, func(v T) schema.Record { return acc.Bind(v) }, opts...)
}

// NewWithSchema prepares a workbook whose columns are described by t. bind
// turns each value into a record that t's paths can be read from.
func NewWithSchema[T any](t *schema.Type, bind func(T) schema.Record, opts ...Option) (*File[T], error) {
	if bind == nil {
		return nil, fmt.Errorf("%w: nil bind function", render.ErrConfig)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	wb := xlsx.New()
	var ropts []resource.Option
	if o.registry != nil {
		ropts = append(ropts, resource.WithRegistry(o.registry))
	}
	if o.decider != nil {
		ropts = append(ropts, resource.WithDecider(o.decider))
	}
	res, err := resource.Compile(t, wb, ropts...)
	if err != nil {
		return nil, err
	}

	r, err := render.New(res, wb, o.cfg, render.WithLogger(o.log), render.WithMetrics(o.metrics))
	if err != nil {
		return nil, err
	}

	return &File[T]{
		wb:   wb,
		res:  res,
		r:    r,
		bind: bind,
		log:  o.log.Named("export"),
	}, nil
}

// AddRows appends rows below those already written.
func (f *File[T]) AddRows(ctx context.Context, rows []T) (err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "export.AddRows",
		trace.WithAttributes(
			attribute.String("export.type", f.res.Name()),
			attribute.Int("export.rows", len(rows)),
		))
	defer func() { endSpan(span, err) }()

	recs := make([]schema.Record, len(rows))
	for i, v := range rows {
		recs[i] = f.bind(v)
	}
	return f.r.AddRows(ctx, recs)
}

// Write finishes the workbook and writes it to w.
func (f *File[T]) Write(ctx context.Context, w io.Writer) (err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "export.Write")
	defer func() { endSpan(span, err) }()

	if err := f.r.Finish(); err != nil {
		return err
	}
	if err := f.wb.Save(w); err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("export.sheets", len(f.r.Sheets())))
	withTrace(ctx, f.log).Info("workbook written",
		zap.Int("rows", f.r.Rows()),
		zap.Strings("sheets", f.r.Sheets()),
	)
	return nil
}

// WriteFile finishes the workbook and writes it to path.
func (f *File[T]) WriteFile(ctx context.Context, path string) (err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "export.WriteFile",
		trace.WithAttributes(attribute.String("export.path", path)))
	defer func() { endSpan(span, err) }()

	if err := f.r.Finish(); err != nil {
		return err
	}
	if err := f.wb.SaveToFile(path); err != nil {
		return err
	}
	withTrace(ctx, f.log).Info("workbook written",
		zap.String("path", path),
		zap.Int("rows", f.r.Rows()),
		zap.Strings("sheets", f.r.Sheets()),
	)
	return nil
}

// Sheets returns the names of the sheets created so far.
func (f *File[T]) Sheets() []string { return f.r.Sheets() }

// Rows returns the number of rows written.
func (f *File[T]) Rows() int { return f.r.Rows() }

// Workbook returns the underlying workbook.
func (f *File[T]) Workbook() *xlsx.Workbook { return f.wb }

// Write renders rows of T into a new workbook and writes it to w.
func Write[T any](ctx context.Context, w io.Writer, rows []T, opts ...Option) error {
	f, err := New[T](opts...)
	if err != nil {
		return err
	}
	if err := f.AddRows(ctx, rows); err != nil {
		return err
	}
	return f.Write(ctx, w)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// withTrace adds the trace and span IDs of ctx to log.
func withTrace(ctx context.Context, log *zap.Logger) *zap.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return log
	}
	return log.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}
