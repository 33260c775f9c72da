// Package resource compiles a record type into everything the renderer needs:
// ordered field paths, leaf paths, the header layout and the style table.
package resource

import (
	"fmt"

	"github.com/aerissecure/export/layout"
	"github.com/aerissecure/export/schema"
	"github.com/aerissecure/export/style"
)

// Resource is the compiled form of a record type. It is read-only after
// Compile and can be shared by concurrent renders into the same workbook's
// style space.
type Resource struct {
	name   string
	fields []schema.Descriptor
	paths  []schema.Path
	leaves []schema.Path
	layout *layout.Layout
	styles *style.Table
}

type options struct {
	registry *style.Registry
	decider  style.Decider
}

// Option configures Compile.
type Option func(*options)

// WithRegistry resolves style refs against reg instead of the built-in styles.
func WithRegistry(reg *style.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithDecider picks body number formats with dec.
func WithDecider(dec style.Decider) Option {
	return func(o *options) { o.decider = dec }
}

// Compile resolves t, lays out its header and builds its style table using
// styles created by f.
func Compile(t *schema.Type, f style.Factory, opts ...Option) (*Resource, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	fields, err := schema.Resolve(t)
	if err != nil {
		return nil, err
	}
	l, err := layout.Compile(fields)
	if err != nil {
		return nil, err
	}
	styles, err := style.Build(fields, t.Defaults, o.registry, o.decider, f)
	if err != nil {
		return nil, err
	}

	leaves := schema.LeafPaths(fields)
	if len(leaves) == 0 {
		return nil, fmt.Errorf("%w: type %q has no leaf columns", schema.ErrSchema, t.Name)
	}

	return &Resource{
		name:   t.Name,
		fields: fields,
		paths:  schema.Paths(fields),
		leaves: leaves,
		layout: l,
		styles: styles,
	}, nil
}

// Name returns the record type name.
func (r *Resource) Name() string { return r.name }

// Fields returns the resolved descriptors in order.
func (r *Resource) Fields() []schema.Descriptor {
	out := make([]schema.Descriptor, len(r.fields))
	copy(out, r.fields)
	return out
}

// FieldPaths returns all field paths in order.
func (r *Resource) FieldPaths() []schema.Path {
	out := make([]schema.Path, len(r.paths))
	copy(out, r.paths)
	return out
}

// LeafPaths returns the leaf field paths in order.
func (r *Resource) LeafPaths() []schema.Path {
	out := make([]schema.Path, len(r.leaves))
	copy(out, r.leaves)
	return out
}

// Layout returns the header layout.
func (r *Resource) Layout() *layout.Layout { return r.layout }

// Styles returns the style table.
func (r *Resource) Styles() *style.Table { return r.styles }

// Style returns the handle of path at loc.
func (r *Resource) Style(path schema.Path, loc style.Location) style.Handle {
	h, _ := r.styles.Get(path, loc)
	return h
}
