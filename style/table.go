package style

import (
	"errors"
	"fmt"

	"github.com/aerissecure/export/schema"
)

// Location says whether a style applies to a header or a body cell.
type Location int

const (
	Header Location = iota
	Body
)

func (l Location) String() string {
	switch l {
	case Header:
		return "header"
	case Body:
		return "body"
	}
	return fmt.Sprintf("location(%d)", int(l))
}

// Key identifies one entry of the table.
type Key struct {
	Path     schema.Path
	Location Location
}

// Handle is an opaque reference to a style created by a Factory.
type Handle int

// Factory creates physical styles. It is implemented by the spreadsheet engine.
type Factory interface {
	NewStyle(s Spec) (Handle, error)
}

// Table maps every (path, location) pair to an interned style handle. It has
// no mutators and is safe for concurrent reads.
type Table struct {
	handles map[Key]Handle
	specs   map[Key]Spec
}

// Build resolves the effective style of every field at both locations and
// creates one engine style per distinct Spec.
//
// Precedence: the field's own ref, then the type-level default, then no style.
// Header cells always use the text format; body formats come from dec.
func Build(descs []schema.Descriptor, defaults schema.Defaults, reg *Registry, dec Decider, f Factory) (*Table, error) {
	if f == nil {
		return nil, errors.New("style: nil factory")
	}
	if reg == nil {
		reg = NewRegistry()
	}
	if dec == nil {
		dec = DefaultDecider
	}

	t := &Table{
		handles: make(map[Key]Handle, 2*len(descs)),
		specs:   make(map[Key]Spec, 2*len(descs)),
	}
	interned := make(map[Spec]Handle)

	for _, d := range descs {
		for _, loc := range []Location{Header, Body} {
			ref, fallback, format := d.HeaderStyle, defaults.Header, FormatText
			if loc == Body {
				ref, fallback, format = d.BodyStyle, defaults.Body, dec.Format(d.Kind)
			}
			if ref.IsZero() {
				ref = fallback
			}

			s, err := reg.Resolve(ref)
			if err != nil {
				return nil, fmt.Errorf("field %s %s style: %w", d.Path, loc, err)
			}

			spec := Spec{Format: format}
			if s != nil {
				s.Apply(&spec)
				spec.Format = format
			}

			h, ok := interned[spec]
			if !ok {
				h, err = f.NewStyle(spec)
				if err != nil {
					return nil, fmt.Errorf("field %s %s style: %w", d.Path, loc, err)
				}
				interned[spec] = h
			}

			key := Key{Path: d.Path, Location: loc}
			t.handles[key] = h
			t.specs[key] = spec
		}
	}

	if len(t.handles) == 0 {
		return nil, fmt.Errorf("%w: no styles were resolved", schema.ErrSchema)
	}
	return t, nil
}

// Lookup returns the handle stored under key.
func (t *Table) Lookup(key Key) (Handle, bool) {
	h, ok := t.handles[key]
	return h, ok
}

// Get returns the handle of path at loc.
func (t *Table) Get(path schema.Path, loc Location) (Handle, bool) {
	return t.Lookup(Key{Path: path, Location: loc})
}

// Spec returns the resolved spec of path at loc.
func (t *Table) Spec(path schema.Path, loc Location) (Spec, bool) {
	s, ok := t.specs[Key{Path: path, Location: loc}]
	return s, ok
}

// Len returns the number of keys in the table.
func (t *Table) Len() int { return len(t.handles) }
