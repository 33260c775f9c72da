package schema

import (
	"fmt"
	"reflect"
)

// Record gives the renderer read access to one record instance by field path.
type Record interface {
	Get(path Path) (any, error)
}

// RecordFunc adapts a function to the Record interface.
type RecordFunc func(path Path) (any, error)

func (f RecordFunc) Get(path Path) (any, error) { return f(path) }

// Map is a record backed by nested string-keyed maps, as produced by YAML or
// JSON decoding.
type Map map[string]any

// Get walks the nested maps along path.
func (m Map) Get(path Path) (any, error) {
	var cur any = m
	for _, seg := range path.Segments() {
		var fields map[string]any
		switch c := cur.(type) {
		case Map:
			fields = c
		case map[string]any:
			fields = c
		default:
			return nil, fmt.Errorf("%w: %s: segment %q of a %T value", ErrFieldAccess, path, seg, cur)
		}
		v, ok := fields[seg]
		if !ok {
			return nil, fmt.Errorf("%w: %s: missing segment %q", ErrFieldAccess, path, seg)
		}
		cur = v
	}
	return cur, nil
}

// Accessor reads field paths from instances of a struct type. The field index
// chain of every path is computed once, when the accessor is built.
type Accessor struct {
	rt     reflect.Type
	chains map[Path][][]int
}

// NewAccessor compiles an accessor for a Type read from struct tags.
func NewAccessor(t *Type) (*Accessor, error) {
	if t == nil || t.goType == nil {
		return nil, fmt.Errorf("%w: accessor needs a type read from a Go struct", ErrSchema)
	}
	a := &Accessor{rt: t.goType, chains: make(map[Path][][]int)}
	a.compile(t, "", nil)
	return a, nil
}

func (a *Accessor) compile(t *Type, parent Path, chain [][]int) {
	for _, f := range t.Fields {
		path := parent.Join(f.Name)
		c := make([][]int, len(chain), len(chain)+1)
		copy(c, chain)
		c = append(c, f.index)
		a.chains[path] = c
		if f.Type != nil {
			a.compile(f.Type, path, c)
		}
	}
}

// Bind returns v as a Record. v must be an instance of, or a pointer to, the
// accessor's struct type.
func (a *Accessor) Bind(v any) Record {
	return boundRecord{a: a, v: reflect.ValueOf(v)}
}

type boundRecord struct {
	a *Accessor
	v reflect.Value
}

func (r boundRecord) Get(path Path) (any, error) {
	chain, ok := r.a.chains[path]
	if !ok {
		return nil, fmt.Errorf("%w: unknown path %s", ErrFieldAccess, path)
	}
	v := r.v
	segs := path.Segments()
	for i, idx := range chain {
		for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
			if v.IsNil() {
				return nil, fmt.Errorf("%w: %s: nil value before segment %q", ErrFieldAccess, path, segs[i])
			}
			v = v.Elem()
		}
		if !v.IsValid() || v.Kind() != reflect.Struct {
			return nil, fmt.Errorf("%w: %s: segment %q of a non-struct value", ErrFieldAccess, path, segs[i])
		}
		if i == 0 && v.Type() != r.a.rt {
			return nil, fmt.Errorf("%w: record is %s, want %s", ErrFieldAccess, v.Type(), r.a.rt)
		}
		v = v.FieldByIndex(idx)
	}
	return v.Interface(), nil
}
