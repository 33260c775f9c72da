package schema

import (
	"fmt"
	"strings"
)

// Descriptor is a resolved, immutable view of one annotated field.
type Descriptor struct {
	Path   Path
	Parent Path
	Name   string
	Header string
	Kind   Kind
	// Depth is 1 for fields of the root type.
	Depth int
	// Children is the number of annotated fields of the field's type.
	Children int
	// Leaves is the number of leaf fields under this one; 1 for a leaf.
	Leaves      int
	HeaderStyle StyleRef
	BodyStyle   StyleRef
}

// Leaf reports whether the field contributes a data column.
func (d Descriptor) Leaf() bool { return d.Children == 0 }

// Resolve walks t breadth first and returns its annotated fields in order:
// all depth-1 fields in declaration order, then their children, and so on.
func Resolve(t *Type) ([]Descriptor, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", ErrSchema)
	}
	leaves := make(map[*Type]int)
	if _, err := countLeaves(t, leaves, map[*Type]bool{}); err != nil {
		return nil, err
	}
	if len(t.Fields) == 0 {
		return nil, fmt.Errorf("%w: type %q has no annotated fields", ErrSchema, t.Name)
	}

	type pending struct {
		field  Field
		parent Path
		depth  int
	}

	queue := make([]pending, 0, len(t.Fields))
	for _, f := range t.Fields {
		queue = append(queue, pending{field: f, depth: 1})
	}

	var out []Descriptor
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		path := p.parent.Join(p.field.Name)
		d := Descriptor{
			Path:        path,
			Parent:      p.parent,
			Name:        p.field.Name,
			Header:      p.field.HeaderName(),
			Kind:        p.field.Kind,
			Depth:       p.depth,
			Leaves:      1,
			HeaderStyle: p.field.HeaderStyle,
			BodyStyle:   p.field.BodyStyle,
		}
		if nt := p.field.Type; nt != nil && len(nt.Fields) > 0 {
			d.Children = len(nt.Fields)
			d.Leaves = leaves[nt]
			for _, child := range nt.Fields {
				queue = append(queue, pending{field: child, parent: path, depth: p.depth + 1})
			}
		}
		out = append(out, d)
	}
	return out, nil
}

// countLeaves validates the tree under t and memoizes the leaf count of every
// nested type. A type that appears in its own ancestry is rejected.
func countLeaves(t *Type, memo map[*Type]int, visiting map[*Type]bool) (int, error) {
	if n, ok := memo[t]; ok {
		return n, nil
	}
	if visiting[t] {
		return 0, fmt.Errorf("%w: type %q is recursive", ErrSchema, t.Name)
	}
	visiting[t] = true
	defer delete(visiting, t)

	seen := make(map[string]bool, len(t.Fields))
	total := 0
	for _, f := range t.Fields {
		if f.Name == "" {
			return 0, fmt.Errorf("%w: type %q has a field without a name", ErrSchema, t.Name)
		}
		if strings.Contains(f.Name, PathSeparator) {
			return 0, fmt.Errorf("%w: field name %q contains %q", ErrSchema, f.Name, PathSeparator)
		}
		if seen[f.Name] {
			return 0, fmt.Errorf("%w: type %q declares field %q twice", ErrSchema, t.Name, f.Name)
		}
		seen[f.Name] = true

		if f.Type == nil || len(f.Type.Fields) == 0 {
			total++
			continue
		}
		n, err := countLeaves(f.Type, memo, visiting)
		if err != nil {
			return 0, err
		}
		total += n
	}
	memo[t] = total
	return total, nil
}

// Depth returns the deepest Depth among descs, which is the header height.
func Depth(descs []Descriptor) int {
	max := 0
	for _, d := range descs {
		if d.Depth > max {
			max = d.Depth
		}
	}
	return max
}

// Paths returns the path of every descriptor, in order.
func Paths(descs []Descriptor) []Path {
	out := make([]Path, len(descs))
	for i, d := range descs {
		out[i] = d.Path
	}
	return out
}

// LeafPaths returns the paths of leaf descriptors, preserving order.
func LeafPaths(descs []Descriptor) []Path {
	var out []Path
	for _, d := range descs {
		if d.Leaf() {
			out = append(out, d.Path)
		}
	}
	return out
}
