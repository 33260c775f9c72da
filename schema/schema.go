// Package schema describes record types for spreadsheet export and resolves
// them into an ordered list of field descriptors.
//
// A Type is a tree: every Field either carries a nested Type with annotated
// fields of its own (an internal node, rendered only as a grouping header) or
// it is a leaf that contributes one data column. Types can be written by hand,
// read from Go struct tags (FromStruct, Of) or decoded from YAML (ParseYAML).
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrSchema is returned when a type cannot produce any renderable column
	// or is otherwise malformed.
	ErrSchema = errors.New("schema: invalid record type")
	// ErrFieldAccess is returned when a field path cannot be read from a record.
	ErrFieldAccess = errors.New("schema: field access failed")
)

// Kind is the runtime type tag of a field.
type Kind int

const (
	KindOther Kind = iota
	KindString
	KindInt
	KindUint
	KindFloat
	KindBool
	KindTime
	KindList
	KindStruct
)

var kindNames = map[Kind]string{
	KindOther:  "other",
	KindString: "string",
	KindInt:    "int",
	KindUint:   "uint",
	KindFloat:  "float",
	KindBool:   "bool",
	KindTime:   "time",
	KindList:   "list",
	KindStruct: "struct",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a kind name back to a Kind. Unknown names yield KindOther.
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	switch s {
	case "text":
		return KindString, true
	case "integer":
		return KindInt, true
	case "decimal", "number":
		return KindFloat, true
	case "date", "datetime":
		return KindTime, true
	case "array", "slice":
		return KindList, true
	}
	return KindOther, false
}

// Numeric reports whether values of this kind render as numeric cells.
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindUint || k == KindFloat
}

// StyleRef names a declared style policy. The zero value means no style.
//
// With an empty Set, Name refers to a single registered style. Otherwise Name
// is a constant of the named style set.
type StyleRef struct {
	Set  string
	Name string
}

// ParseStyleRef parses "Name" or "Set.Name".
func ParseStyleRef(s string) StyleRef {
	s = strings.TrimSpace(s)
	if s == "" {
		return StyleRef{}
	}
	if i := strings.LastIndexByte(s, '.'); i > 0 {
		return StyleRef{Set: s[:i], Name: s[i+1:]}
	}
	return StyleRef{Name: s}
}

// IsZero reports whether the ref declares no style.
func (r StyleRef) IsZero() bool {
	return r.Set == "" && r.Name == ""
}

func (r StyleRef) String() string {
	if r.Set == "" {
		return r.Name
	}
	return r.Set + "." + r.Name
}

// Defaults are the type-level styles used when a field declares none.
type Defaults struct {
	Header StyleRef
	Body   StyleRef
}

// Type describes a record type.
type Type struct {
	Name     string
	Fields   []Field
	Defaults Defaults

	goType reflect.Type
}

// GoType returns the struct type t was read from, or nil for types that were
// built by hand or decoded from YAML.
func (t *Type) GoType() reflect.Type { return t.goType }

// Field is one annotated field of a Type.
type Field struct {
	// Name is the declared field name, used as the path segment.
	Name string
	// Header is the display name. Defaults to Name.
	Header string
	Kind   Kind
	// Type is set for nested record fields.
	Type        *Type
	HeaderStyle StyleRef
	BodyStyle   StyleRef

	index []int
}

// HeaderName returns the header text for the field.
func (f Field) HeaderName() string {
	if f.Header != "" {
		return f.Header
	}
	return f.Name
}

// PathSeparator joins field names in a Path.
const PathSeparator = "."

// Path is the dotted sequence of field names from the root type.
type Path string

// Join appends a field name to the path.
func (p Path) Join(name string) Path {
	if p == "" {
		return Path(name)
	}
	return p + PathSeparator + Path(name)
}

// Segments splits the path into field names.
func (p Path) Segments() []string {
	if p == "" {
		return nil
	}
	return strings.Split(string(p), PathSeparator)
}

func (p Path) String() string { return string(p) }
