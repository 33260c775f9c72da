package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// TagName is the struct tag read by FromStruct.
//
//	type Employee struct {
//		Info   EmployeeInfo `xlsx:"Employee"`
//		Salary float64      `xlsx:"Salary,body=default.BODY"`
//		Notes  string       // not exported to the sheet
//	}
//
// The first tag element is the header text. Options are header=<style>,
// body=<style> and kind=<kind>. A tag of "-" skips the field.
const TagName = "xlsx"

// DefaultStyler is implemented by struct types that declare type-level
// default styles for their fields.
type DefaultStyler interface {
	ColumnDefaults() Defaults
}

var (
	timeType          = reflect.TypeOf(time.Time{})
	defaultStylerType = reflect.TypeOf((*DefaultStyler)(nil)).Elem()
)

// Of builds the Type of T from its struct tags.
func Of[T any]() (*Type, error) {
	return FromType(reflect.TypeOf((*T)(nil)).Elem())
}

// FromStruct builds the Type of v from its struct tags. v may be a struct or a
// pointer to one.
func FromStruct(v any) (*Type, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil value", ErrSchema)
	}
	return FromType(reflect.TypeOf(v))
}

// FromType builds a Type from a struct type's tags.
func FromType(rt reflect.Type) (*Type, error) {
	rt = indirectType(rt)
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrSchema, rt)
	}
	return fromStruct(rt, map[reflect.Type]bool{})
}

func fromStruct(rt reflect.Type, visiting map[reflect.Type]bool) (*Type, error) {
	if visiting[rt] {
		return nil, fmt.Errorf("%w: type %s is recursive", ErrSchema, rt)
	}
	visiting[rt] = true
	defer delete(visiting, rt)

	t := &Type{Name: rt.Name(), goType: rt}
	if reflect.PointerTo(rt).Implements(defaultStylerType) {
		t.Defaults = reflect.New(rt).Interface().(DefaultStyler).ColumnDefaults()
	}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		tag, ok := sf.Tag.Lookup(TagName)
		if !ok || tag == "-" {
			continue
		}
		if !sf.IsExported() {
			return nil, fmt.Errorf("%w: field %s.%s is tagged but unexported", ErrSchema, rt.Name(), sf.Name)
		}

		f, kindSet, err := parseTag(sf.Name, tag)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", rt.Name(), sf.Name, err)
		}
		f.index = sf.Index

		ft := indirectType(sf.Type)
		if !kindSet {
			f.Kind = kindOf(ft)
		}
		if ft.Kind() == reflect.Struct && ft != timeType {
			nested, err := fromStruct(ft, visiting)
			if err != nil {
				return nil, err
			}
			if len(nested.Fields) > 0 {
				f.Type = nested
			}
		}
		t.Fields = append(t.Fields, f)
	}
	return t, nil
}

func parseTag(name, tag string) (Field, bool, error) {
	parts := strings.Split(tag, ",")
	f := Field{Name: name, Header: strings.TrimSpace(parts[0])}
	kindSet := false
	for _, opt := range parts[1:] {
		key, value, _ := strings.Cut(strings.TrimSpace(opt), "=")
		switch key {
		case "header":
			f.HeaderStyle = ParseStyleRef(value)
		case "body":
			f.BodyStyle = ParseStyleRef(value)
		case "kind":
			k, ok := ParseKind(value)
			if !ok {
				return Field{}, false, fmt.Errorf("%w: unknown kind %q", ErrSchema, value)
			}
			f.Kind, kindSet = k, true
		case "":
		default:
			return Field{}, false, fmt.Errorf("%w: unknown tag option %q", ErrSchema, key)
		}
	}
	return f, kindSet, nil
}

func kindOf(rt reflect.Type) Kind {
	if rt == timeType {
		return KindTime
	}
	switch rt.Kind() {
	case reflect.String:
		return KindString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return KindInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return KindUint
	case reflect.Float32, reflect.Float64:
		return KindFloat
	case reflect.Bool:
		return KindBool
	case reflect.Slice, reflect.Array:
		if rt.Elem().Kind() == reflect.Uint8 {
			return KindString
		}
		return KindList
	case reflect.Struct:
		return KindStruct
	}
	return KindOther
}

func indirectType(rt reflect.Type) reflect.Type {
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt
}
