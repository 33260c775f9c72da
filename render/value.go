package render

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/aerissecure/export/style"
)

var timeType = reflect.TypeOf(time.Time{})

// writeValue writes v with the cell type its runtime type calls for.
func writeValue(s Sheet, row, col int, v any, h style.Handle, sep string) {
	rv, ok := indirect(v)
	if !ok {
		s.SetString(row, col, "", h)
		return
	}

	if rv.Type() == timeType {
		s.SetTime(row, col, rv.Interface().(time.Time), h)
		return
	}

	// Named scalar types with a String method, such as time.Duration, render
	// as their text rather than their underlying number.
	if rv.Type().PkgPath() != "" && rv.Kind() != reflect.Struct {
		if st, ok := rv.Interface().(fmt.Stringer); ok {
			s.SetString(row, col, st.String(), h)
			return
		}
	}

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		s.SetNumber(row, col, float64(rv.Int()), h)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		s.SetNumber(row, col, float64(rv.Uint()), h)
	case reflect.Float32, reflect.Float64:
		s.SetNumber(row, col, rv.Float(), h)
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			s.SetString(row, col, string(bytesOf(rv)), h)
			return
		}
		s.SetString(row, col, joinList(rv, sep), h)
	default:
		s.SetString(row, col, fmt.Sprint(rv.Interface()), h)
	}
}

// joinList renders every element of a slice or array and joins them with sep.
// Nil elements render as empty strings.
func joinList(rv reflect.Value, sep string) string {
	parts := make([]string, rv.Len())
	for i := range parts {
		ev, ok := indirect(rv.Index(i).Interface())
		if !ok {
			continue
		}
		if ev.Type() == timeType {
			parts[i] = ev.Interface().(time.Time).Format(time.RFC3339)
			continue
		}
		parts[i] = fmt.Sprint(ev.Interface())
	}
	return strings.Join(parts, sep)
}

// indirect follows pointers and interfaces. It reports false for nil.
func indirect(v any) (reflect.Value, bool) {
	if v == nil {
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	return rv, true
}

func bytesOf(rv reflect.Value) []byte {
	if rv.Kind() == reflect.Slice {
		return rv.Bytes()
	}
	b := make([]byte, rv.Len())
	reflect.Copy(reflect.ValueOf(b), rv)
	return b
}
