package style

import "github.com/aerissecure/export/schema"

// Number format codes.
const (
	FormatGeneral  = "General"
	FormatText     = "@"
	FormatInteger  = "#,##0"
	FormatDecimal  = "#,##0.00"
	FormatDateTime = "yyyy-mm-dd hh:mm:ss"
)

// Decider picks the number format of body cells from the field kind.
type Decider interface {
	Format(kind schema.Kind) string
}

// DeciderFunc adapts a function to the Decider interface.
type DeciderFunc func(kind schema.Kind) string

func (f DeciderFunc) Format(kind schema.Kind) string { return f(kind) }

// DefaultDecider formats integers with thousands separators, decimals with
// two places and times as date-times. Everything else is General.
var DefaultDecider Decider = DeciderFunc(defaultFormat)

func defaultFormat(kind schema.Kind) string {
	switch kind {
	case schema.KindInt, schema.KindUint:
		return FormatInteger
	case schema.KindFloat:
		return FormatDecimal
	case schema.KindTime:
		return FormatDateTime
	}
	return FormatGeneral
}
