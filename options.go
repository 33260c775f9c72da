package export

import (
	"go.uber.org/zap"

	"github.com/aerissecure/export/render"
	"github.com/aerissecure/export/style"
)

type options struct {
	cfg      render.Config
	registry *style.Registry
	decider  style.Decider
	log      *zap.Logger
	metrics  *render.Metrics
}

func defaultOptions() options {
	return options{
		cfg: render.DefaultConfig(),
		log: zap.NewNop(),
	}
}

// Option configures a File.
type Option func(*options)

// WithConfig replaces the whole render configuration. Options applied after
// it still take effect.
func WithConfig(cfg render.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithSheetName sets the base sheet name. Empty names are ignored.
func WithSheetName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.cfg.SheetName = name
		}
	}
}

// WithMode chooses between continuing on new sheets and refusing input that
// does not fit on one.
func WithMode(m render.Mode) Option {
	return func(o *options) { o.cfg.Mode = m }
}

// WithRowCeiling sets the row index at which a sheet counts as full.
func WithRowCeiling(n int) Option {
	return func(o *options) { o.cfg.RowCeiling = n }
}

// WithListSeparator sets the separator placed between list elements. Empty
// separators are ignored.
func WithListSeparator(sep string) Option {
	return func(o *options) {
		if sep != "" {
			o.cfg.ListSeparator = sep
		}
	}
}

// WithAutoSizePadding sets the characters added to every fitted column.
func WithAutoSizePadding(chars float64) Option {
	return func(o *options) {
		if chars == 0 {
			chars = render.NoPadding
		}
		o.cfg.AutoSizePadding = chars
	}
}

// WithOrigin places the header's top-left corner at a 0-based row and column.
func WithOrigin(row, col int) Option {
	return func(o *options) { o.cfg.Origin = render.Origin{Row: row, Column: col} }
}

// WithRegistry resolves style names against reg.
func WithRegistry(reg *style.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithDecider chooses body number formats with dec.
func WithDecider(dec style.Decider) Option {
	return func(o *options) { o.decider = dec }
}

func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

func WithMetrics(m *render.Metrics) Option {
	return func(o *options) { o.metrics = m }
}
