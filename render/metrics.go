package render

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts rendering activity. A nil *Metrics records nothing.
type Metrics struct {
	rowsRendered  prometheus.Counter
	sheetsCreated *prometheus.CounterVec
	failures      *prometheus.CounterVec
}

// NewMetrics creates the export metrics and registers them with registerer,
// or with the default registerer when it is nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	rowsRendered := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "export_rows_rendered_total",
			Help: "Total body rows written to worksheets.",
		},
	)

	sheetsCreated := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "export_sheets_created_total",
			Help: "Total worksheets created.",
		},
		[]string{"mode"}, // multi | single
	)

	failures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "export_render_failures_total",
			Help: "Total renders aborted by an error.",
		},
		[]string{"reason"}, // capacity | field_access | engine | canceled
	)

	registerer.MustRegister(rowsRendered, sheetsCreated, failures)

	return &Metrics{
		rowsRendered:  rowsRendered,
		sheetsCreated: sheetsCreated,
		failures:      failures,
	}
}

func (m *Metrics) addRows(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsRendered.Add(float64(n))
}

func (m *Metrics) incSheets(mode Mode) {
	if m == nil {
		return
	}
	m.sheetsCreated.WithLabelValues(mode.String()).Inc()
}

func (m *Metrics) incFailure(reason string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(reason).Inc()
}
