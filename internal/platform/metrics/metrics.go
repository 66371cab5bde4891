// Package metrics provides the Prometheus counters for quote selection,
// search and import. They are served on /-/metrics alongside the Go runtime
// collectors.
//
// Usage:
//
//	m := metrics.New(prometheus.DefaultRegisterer)
//	m.RecordSelection(metrics.ModeQuoteOfDay)
//	m.RecordSearchRejected(metrics.ResourceQuote)
//	m.RecordImport(metrics.ResultImported)
//	m.RecordCircuitTransition("quote-service", "closed", "open")
//
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "qod"

// Selection modes.
const (
	ModeRandom     = "random"
	ModeQuoteOfDay = "qod"
)

// Search resources.
const (
	ResourceQuote  = "quote"
	ResourceSource = "source"
)

// Import results.
const (
	ResultImported = "imported"
	ResultFailed   = "failed"
)

// Metrics holds the service counters.
type Metrics struct {
	// QuoteSelections counts quotes served by random or quote-of-the-day selection.
	QuoteSelections *prometheus.CounterVec

	// SearchRejections counts searches rejected for a too-short term.
	SearchRejections *prometheus.CounterVec

	// QuotesImported counts upstream import outcomes per quote.
	QuotesImported *prometheus.CounterVec

	// CircuitTransitions counts downstream circuit breaker state changes.
	CircuitTransitions *prometheus.CounterVec
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		QuoteSelections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "quote_selections_total",
				Help:      "Total number of quotes selected, by selection mode",
			},
			[]string{"mode"},
		),
		SearchRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_rejections_total",
				Help:      "Total number of searches rejected because the term was too short",
			},
			[]string{"resource"},
		),
		QuotesImported: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "quotes_imported_total",
				Help:      "Total number of upstream quote imports, by result",
			},
			[]string{"result"},
		),
		CircuitTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "circuit_transitions_total",
				Help:      "Total number of downstream circuit breaker state changes",
			},
			[]string{"service", "from", "to"},
		),
	}
}

// RecordSelection counts one selected quote.
func (m *Metrics) RecordSelection(mode string) {
	if m == nil {
		return
	}
	m.QuoteSelections.WithLabelValues(mode).Inc()
}

// RecordSearchRejected counts one rejected search.
func (m *Metrics) RecordSearchRejected(resource string) {
	if m == nil {
		return
	}
	m.SearchRejections.WithLabelValues(resource).Inc()
}

// RecordImport counts one import outcome.
func (m *Metrics) RecordImport(result string) {
	if m == nil {
		return
	}
	m.QuotesImported.WithLabelValues(result).Inc()
}

// RecordCircuitTransition counts one circuit breaker state change.
func (m *Metrics) RecordCircuitTransition(service, from, to string) {
	if m == nil {
		return
	}
	m.CircuitTransitions.WithLabelValues(service, from, to).Inc()
}
