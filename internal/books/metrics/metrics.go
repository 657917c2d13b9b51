package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "books_loan_events_applied_total",
		Help: "Loan events successfully applied to book availability",
	})
	eventsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "books_loan_events_failed_total",
		Help: "Loan events that failed to parse or apply",
	})
)

// Metrics exposes Books service counters. Registration happens once at
// package init, so constructing Metrics repeatedly (as tests do) is safe.
type Metrics struct{}

func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) EventApplied() {
	eventsApplied.Inc()
}

func (m *Metrics) EventFailed() {
	eventsFailed.Inc()
}
