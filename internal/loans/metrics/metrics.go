package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loansCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loans_created_total",
		Help: "Loans successfully created",
	})
	loansFreed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loans_freed_total",
		Help: "Return events published",
	})
	intakeRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loans_intake_rejected_total",
		Help: "Loan requests rejected because the user or book does not exist",
	})
)

// Metrics exposes Loans service counters. Registration happens once at
// package init, so constructing Metrics repeatedly (as tests do) is safe.
type Metrics struct{}

func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) LoanCreated() {
	loansCreated.Inc()
}

func (m *Metrics) LoanFreed() {
	loansFreed.Inc()
}

func (m *Metrics) IntakeRejected() {
	intakeRejected.Inc()
}
