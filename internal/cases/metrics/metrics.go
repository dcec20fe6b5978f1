package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for case administration.
type Metrics struct {
	CasesCreated     prometheus.Counter
	CommandsExecuted *prometheus.CounterVec
	CommandsRejected *prometheus.CounterVec
	DispatchLatency  prometheus.Histogram
}

// New creates and registers all case metrics.
func New() *Metrics {
	return &Metrics{
		CasesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_cases_created_total",
			Help: "Total case creation commands accepted",
		}),
		CommandsExecuted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_case_commands_executed_total",
			Help: "Total case commands dispatched successfully, by action",
		}, []string{"action"}),
		CommandsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_case_commands_rejected_total",
			Help: "Total case commands rejected, by error code",
		}, []string{"code"}),
		DispatchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "portfolio_case_dispatch_duration_seconds",
			Help:    "Duration of the check-then-dispatch sequence",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementCreated records an accepted case creation.
func (m *Metrics) IncrementCreated() {
	if m != nil {
		m.CasesCreated.Inc()
	}
}

// IncrementExecuted records a successfully dispatched command.
func (m *Metrics) IncrementExecuted(action string) {
	if m != nil {
		m.CommandsExecuted.WithLabelValues(action).Inc()
	}
}

// IncrementRejected records a rejected command by error code.
func (m *Metrics) IncrementRejected(code string) {
	if m != nil {
		m.CommandsRejected.WithLabelValues(code).Inc()
	}
}

// ObserveDispatch records the duration of a full executeCommand call.
func (m *Metrics) ObserveDispatch(d time.Duration) {
	if m != nil {
		m.DispatchLatency.Observe(d.Seconds())
	}
}
