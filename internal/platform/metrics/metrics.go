package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los collectors del servicio. Usa su propio registry para que
// los tests puedan crear instancias sin chocar con el registry global.
type Metrics struct {
	registry *prometheus.Registry

	RequestCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	TokenVerifications *prometheus.CounterVec
	PaymentsRecorded   prometheus.Counter
	InvoicesPaid       prometheus.Counter
	ReportRefreshes    *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		TokenVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "token_verifications_total",
			Help:      "Token verifications by token class and outcome",
		}, []string{"class", "outcome"}),
		PaymentsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "payments_recorded_total",
			Help:      "Payments appended to invoices",
		}),
		InvoicesPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "invoices_paid_total",
			Help:      "Invoices transitioned to paid by reconciliation",
		}),
		ReportRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reports",
			Name:      "refreshes_total",
			Help:      "Report aggregate refreshes by outcome",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		m.RequestCount,
		m.RequestDuration,
		m.TokenVerifications,
		m.PaymentsRecorded,
		m.InvoicesPaid,
		m.ReportRefreshes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler expone /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry expone el registry (tests / collectors extra).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveToken(class string, ok bool) {
	if m == nil {
		return
	}
	outcome := "rejected"
	if ok {
		outcome = "accepted"
	}
	m.TokenVerifications.WithLabelValues(class, outcome).Inc()
}

func (m *Metrics) ObservePayment(transitionedToPaid bool) {
	if m == nil {
		return
	}
	m.PaymentsRecorded.Inc()
	if transitionedToPaid {
		m.InvoicesPaid.Inc()
	}
}

func (m *Metrics) ObserveRefresh(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ReportRefreshes.WithLabelValues(outcome).Inc()
}
