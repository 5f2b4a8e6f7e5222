package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Metrics groups the collectors exported by the service.
type Metrics struct {
	// Requests counts HTTP requests by route and status code.
	Requests *prometheus.CounterVec
	// LatencyMS observes HTTP latency by route.
	LatencyMS *prometheus.HistogramVec
	// OrdersCreated counts orders placed through checkout.
	OrdersCreated prometheus.Counter
	// StatusTransitions counts appended tracking updates by status and source.
	StatusTransitions *prometheus.CounterVec
	// PersistenceFailures counts failed writes of the order collection.
	PersistenceFailures prometheus.Counter
	// StagesDropped counts scheduled lifecycle stages that did not apply, by reason.
	StagesDropped *prometheus.CounterVec
	// PendingLifecycles is the number of orders with outstanding lifecycle stages.
	PendingLifecycles prometheus.Gauge
	// EventsPublished counts tracking events by sink and outcome.
	EventsPublished *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"route"}),
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Total number of orders created.",
		}),
		StatusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "status_transitions_total",
			Help:      "Tracking updates appended, by status and source.",
		}, []string{"status", "source"}),
		PersistenceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "persistence_failures_total",
			Help:      "Failed writes of the order collection to the cache.",
		}),
		StagesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "stages_dropped_total",
			Help:      "Scheduled lifecycle stages that were not applied, by reason.",
		}, []string{"reason"}),
		PendingLifecycles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "pending_orders",
			Help:      "Orders with outstanding lifecycle stages.",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Tracking events handed to sinks, by sink and outcome.",
		}, []string{"sink", "outcome"}),
	}

	reg.MustRegister(
		m.Requests,
		m.LatencyMS,
		m.OrdersCreated,
		m.StatusTransitions,
		m.PersistenceFailures,
		m.StagesDropped,
		m.PendingLifecycles,
		m.EventsPublished,
	)
	return m
}

// NewUnregistered creates collectors bound to a private registry, for tests
// and for components built without a metrics endpoint.
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry())
}

// Handler exposes the collectors gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
