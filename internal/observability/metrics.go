// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Draft metrics
	BidsAccepted  prometheus.Counter
	BidsRejected  *prometheus.CounterVec
	LotsClosed    *prometheus.CounterVec
	AuctionsMoved *prometheus.CounterVec

	// Event pipeline metrics
	EventsPersisted     *prometheus.CounterVec
	EventsPublished     *prometheus.CounterVec
	EventPersistErrors  prometheus.Counter
	SubscriberPanics    prometheus.Counter
	ActiveStreamClients prometheus.Gauge

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "wins_pool"
	}

	return &Metrics{
		// Draft metrics
		BidsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "draft",
			Name:      "bids_accepted_total",
			Help:      "Total number of accepted bids",
		}),
		BidsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "draft",
			Name:      "bids_rejected_total",
			Help:      "Total number of rejected bids by reason",
		}, []string{"reason"}),
		LotsClosed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "draft",
			Name:      "lots_closed_total",
			Help:      "Total number of closed lots by outcome",
		}, []string{"outcome"}),
		AuctionsMoved: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "draft",
			Name:      "auction_transitions_total",
			Help:      "Total number of auction status transitions",
		}, []string{"to"}),

		// Event pipeline metrics
		EventsPersisted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "persisted_total",
			Help:      "Total number of events appended to the durable log",
		}, []string{"type"}),
		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Total number of events published to the broker",
		}, []string{"type"}),
		EventPersistErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "persist_errors_total",
			Help:      "Total number of event log append failures",
		}),
		SubscriberPanics: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "subscriber_panics_total",
			Help:      "Total number of recovered subscriber panics",
		}),
		ActiveStreamClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "active_stream_clients",
			Help:      "Current number of connected websocket stream clients",
		}),

		// HTTP metrics
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		}, []string{"route", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordBidAccepted increments the accepted bid counter.
func RecordBidAccepted() {
	DefaultMetrics.BidsAccepted.Inc()
}

// RecordBidRejected records a rejected bid with the rejection reason.
func RecordBidRejected(reason string) {
	DefaultMetrics.BidsRejected.WithLabelValues(reason).Inc()
}

// RecordLotClosed records a lot close by outcome ("won" or "unsold").
func RecordLotClosed(outcome string) {
	DefaultMetrics.LotsClosed.WithLabelValues(outcome).Inc()
}

// RecordAuctionTransition records an auction status transition.
func RecordAuctionTransition(to string) {
	DefaultMetrics.AuctionsMoved.WithLabelValues(to).Inc()
}

// RecordEventPersisted increments the persisted event counter.
func RecordEventPersisted(eventType string) {
	DefaultMetrics.EventsPersisted.WithLabelValues(eventType).Inc()
}

// RecordEventPublished increments the published event counter.
func RecordEventPublished(eventType string) {
	DefaultMetrics.EventsPublished.WithLabelValues(eventType).Inc()
}

// RecordEventPersistError increments the event log failure counter.
func RecordEventPersistError() {
	DefaultMetrics.EventPersistErrors.Inc()
}

// RecordSubscriberPanic increments the recovered panic counter.
func RecordSubscriberPanic() {
	DefaultMetrics.SubscriberPanics.Inc()
}

// StreamClientConnected increments the stream client gauge.
func StreamClientConnected() {
	DefaultMetrics.ActiveStreamClients.Inc()
}

// StreamClientDisconnected decrements the stream client gauge.
func StreamClientDisconnected() {
	DefaultMetrics.ActiveStreamClients.Dec()
}

// RecordHTTPRequest records a served request.
func RecordHTTPRequest(route, status string, seconds float64) {
	DefaultMetrics.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(route).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(operation).Inc()
	}
}
