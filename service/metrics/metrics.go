package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the application.
// Following the explicit dependency injection pattern, this struct
// is passed to all components that need to record metrics.
type Metrics struct {
	// Sonic RPC metrics
	rpcCallsTotal    *prometheus.CounterVec
	rpcCallDuration  *prometheus.HistogramVec
	rpcFallbackTotal *prometheus.CounterVec

	// DEX API metrics
	dexCallsTotal      *prometheus.CounterVec
	dexCallDuration    *prometheus.HistogramVec
	dexRetriesTotal    *prometheus.CounterVec
	dexFallbacksServed *prometheus.CounterVec

	// Intent classification metrics
	intentsClassifiedTotal *prometheus.CounterVec

	// Transfer metrics
	transfersTotal *prometheus.CounterVec

	// LLM metrics
	completionsTotal   *prometheus.CounterVec
	completionDuration *prometheus.HistogramVec

	// HTTP metrics
	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec

	// NATS metrics
	natsMessagesPublished *prometheus.CounterVec
	natsPublishDuration   *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		rpcCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sonic_rpc_calls_total",
				Help: "Total number of Sonic RPC calls by method and status",
			},
			[]string{"method", "status", "endpoint"},
		),
		rpcCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sonic_rpc_call_duration_seconds",
				Help:    "Duration of Sonic RPC calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "endpoint"},
		),
		rpcFallbackTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sonic_rpc_fallback_total",
				Help: "Total number of times the fallback RPC endpoint was used",
			},
			[]string{"method"},
		),

		dexCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dex_api_calls_total",
				Help: "Total number of DEX API calls by operation and status",
			},
			[]string{"operation", "status"},
		),
		dexCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dex_api_call_duration_seconds",
				Help:    "Duration of DEX API calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 15.0},
			},
			[]string{"operation"},
		),
		dexRetriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dex_api_retries_total",
				Help: "Total number of DEX API retry attempts",
			},
			[]string{"operation", "reason"},
		),
		dexFallbacksServed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dex_api_fallbacks_served_total",
				Help: "Total number of built-in fallback responses served after upstream failure",
			},
			[]string{"operation"},
		),

		intentsClassifiedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intents_classified_total",
				Help: "Total number of chat messages classified by intent kind",
			},
			[]string{"intent", "surface"},
		),

		transfersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transfers_total",
				Help: "Total number of transfer attempts by outcome",
			},
			[]string{"network", "status"},
		),

		completionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_completions_total",
				Help: "Total number of LLM completion calls by mode and status",
			},
			[]string{"mode", "status"},
		),
		completionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "llm_completion_duration_seconds",
				Help:    "Duration of LLM completion calls in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"mode"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"handler", "method", "status"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"handler", "method", "status"},
		),

		natsMessagesPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nats_messages_published_total",
				Help: "Total number of NATS messages published",
			},
			[]string{"subject", "status"},
		),
		natsPublishDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nats_publish_duration_seconds",
				Help:    "Duration of NATS publish operations in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"subject"},
		),
	}
}

// All record methods tolerate a nil receiver so callers don't have to
// guard every call site when metrics are disabled.

// RecordRPCCall records a Sonic RPC call with duration.
func (m *Metrics) RecordRPCCall(method, status, endpoint string, duration float64) {
	if m == nil {
		return
	}
	m.rpcCallsTotal.WithLabelValues(method, status, endpoint).Inc()
	m.rpcCallDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordRPCFallback records a balance read served by the fallback endpoint.
func (m *Metrics) RecordRPCFallback(method string) {
	if m == nil {
		return
	}
	m.rpcFallbackTotal.WithLabelValues(method).Inc()
}

// RecordDexCall records a DEX API call with duration.
func (m *Metrics) RecordDexCall(operation, status string, duration float64) {
	if m == nil {
		return
	}
	m.dexCallsTotal.WithLabelValues(operation, status).Inc()
	m.dexCallDuration.WithLabelValues(operation).Observe(duration)
}

// RecordDexRetry records a DEX API retry attempt.
func (m *Metrics) RecordDexRetry(operation, reason string) {
	if m == nil {
		return
	}
	m.dexRetriesTotal.WithLabelValues(operation, reason).Inc()
}

// RecordDexFallback records a built-in fallback response being served.
func (m *Metrics) RecordDexFallback(operation string) {
	if m == nil {
		return
	}
	m.dexFallbacksServed.WithLabelValues(operation).Inc()
}

// RecordIntent records a classified intent.
func (m *Metrics) RecordIntent(intent, surface string) {
	if m == nil {
		return
	}
	m.intentsClassifiedTotal.WithLabelValues(intent, surface).Inc()
}

// RecordTransfer records a transfer attempt outcome.
func (m *Metrics) RecordTransfer(network, status string) {
	if m == nil {
		return
	}
	m.transfersTotal.WithLabelValues(network, status).Inc()
}

// RecordCompletion records an LLM completion call.
func (m *Metrics) RecordCompletion(mode, status string, duration float64) {
	if m == nil {
		return
	}
	m.completionsTotal.WithLabelValues(mode, status).Inc()
	m.completionDuration.WithLabelValues(mode).Observe(duration)
}

// RecordHTTPRequest records an HTTP request with duration.
func (m *Metrics) RecordHTTPRequest(handler, method string, statusCode int, duration float64) {
	if m == nil {
		return
	}
	status := statusCodeToString(statusCode)
	m.httpRequestDuration.WithLabelValues(handler, method, status).Observe(duration)
	m.httpRequestsTotal.WithLabelValues(handler, method, status).Inc()
}

// RecordNATSPublish records a NATS publish operation.
func (m *Metrics) RecordNATSPublish(subject, status string, duration float64) {
	if m == nil {
		return
	}
	m.natsMessagesPublished.WithLabelValues(subject, status).Inc()
	m.natsPublishDuration.WithLabelValues(subject).Observe(duration)
}

// statusCodeToString groups status codes by class for low-cardinality labels.
func statusCodeToString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return fmt.Sprintf("%d", code)
	}
}
