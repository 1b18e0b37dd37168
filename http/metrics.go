package http

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wesleyorama2/mapsmith/mapper"
)

// MetricsCollector records gateway calls as Prometheus metrics. A nil
// collector records nothing. It is safe for concurrent use.
type MetricsCollector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec
	errorsTotal      *prometheus.CounterVec
}

// NewMetricsCollector creates a collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using the supplied
// registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "mapsmith_gateway_requests_total",
				Help: "Total number of requests executed by the HTTP gateway",
			},
			[]string{"method", "host", "status_code"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mapsmith_gateway_request_duration_seconds",
				Help:    "Duration of gateway requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "host"},
		),
		requestsInFlight: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mapsmith_gateway_requests_in_flight",
				Help: "Number of gateway requests currently in flight",
			},
			[]string{"method", "host"},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "mapsmith_gateway_errors_total",
				Help: "Total number of gateway calls that produced no response",
			},
			[]string{"method", "host", "stage"},
		),
	}
}

func (m *MetricsCollector) inFlight(req *mapper.Request) func() {
	if m == nil {
		return func() {}
	}
	gauge := m.requestsInFlight.WithLabelValues(req.Method(), req.Host())
	gauge.Inc()
	return gauge.Dec
}

func (m *MetricsCollector) recordResponse(req *mapper.Request, resp *Response) {
	if m == nil {
		return
	}
	status := strconv.Itoa(resp.StatusCode)
	m.requestsTotal.WithLabelValues(req.Method(), req.Host(), status).Inc()
	m.requestDuration.WithLabelValues(req.Method(), req.Host()).Observe(resp.ResponseTime.Seconds())
}

func (m *MetricsCollector) recordError(req *mapper.Request, stage string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(req.Method(), req.Host(), stage).Inc()
}
