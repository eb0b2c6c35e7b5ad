package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	domain "github.com/oshokin/app-version/internal/domain/version"
)

const metricsNamespace = "app_version"

// Metrics holds the collectors of one server, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	events   *prometheus.CounterVec
	numbers  *prometheus.GaugeVec
}

// NewMetrics creates and registers the collectors, including Go runtime and process metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "grpc",
				Name:      "requests_total",
				Help:      "Handled gRPC requests by method and status code",
			},
			[]string{"method", "code"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "grpc",
				Name:      "request_duration_seconds",
				Help:      "Duration of gRPC requests by method",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"method"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "events_total",
				Help:      "Version events fired by the server",
			},
			[]string{"event"},
		),
		numbers: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "current",
				Help:      "Current version numbers by part",
			},
			[]string{"part"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.latency,
		m.events,
		m.numbers,
	)

	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one handled request.
func (m *Metrics) ObserveRequest(method, code string, elapsed time.Duration) {
	m.requests.WithLabelValues(method, code).Inc()
	m.latency.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveEvent counts a fired version event. It can be subscribed as a listener.
func (m *Metrics) ObserveEvent(_ context.Context, event domain.Event) {
	m.events.WithLabelValues(event.Short()).Inc()
}

// SetVersion publishes the current version numbers.
func (m *Metrics) SetVersion(major, minor, patch int) {
	m.numbers.WithLabelValues("major").Set(float64(major))
	m.numbers.WithLabelValues("minor").Set(float64(minor))
	m.numbers.WithLabelValues("patch").Set(float64(patch))
}

// UnaryServerInterceptor records every unary call.
func (m *Metrics) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		started := time.Now()

		resp, err := handler(ctx, req)

		m.ObserveRequest(info.FullMethod, status.Code(err).String(), time.Since(started))

		return resp, err
	}
}
