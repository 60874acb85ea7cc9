package metrics

import (
	"net/http"
	"time"

	obserrors "github.com/piragi/knowledge-shell/internal/observability/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeProceed   = "proceed"
	OutcomeRedirect  = "redirect"
	OutcomeFail      = "fail"
	OutcomeAbandoned = "abandoned"
)

// GateMetric captures one settled gate activation for metric emission.
type GateMetric struct {
	Outcome  string
	Duration time.Duration
	Err      error
}

// Sink receives gate metrics. Implementations must be safe for concurrent use.
type Sink interface {
	RecordGate(in GateMetric)
}

// NopSink discards everything.
type NopSink struct{}

// RecordGate implements Sink.
func (NopSink) RecordGate(GateMetric) {}

// PrometheusConfig configures the Prometheus sink.
type PrometheusConfig struct {
	Namespace string
	// IncludeRuntime registers Go and process collectors.
	IncludeRuntime bool
}

// Prometheus is a Sink backed by a private Prometheus registry.
type Prometheus struct {
	registry *prometheus.Registry
	outcomes *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var _ Sink = (*Prometheus)(nil)

// NewPrometheus builds the gate collectors and registers them on a fresh registry.
func NewPrometheus(cfg PrometheusConfig) *Prometheus {
	reg := prometheus.NewRegistry()
	if cfg.IncludeRuntime {
		reg.MustRegister(collectors.NewGoCollector())
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: "gate",
		Name:      "outcomes_total",
		Help:      "Settled gate activations by outcome.",
	}, []string{"outcome", "error_class"})

	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Subsystem: "gate",
		Name:      "resolve_duration_seconds",
		Help:      "Time spent resolving the session for a gate activation.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"outcome"})

	reg.MustRegister(outcomes, latency)

	return &Prometheus{registry: reg, outcomes: outcomes, latency: latency}
}

// RecordGate implements Sink.
func (p *Prometheus) RecordGate(in GateMetric) {
	if p == nil || in.Outcome == "" {
		return
	}

	class := ""
	if in.Err != nil && in.Outcome != OutcomeProceed {
		class = obserrors.Classify(in.Err)
	}

	p.outcomes.WithLabelValues(in.Outcome, class).Inc()
	if in.Duration > 0 {
		p.latency.WithLabelValues(in.Outcome).Observe(in.Duration.Seconds())
	}
}

// Registry exposes the underlying registry for tests and extra collectors.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}
