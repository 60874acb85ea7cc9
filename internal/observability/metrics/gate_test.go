package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_RecordGate(t *testing.T) {
	p := NewPrometheus(PrometheusConfig{Namespace: "piragi"})

	p.RecordGate(GateMetric{Outcome: OutcomeProceed, Duration: 20 * time.Millisecond})
	p.RecordGate(GateMetric{Outcome: OutcomeProceed, Duration: 10 * time.Millisecond})
	p.RecordGate(GateMetric{Outcome: OutcomeFail, Err: context.DeadlineExceeded})
	p.RecordGate(GateMetric{}) // ignored

	assert.InDelta(t, 2, testutil.ToFloat64(p.outcomes.WithLabelValues(OutcomeProceed, "")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(p.outcomes.WithLabelValues(OutcomeFail, "timeout")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(p.latency))
}

func TestPrometheus_Handler(t *testing.T) {
	p := NewPrometheus(PrometheusConfig{Namespace: "piragi"})
	p.RecordGate(GateMetric{Outcome: OutcomeRedirect})

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `piragi_gate_outcomes_total{error_class="",outcome="redirect"} 1`), body)
}

func TestNilAndNopSinks(t *testing.T) {
	var p *Prometheus
	assert.NotPanics(t, func() { p.RecordGate(GateMetric{Outcome: OutcomeFail}) })
	assert.NotPanics(t, func() { NopSink{}.RecordGate(GateMetric{Outcome: OutcomeFail}) })
}
