package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Transitions(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveTransition("assign", "ok")
	m.ObserveTransition("assign", "ok")
	m.ObserveTransition("resolve", "out_of_range")
	m.AddCivicCoins(10)
	m.AddCivicCoins(10)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Transitions.WithLabelValues("assign", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("resolve", "out_of_range")))
	assert.Equal(t, 20.0, testutil.ToFloat64(m.CivicCoins))
}

func TestMetrics_Handler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveTransition("verify", "ok")
	m.ObserveRequest(http.MethodGet, "/api/reports/all", http.StatusOK, time.Now())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `civicpulse_report_transitions_total{outcome="ok",transition="verify"} 1`)
	assert.Contains(t, body, "civicpulse_http_request_duration_seconds_count")
}
