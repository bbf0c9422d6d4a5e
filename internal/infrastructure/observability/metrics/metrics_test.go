package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRender(t *testing.T) {
	m := New()
	m.ObserveRender("student", OutcomeRendered)
	m.ObserveRender("student", OutcomeRendered)
	m.ObserveRender("course", OutcomeEmpty)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Renders.WithLabelValues("student", OutcomeRendered)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Renders.WithLabelValues("course", OutcomeEmpty)))
}

func TestObserveGraphRequestSkipsLatencyForCacheHits(t *testing.T) {
	m := New()
	m.ObserveGraphRequest("student", "cached", time.Second)
	m.ObserveGraphRequest("student", "data", 20*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GraphRequests.WithLabelValues("student", "cached")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.GraphLatency))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRender("student", OutcomeRendered)
		m.ObserveGraphRequest("course", "data", time.Millisecond)
		m.ObservePreferenceWrite("x", "success")
	})
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveRender("activity", OutcomeRendered)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `ace_block_renders_total{mode="activity",outcome="rendered"} 1`))
}
