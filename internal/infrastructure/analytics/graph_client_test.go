package analytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtRiskMedia/ace-block/internal/infrastructure/caching/stores"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/metrics"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/performance"
)

type recorded struct {
	path  string
	query string
}

func newServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newClient(baseURL string, cache *stores.GraphStore, m *metrics.Metrics) *GraphClient {
	logger := logging.NewDiscardLogger()
	return NewGraphClient(baseURL, time.Second, cache, m, performance.NewTracker(nil, logger), logger)
}

func TestGraphClient_RequestShapes(t *testing.T) {
	var last recorded
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		last = recorded{path: r.URL.Path, query: r.URL.RawQuery}
		_, _ = w.Write([]byte("<div>graph</div>"))
	})
	client := newClient(srv.URL+"/", nil, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		call  func() (string, error)
		path  string
		query string
	}{
		{"student", func() (string, error) { return client.StudentGraph(ctx, 5, 42, false) }, "/graphs/student", "courseid=42&showall=false&userid=5"},
		{"course", func() (string, error) { return client.CourseGraph(ctx, 42) }, "/graphs/course", "courseid=42"},
		{"studentfull", func() (string, error) { return client.StudentFullGraph(ctx, 5, 42) }, "/graphs/studentfull", "courseid=42&userid=5"},
		{"teachercourse", func() (string, error) { return client.TeacherCourseGraph(ctx, 7) }, "/graphs/teachercourse", "userid=7"},
		{"activity", func() (string, error) { return client.ActivityEngagementGraph(ctx, 9) }, "/graphs/activity", "cmid=9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := tt.call()
			require.NoError(t, err)
			assert.Equal(t, "<div>graph</div>", body)
			assert.Equal(t, tt.path, last.path)
			assert.Equal(t, tt.query, last.query)
		})
	}
}

func TestGraphClient_NoData(t *testing.T) {
	t.Run("no content", func(t *testing.T) {
		srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		body, err := newClient(srv.URL, nil, nil).CourseGraph(context.Background(), 42)
		require.NoError(t, err)
		assert.Empty(t, body)
	})

	t.Run("blank body", func(t *testing.T) {
		srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("  \n"))
		})
		body, err := newClient(srv.URL, nil, nil).CourseGraph(context.Background(), 42)
		require.NoError(t, err)
		assert.Empty(t, body)
	})
}

func TestGraphClient_ErrorStatus(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	m := metrics.New()

	_, err := newClient(srv.URL, nil, m).ActivityEngagementGraph(context.Background(), 9)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GraphRequests.WithLabelValues("activity", ResultError)))
}

func TestGraphClient_CachesResponses(t *testing.T) {
	srv, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("courseid") == "1" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte("<svg/>"))
	})
	m := metrics.New()
	client := newClient(srv.URL, stores.NewGraphStore(time.Minute), m)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		body, err := client.CourseGraph(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, "<svg/>", body)
	}
	assert.Equal(t, int32(1), calls.Load())

	for i := 0; i < 2; i++ {
		body, err := client.CourseGraph(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, body)
	}
	assert.Equal(t, int32(2), calls.Load(), "empty results are cached too")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GraphRequests.WithLabelValues("course", ResultData)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GraphRequests.WithLabelValues("course", ResultNoData)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.GraphRequests.WithLabelValues("course", ResultCached)))
}

func TestGraphClient_RespectsContext(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newClient(srv.URL, nil, nil).CourseGraph(ctx, 42)
	assert.ErrorIs(t, err, context.Canceled)
}
