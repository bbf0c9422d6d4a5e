// Package analytics provides the HTTP client for the engagement analytics
// service that renders graph fragments.
package analytics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AtRiskMedia/ace-block/internal/domain/analytics"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/caching/stores"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/metrics"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/performance"
)

// Graph request results recorded in metrics.
const (
	ResultData   = "data"
	ResultNoData = "nodata"
	ResultCached = "cached"
	ResultError  = "error"
)

const maxGraphBytes = 4 << 20

// GraphClient fetches graph fragments from the analytics service.
type GraphClient struct {
	client  *http.Client
	baseURL string
	cache   *stores.GraphStore
	metrics *metrics.Metrics
	perf    *performance.Tracker
	logger  *logging.ChanneledLogger
}

var _ analytics.GraphProvider = (*GraphClient)(nil)

// NewGraphClient creates a client for baseURL. cache, m and perf may be nil.
func NewGraphClient(baseURL string, timeout time.Duration, cache *stores.GraphStore, m *metrics.Metrics, perf *performance.Tracker, logger *logging.ChanneledLogger) *GraphClient {
	return &GraphClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		cache:   cache,
		metrics: m,
		perf:    perf,
		logger:  logger,
	}
}

// StudentGraph renders one student's engagement in a course.
func (c *GraphClient) StudentGraph(ctx context.Context, userID, courseID int64, showAllTime bool) (string, error) {
	params := url.Values{}
	params.Set("userid", strconv.FormatInt(userID, 10))
	params.Set("courseid", strconv.FormatInt(courseID, 10))
	params.Set("showall", strconv.FormatBool(showAllTime))

	key := stores.BuildKey(string(analytics.GraphStudent), userID, courseID, boolParam(showAllTime))
	return c.fetch(ctx, analytics.GraphStudent, key, params)
}

// CourseGraph renders aggregate engagement for a course.
func (c *GraphClient) CourseGraph(ctx context.Context, courseID int64) (string, error) {
	params := url.Values{}
	params.Set("courseid", strconv.FormatInt(courseID, 10))

	key := stores.BuildKey(string(analytics.GraphCourse), courseID)
	return c.fetch(ctx, analytics.GraphCourse, key, params)
}

// StudentFullGraph renders a student's engagement with per-course tabs.
func (c *GraphClient) StudentFullGraph(ctx context.Context, userID, courseID int64) (string, error) {
	params := url.Values{}
	params.Set("userid", strconv.FormatInt(userID, 10))
	params.Set("courseid", strconv.FormatInt(courseID, 10))

	key := stores.BuildKey(string(analytics.GraphStudentFull), userID, courseID)
	return c.fetch(ctx, analytics.GraphStudentFull, key, params)
}

// TeacherCourseGraph renders engagement across the courses a teacher teaches.
func (c *GraphClient) TeacherCourseGraph(ctx context.Context, userID int64) (string, error) {
	params := url.Values{}
	params.Set("userid", strconv.FormatInt(userID, 10))

	key := stores.BuildKey(string(analytics.GraphTeacherCourse), userID)
	return c.fetch(ctx, analytics.GraphTeacherCourse, key, params)
}

// ActivityEngagementGraph renders engagement for one course module.
func (c *GraphClient) ActivityEngagementGraph(ctx context.Context, courseModuleID int64) (string, error) {
	params := url.Values{}
	params.Set("cmid", strconv.FormatInt(courseModuleID, 10))

	key := stores.BuildKey(string(analytics.GraphActivity), courseModuleID)
	return c.fetch(ctx, analytics.GraphActivity, key, params)
}

func (c *GraphClient) fetch(ctx context.Context, kind analytics.GraphKind, key string, params url.Values) (string, error) {
	marker := c.perf.StartOperation("graph:"+string(kind), key)
	defer c.perf.CompleteOperation(marker)

	if c.cache != nil {
		if body, ok := c.cache.Get(key); ok {
			marker.AddCacheHit()
			c.logger.LogCacheOperation("get", key, true, time.Since(marker.StartTime))
			c.metrics.ObserveGraphRequest(string(kind), ResultCached, 0)
			return body, nil
		}
	}

	start := time.Now()
	body, err := c.get(ctx, kind, params)
	duration := time.Since(start)
	if err != nil {
		marker.SetError(err)
		c.metrics.ObserveGraphRequest(string(kind), ResultError, duration)
		c.logger.Analytics().Error("Graph request failed", "kind", kind, "key", key, "error", err.Error(), "duration", duration)
		return "", err
	}

	result := ResultData
	if body == "" {
		result = ResultNoData
	}
	marker.AddMetadata("result", result)
	c.metrics.ObserveGraphRequest(string(kind), result, duration)
	c.logger.Analytics().Debug("Graph request completed", "kind", kind, "key", key, "result", result, "duration", duration)

	if c.cache != nil {
		c.cache.Set(string(kind), key, body)
	}
	return body, nil
}

func (c *GraphClient) get(ctx context.Context, kind analytics.GraphKind, params url.Values) (string, error) {
	endpoint := c.baseURL + "/graphs/" + string(kind) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return "", nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxGraphBytes))
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("analytics %s graph: status %d: %s", kind, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if strings.TrimSpace(string(raw)) == "" {
		return "", nil
	}
	return string(raw), nil
}

func boolParam(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
