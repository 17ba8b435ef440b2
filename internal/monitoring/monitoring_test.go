package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMetricsMiddleware_CountsRequests(t *testing.T) {
	metrics := NewMetrics()

	router := gin.New()
	router.Use(metrics.Middleware())
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/fail", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	for _, path := range []string{"/ok", "/ok", "/fail", "/nowhere"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	snapshot := metrics.Snapshot()
	assert.Equal(t, int64(4), snapshot.RequestCount)
	assert.Equal(t, int64(2), snapshot.ErrorCount)
	assert.Equal(t, int64(0), snapshot.ActiveRequests)
	assert.Equal(t, int64(2), snapshot.StatusCodes["200"])
	assert.Equal(t, int64(1), snapshot.StatusCodes["404"])
	assert.Equal(t, int64(2), snapshot.Endpoints["GET /ok"])
	assert.Equal(t, int64(1), snapshot.Endpoints["GET unmatched"])
}

func TestMetrics_SnapshotIsACopy(t *testing.T) {
	metrics := NewMetrics()
	snapshot := metrics.Snapshot()
	snapshot.StatusCodes["200"] = 99

	assert.Empty(t, metrics.Snapshot().StatusCodes)
}

func TestMetricsHandler(t *testing.T) {
	metrics := NewMetrics()
	router := gin.New()
	router.GET("/metrics", metrics.MetricsHandler(func() map[string]interface{} {
		return map[string]interface{}{"hits": 3}
	}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "application")
	assert.Contains(t, body, "system")
	assert.Contains(t, body, "timestamp")
	assert.Equal(t, float64(3), body["cache"].(map[string]interface{})["hits"])
}

func TestMetricsHandler_WithoutCache(t *testing.T) {
	router := gin.New()
	router.GET("/metrics", NewMetrics().MetricsHandler(nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotContains(t, body, "cache")
}

func TestHealthHandler(t *testing.T) {
	router := gin.New()
	router.GET("/health", HealthHandler(NewMetrics()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status    string  `json:"status"`
		Timestamp string  `json:"timestamp"`
		Uptime    float64 `json:"uptime"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "OK", body.Status)
	_, err := time.Parse(time.RFC3339Nano, body.Timestamp)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, body.Uptime, 0.0)
}

func TestReadinessHandler(t *testing.T) {
	checker := NewHealthChecker(time.Second)
	dbHealthy := true
	checker.Register("database", func(ctx context.Context) error {
		if !dbHealthy {
			return errors.New("connection refused")
		}
		return nil
	})
	checker.Register("redis", func(ctx context.Context) error { return nil })

	router := gin.New()
	router.GET("/health/ready", checker.ReadinessHandler())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	dbHealthy = false
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body struct {
		Status string        `json:"status"`
		Checks []HealthCheck `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body.Status)
	require.Len(t, body.Checks, 2)
	assert.Equal(t, "database", body.Checks[0].Name)
	assert.Equal(t, "unhealthy", body.Checks[0].Status)
	assert.Equal(t, "connection refused", body.Checks[0].Message)
	assert.Equal(t, "healthy", body.Checks[1].Status)
}

func TestHealthChecker_Timeout(t *testing.T) {
	checker := NewHealthChecker(10 * time.Millisecond)
	checker.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	checks, healthy := checker.Run(context.Background())
	assert.False(t, healthy)
	assert.Equal(t, "unhealthy", checks[0].Status)
}
