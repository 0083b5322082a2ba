package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newMetricsRouter(t *testing.T, registry *prometheus.Registry) (*gin.Engine, *HTTPMetrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	metrics, err := NewHTTPMetrics(HTTPMetricsOptions{Registerer: registry})
	if err != nil {
		t.Fatalf("NewHTTPMetrics returned error: %v", err)
	}

	router := gin.New()
	router.Use(metrics.Handler())
	router.POST("/login", func(c *gin.Context) {
		c.Status(http.StatusUnauthorized)
	})
	router.GET("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router, metrics
}

func TestHTTPMetricsCountsByRouteAndStatus(t *testing.T) {
	router, metrics := newMetricsRouter(t, prometheus.NewRegistry())

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", nil))
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 from login route, got %d", rr.Code)
		}
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	loginCount := testutil.ToFloat64(metrics.Requests.With(prometheus.Labels{
		"method": http.MethodPost,
		"route":  "/login",
		"status": "401",
	}))
	if loginCount != 3 {
		t.Fatalf("expected 3 login requests counted, got %f", loginCount)
	}

	healthCount := testutil.ToFloat64(metrics.Requests.With(prometheus.Labels{
		"method": http.MethodGet,
		"route":  "/healthz",
		"status": "200",
	}))
	if healthCount != 1 {
		t.Fatalf("expected 1 health request counted, got %f", healthCount)
	}

	if inFlight := testutil.ToFloat64(metrics.InFlight); inFlight != 0 {
		t.Fatalf("in-flight gauge must drain after requests, got %f", inFlight)
	}

	if samples := testutil.CollectAndCount(metrics.Duration); samples == 0 {
		t.Fatal("expected latency histogram samples")
	}
}

func TestHTTPMetricsReusesRegisteredCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()

	first, err := NewHTTPMetrics(HTTPMetricsOptions{Registerer: registry})
	if err != nil {
		t.Fatalf("first NewHTTPMetrics returned error: %v", err)
	}
	second, err := NewHTTPMetrics(HTTPMetricsOptions{Registerer: registry})
	if err != nil {
		t.Fatalf("second NewHTTPMetrics returned error: %v", err)
	}

	if first.Requests != second.Requests {
		t.Fatal("expected the existing requests collector to be reused")
	}
	if first.InFlight != second.InFlight {
		t.Fatal("expected the existing in-flight gauge to be reused")
	}
}

func TestHTTPMetricsNilReceiverPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use((*HTTPMetrics)(nil).Handler())
	router.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("nil metrics must not block requests, got %d", rr.Code)
	}
}
