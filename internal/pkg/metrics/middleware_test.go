// File: internal/pkg/metrics/middleware_test.go
package metrics

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_RouteTemplate(t *testing.T) {
	tests := []struct {
		name          string
		registerRoute string
		requestPath   string
		status        int
	}{
		{name: "参数化路由使用模板", registerRoute: "/Activities/:id", requestPath: "/Activities/123", status: http.StatusOK},
		{name: "返回 401 也记录", registerRoute: "/Activities", requestPath: "/Activities", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			m := NewHTTPMetricsWithRegistry("test", reg)

			e := echo.New()
			e.Use(Middleware(m, "stub"))
			e.GET(tt.registerRoute, func(c echo.Context) error {
				return c.NoContent(tt.status)
			})

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.requestPath, nil))

			assert.Equal(t, tt.status, rec.Code)
			got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("stub", tt.registerRoute, http.MethodGet, strconv.Itoa(tt.status)))
			assert.Equal(t, float64(1), got)
		})
	}
}

func TestMiddleware_SkipsHealthCheck(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetricsWithRegistry("test", reg)

	e := echo.New()
	e.Use(Middleware(m, "stub"))
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, 0, testutil.CollectAndCount(m.RequestsTotal))
}
