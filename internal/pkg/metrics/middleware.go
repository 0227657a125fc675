// File: internal/pkg/metrics/middleware.go
package metrics

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Middleware Echo 中间件 - 按路由模板记录请求指标，健康检查端点不计入
func Middleware(m *HTTPMetrics, service string) echo.MiddlewareFunc {
	if m == nil {
		m = DefaultHTTPMetrics
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if IsHealthCheckEndpoint(c.Path()) {
				return next(c)
			}

			start := time.Now()
			m.IncInProgress(service)
			defer m.DecInProgress(service)

			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if status < http.StatusBadRequest {
					status = http.StatusInternalServerError
				}
			}
			m.RecordRequest(service, c.Path(), c.Request().Method, status, time.Since(start))
			return err
		}
	}
}

// EchoHandler Echo 框架的 Prometheus metrics 处理器
func EchoHandler(gatherer prometheus.Gatherer) echo.HandlerFunc {
	var h http.Handler
	if gatherer == nil {
		h = promhttp.Handler()
	} else {
		h = promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	}
	return func(c echo.Context) error {
		h.ServeHTTP(c.Response().Writer, c.Request())
		return nil
	}
}
