package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 出站请求的结果标签
const (
	OutcomeSuccess        = "success"
	OutcomeSessionExpired = "session_expired"
	OutcomeFailed         = "failed"
	OutcomeMalformed      = "malformed"
	OutcomeTransportError = "transport_error"
)

// ClientMetrics API 客户端出站请求指标
type ClientMetrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	RequestsInProgress prometheus.Gauge
	SessionExpired     *prometheus.CounterVec
}

var (
	// DefaultClientMetrics 全局共享实例
	DefaultClientMetrics *ClientMetrics

	clientDurationBuckets = []float64{0.05, 0.1, 0.2, 0.3, 0.5, 1, 2, 5, 10}
)

func init() {
	DefaultClientMetrics = NewClientMetrics("be4you")
}

// NewClientMetrics 使用默认 registry 创建 ClientMetrics
func NewClientMetrics(namespace string) *ClientMetrics {
	return NewClientMetricsWithRegistry(namespace, GetRegisterer())
}

// NewClientMetricsWithRegistry 创建 ClientMetrics，允许 tests 注入自定义 registry
func NewClientMetricsWithRegistry(namespace string, reg prometheus.Registerer) *ClientMetrics {
	if reg == nil {
		reg = GetRegisterer()
	}
	factory := promauto.With(reg)

	return &ClientMetrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "client_requests_total",
				Help:      "Total outbound API requests by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "client_request_duration_seconds",
				Help:      "Outbound API request latency",
				Buckets:   clientDurationBuckets,
			},
			[]string{"method", "outcome"},
		),
		RequestsInProgress: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "client_requests_in_progress",
				Help:      "Outbound API requests currently in flight",
			},
		),
		SessionExpired: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "client_session_expired_total",
				Help:      "Responses treated as session expiry, by HTTP status",
			},
			[]string{"status"},
		),
	}
}

// ObserveRequest 记录一次完成的请求
func (m *ClientMetrics) ObserveRequest(method, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = OutcomeSuccess
	}
	m.RequestsTotal.WithLabelValues(method, outcome).Inc()
	m.RequestDuration.WithLabelValues(method, outcome).Observe(duration.Seconds())
}

// IncInProgress 增加进行中的请求数
func (m *ClientMetrics) IncInProgress() {
	if m == nil {
		return
	}
	m.RequestsInProgress.Inc()
}

// DecInProgress 减少进行中的请求数
func (m *ClientMetrics) DecInProgress() {
	if m == nil {
		return
	}
	m.RequestsInProgress.Dec()
}

// IncSessionExpired 记录一次会话过期
func (m *ClientMetrics) IncSessionExpired(status string) {
	if m == nil {
		return
	}
	m.SessionExpired.WithLabelValues(status).Inc()
}
