// File: internal/pkg/metrics/resource_metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ResourceMetrics 外部资源（Redis）监控指标收集器
type ResourceMetrics struct {
	RedisOperations        *prometheus.CounterVec   // Redis 操作总数（按操作类型和结果）
	RedisOperationDuration *prometheus.HistogramVec // Redis 操作延迟（按操作类型）
	RedisErrors            *prometheus.CounterVec   // Redis 错误数（按错误类型）
}

// DefaultResourceMetrics 默认的资源指标实例
var DefaultResourceMetrics *ResourceMetrics

// RedisOperationBuckets 是针对 Redis 操作延迟优化的 buckets，单位：秒
var RedisOperationBuckets = []float64{
	0.001, // 1ms
	0.005, // 5ms
	0.01,  // 10ms
	0.025, // 25ms
	0.05,  // 50ms
	0.1,   // 100ms
	0.25,  // 250ms
	0.5,   // 500ms
	1,     // 1s
}

func init() {
	DefaultResourceMetrics = NewResourceMetrics("be4you")
}

// NewResourceMetrics 创建新的资源指标收集器
func NewResourceMetrics(namespace string) *ResourceMetrics {
	return NewResourceMetricsWithRegistry(namespace, GetRegisterer())
}

// NewResourceMetricsWithRegistry 创建新的资源指标收集器（使用自定义注册表）
func NewResourceMetricsWithRegistry(namespace string, registerer prometheus.Registerer) *ResourceMetrics {
	if registerer == nil {
		registerer = GetRegisterer()
	}
	factory := promauto.With(registerer)

	return &ResourceMetrics{
		RedisOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "redis",
				Name:      "operations_total",
				Help:      "Total number of Redis operations by command and result",
			},
			[]string{"service", "command", "result"},
		),
		RedisOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "redis",
				Name:      "operation_duration_seconds",
				Help:      "Redis operation latency in seconds",
				Buckets:   RedisOperationBuckets,
			},
			[]string{"service", "command"},
		),
		RedisErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "redis",
				Name:      "errors_total",
				Help:      "Total number of Redis errors by type",
			},
			[]string{"service", "error_type"},
		),
	}
}

// RecordRedisOperation 记录一次 Redis 操作
func (m *ResourceMetrics) RecordRedisOperation(command string, success bool, duration time.Duration, service string) {
	if m == nil {
		return
	}
	service = normalizeServiceName(service)
	result := "success"
	if !success {
		result = "error"
	}
	m.RedisOperations.WithLabelValues(service, command, result).Inc()
	m.RedisOperationDuration.WithLabelValues(service, command).Observe(duration.Seconds())
}

// RecordRedisError 记录 Redis 错误（nil 命中也单独统计）
func (m *ResourceMetrics) RecordRedisError(errorType, service string) {
	if m == nil {
		return
	}
	m.RedisErrors.WithLabelValues(normalizeServiceName(service), errorType).Inc()
}
