package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StoreMetrics 本地认证存储的操作指标
type StoreMetrics struct {
	Operations *prometheus.CounterVec
}

// DefaultStoreMetrics 全局共享实例
var DefaultStoreMetrics *StoreMetrics

func init() {
	DefaultStoreMetrics = NewStoreMetrics("be4you")
}

// NewStoreMetrics 使用默认 registry 创建 StoreMetrics
func NewStoreMetrics(namespace string) *StoreMetrics {
	return NewStoreMetricsWithRegistry(namespace, GetRegisterer())
}

// NewStoreMetricsWithRegistry 创建 StoreMetrics，允许 tests 注入自定义 registry
func NewStoreMetricsWithRegistry(namespace string, reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		reg = GetRegisterer()
	}
	factory := promauto.With(reg)

	return &StoreMetrics{
		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_store_operations_total",
				Help:      "Auth store operations by backend, operation and result",
			},
			[]string{"backend", "operation", "result"},
		),
	}
}

// RecordOperation 记录一次存储操作，result 取值 ok/miss/error/rejected
func (m *StoreMetrics) RecordOperation(backend, operation, result string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(backend, operation, result).Inc()
}
