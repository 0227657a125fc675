package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SessionMetrics 追踪 stub server 登录与会话缓存的核心指标。
type SessionMetrics struct {
	LoginDuration *prometheus.HistogramVec
	CacheHit      *prometheus.CounterVec
	CacheMiss     *prometheus.CounterVec
	CacheEvict    *prometheus.CounterVec
}

var (
	// DefaultSessionMetrics 全局共享实例。
	DefaultSessionMetrics *SessionMetrics

	loginDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.2, 0.3, 0.5, 1, 2}
)

func init() {
	DefaultSessionMetrics = NewSessionMetrics("be4you")
}

// NewSessionMetricsWithRegistry 创建 SessionMetrics,允许 tests 注入自定义 registry。
func NewSessionMetricsWithRegistry(namespace string, reg prometheus.Registerer) *SessionMetrics {
	if reg == nil {
		reg = GetRegisterer()
	}
	factory := promauto.With(reg)

	return &SessionMetrics{
		LoginDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "login_duration_seconds",
				Help:      "Latency histogram for login/register endpoints",
				Buckets:   loginDurationBuckets,
			},
			[]string{"service", "outcome"},
		),
		CacheHit: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_cache_hits_total",
				Help:      "Count of session cache hits by service",
			},
			[]string{"service"},
		),
		CacheMiss: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_cache_miss_total",
				Help:      "Count of session cache misses by service",
			},
			[]string{"service"},
		),
		CacheEvict: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_cache_evict_total",
				Help:      "Count of session cache evictions grouped by service and reason",
			},
			[]string{"service", "reason"},
		),
	}
}

// NewSessionMetrics 创建默认 registry 的 SessionMetrics。
func NewSessionMetrics(namespace string) *SessionMetrics {
	return NewSessionMetricsWithRegistry(namespace, GetRegisterer())
}

// ObserveLogin 记录登录耗时。
func (m *SessionMetrics) ObserveLogin(service, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "success"
	}
	m.LoginDuration.WithLabelValues(normalizeServiceName(service), outcome).Observe(duration.Seconds())
}

// IncCacheHit 增加缓存命中次数。
func (m *SessionMetrics) IncCacheHit(service string) {
	if m == nil {
		return
	}
	m.CacheHit.WithLabelValues(normalizeServiceName(service)).Inc()
}

// IncCacheMiss 增加缓存未命中次数。
func (m *SessionMetrics) IncCacheMiss(service string) {
	if m == nil {
		return
	}
	m.CacheMiss.WithLabelValues(normalizeServiceName(service)).Inc()
}

// IncCacheEvicted 记录缓存剔除次数。
func (m *SessionMetrics) IncCacheEvicted(service, reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	m.CacheEvict.WithLabelValues(normalizeServiceName(service), reason).Inc()
}
