package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestClientMetrics_ObserveRequest(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		outcome string
		want    string
	}{
		{name: "成功请求", method: "GET", outcome: OutcomeSuccess, want: OutcomeSuccess},
		{name: "空 outcome 视为成功", method: "POST", outcome: "", want: OutcomeSuccess},
		{name: "会话过期", method: "PUT", outcome: OutcomeSessionExpired, want: OutcomeSessionExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			m := NewClientMetricsWithRegistry("test", reg)

			m.ObserveRequest(tt.method, tt.outcome, 120*time.Millisecond)

			assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestsTotal.WithLabelValues(tt.method, tt.want)))
		})
	}
}

func TestClientMetrics_InProgress(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewClientMetricsWithRegistry("test", reg)

	m.IncInProgress()
	m.IncInProgress()
	m.DecInProgress()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestsInProgress))
}

func TestClientMetrics_NilSafe(t *testing.T) {
	var m *ClientMetrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", OutcomeFailed, time.Second)
		m.IncInProgress()
		m.DecInProgress()
		m.IncSessionExpired("401")
	})
}

func TestStoreMetrics_RecordOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetricsWithRegistry("test", reg)

	m.RecordOperation("file", "set", "ok")
	m.RecordOperation("file", "set", "ok")
	m.RecordOperation("redis", "get", "miss")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Operations.WithLabelValues("file", "set", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Operations.WithLabelValues("redis", "get", "miss")))
}

func TestResourceMetrics_RecordRedisOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewResourceMetricsWithRegistry("test", reg)

	m.RecordRedisOperation("GET", true, time.Millisecond, "cli")
	m.RecordRedisOperation("GET", false, time.Millisecond, "cli")
	m.RecordRedisError("nil", "cli")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.RedisOperations.WithLabelValues("cli", "GET", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RedisOperations.WithLabelValues("cli", "GET", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RedisErrors.WithLabelValues("cli", "nil")))
}

func TestSessionMetrics_Cache(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSessionMetricsWithRegistry("test", reg)

	m.IncCacheHit("stub")
	m.IncCacheMiss("stub")
	m.IncCacheEvicted("stub", "")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheHit.WithLabelValues("stub")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheMiss.WithLabelValues("stub")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheEvict.WithLabelValues("stub", "unknown")))
}

func TestWithRegistererRestoresPrevious(t *testing.T) {
	reg := prometheus.NewRegistry()
	before := GetRegisterer()

	var m *StoreMetrics
	WithRegisterer(reg, func() {
		m = NewStoreMetrics("scoped")
	})
	m.RecordOperation("memory", "get", "ok")

	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.Len(t, families, 1)
	assert.Equal(t, before, GetRegisterer())
}
