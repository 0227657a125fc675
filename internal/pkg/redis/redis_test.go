package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"be4you/internal/pkg/metrics"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis, *metrics.ResourceMetrics) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	m := metrics.NewResourceMetricsWithRegistry("test", prometheus.NewRegistry())
	return Wrap(rdb, "test", m), mr, m
}

func TestClient_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c, mr, m := newTestClient(t)

	require.NoError(t, c.SetWithTTL(ctx, "k", []byte("v"), time.Minute))
	got, err := c.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
	assert.Equal(t, time.Minute, mr.TTL("k"))

	require.NoError(t, c.DeleteKey(ctx, "k"))
	require.NoError(t, c.DeleteKey(ctx, "k"))

	_, err = c.GetBytes(ctx, "k")
	assert.True(t, errors.Is(err, Nil))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RedisErrors.WithLabelValues("test", "nil")))
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient(context.Background(), "", "test")
	assert.Error(t, err)

	_, err = NewClient(context.Background(), "://bad", "test")
	assert.Error(t, err)
}

func TestNewClient_Miniredis(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := NewClient(context.Background(), "redis://"+mr.Addr()+"/0", "test")
	require.NoError(t, err)
	defer c.Close()

	assert.NoError(t, c.SetWithTTL(context.Background(), "a", "b", 0))
	assert.True(t, mr.Exists("a"))
}
