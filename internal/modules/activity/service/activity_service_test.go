package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"be4you/internal/apiclient"
	"be4you/internal/authstore"
	"be4you/internal/model/activitymodel"
	"be4you/internal/model/authmodel"
	"be4you/internal/modules/stubapi"
	"be4you/internal/pkg/log"
	"be4you/internal/pkg/metrics"
	"be4you/internal/pkg/sessioncache"
	"be4you/internal/pkg/xerrors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	svc   *ActivityService
	store *authstore.Store
	stub  *stubapi.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stub := stubapi.New(stubapi.Options{
		SessionTTL: time.Minute,
		BcryptCost: bcrypt.MinCost,
		Logger:     log.Discard(),
		Registry:   prometheus.NewRegistry(),
	})
	srv := httptest.NewServer(stub.Handler())
	t.Cleanup(srv.Close)

	store := authstore.New(authstore.NewMemoryBackend(),
		authstore.WithLogger(log.Discard()),
		authstore.WithMetrics(metrics.NewStoreMetricsWithRegistry("test", prometheus.NewRegistry())))
	client, err := apiclient.New(apiclient.Config{BaseURL: srv.URL}, store,
		apiclient.WithLogger(log.Discard()),
		apiclient.WithMetrics(metrics.NewClientMetricsWithRegistry("test", prometheus.NewRegistry())))
	require.NoError(t, err)

	// 直接在 stub 中签发会话,省去登录流程
	ctx := context.Background()
	stub.Sessions().Set(ctx, "stub-api", sessioncache.Session{Token: "tok-1", UserID: "u1", Email: "a@b.com"})
	store.SetAuth(ctx, authmodel.AuthRecord{Token: "tok-1", User: authmodel.User{Email: "a@b.com"}})

	return &fixture{svc: NewActivityService(client, log.Discard()), store: store, stub: stub}
}

func payload(name string) activitymodel.ActivityPayload {
	return activitymodel.ActivityPayload{
		Activity: activitymodel.Activity{
			Name:         name,
			ActivityTime: "2026-11-01T10:00:00Z",
			Location:     "Moda",
		},
		ActivityItems: []activitymodel.ActivityItem{
			{Name: "Flour", Unit: activitymodel.UnitKilogram, ItemCount: 2},
		},
	}
}

func TestActivityLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created := f.svc.CreateWithItems(ctx, payload("Bake sale"))
	require.True(t, created.IsSuccess, created.Text())
	assert.Equal(t, http.StatusCreated, created.StatusCode)
	id := created.Data.ID
	require.NotEmpty(t, id)

	list := f.svc.List(ctx)
	require.True(t, list.IsSuccess)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Bake sale", list.Data[0].Name)

	update := payload("Bake sale v2")
	update.ActivityItems = append(update.ActivityItems, activitymodel.ActivityItem{
		Name: "Milk", Unit: activitymodel.UnitLitre, ItemCount: 3,
	})
	updated := f.svc.Update(ctx, id, update)
	require.True(t, updated.IsSuccess)
	assert.Equal(t, "Bake sale v2", updated.Data.Name)
	assert.Len(t, updated.Data.ActivityItems, 2)

	got := f.svc.Get(ctx, id)
	require.True(t, got.IsSuccess)
	assert.Equal(t, "Bake sale v2", got.Data.Name)

	deleted := f.svc.Delete(ctx, id)
	assert.True(t, deleted.IsSuccess)
	assert.Equal(t, http.StatusNoContent, deleted.StatusCode)

	missing := f.svc.Get(ctx, id)
	assert.False(t, missing.IsSuccess)
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
	assert.Equal(t, xerrors.CodeServerError, missing.Code())
}

func TestExpiredSessionClearsStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.stub.Sessions().Delete(ctx, "stub-api", "tok-1", "test")

	resp := f.svc.List(ctx)
	assert.False(t, resp.IsSuccess)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, xerrors.CodeSessionExpired, resp.Code())

	_, ok := f.store.GetToken(ctx)
	assert.False(t, ok)
}

func TestInvalidPayloadIsRejectedLocally(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	t.Cleanup(srv.Close)

	client, err := apiclient.New(apiclient.Config{BaseURL: srv.URL},
		authstore.New(authstore.NewMemoryBackend(), authstore.WithLogger(log.Discard())),
		apiclient.WithLogger(log.Discard()))
	require.NoError(t, err)
	svc := NewActivityService(client, log.Discard())
	ctx := context.Background()

	bad := payload("")
	resp := svc.CreateWithItems(ctx, bad)
	assert.Equal(t, xerrors.CodeInvalidParams, resp.Code())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	bad = payload("x")
	bad.ActivityItems[0].ItemCount = -1
	resp = svc.Update(ctx, "a1", bad)
	assert.Equal(t, xerrors.CodeInvalidParams, resp.Code())

	bad = payload("x")
	bad.ActivityItems[0].Unit = "Gallon"
	resp = svc.CreateWithItems(ctx, bad)
	assert.Equal(t, xerrors.CodeInvalidParams, resp.Code())

	assert.Equal(t, xerrors.CodeInvalidParams, svc.Get(ctx, "").Code())
	assert.Equal(t, xerrors.CodeInvalidParams, svc.Delete(ctx, "").Code())
	assert.Equal(t, int32(0), hits.Load())
}

func TestLargeImageIsStillSent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p := payload("Photo walk")
	p.Activity.ImageData = strings.Repeat("A", 2*activitymodel.MaxImageBytes)
	resp := f.svc.CreateWithItems(ctx, p)
	assert.True(t, resp.IsSuccess, resp.Text())
}
