package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"be4you/internal/apiclient"
	"be4you/internal/authstore"
	"be4you/internal/model/authmodel"
	"be4you/internal/modules/stubapi"
	"be4you/internal/pkg/log"
	"be4you/internal/pkg/metrics"
	"be4you/internal/pkg/notify"
	"be4you/internal/pkg/xerrors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type noticeRecorder struct {
	kinds []notify.Kind
}

func (r *noticeRecorder) Notify(_ context.Context, n notify.Notice) error {
	r.kinds = append(r.kinds, n.Kind)
	return nil
}

func newTestService(t *testing.T, handler http.Handler) (*AuthService, *authstore.Store, *noticeRecorder) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := authstore.New(authstore.NewMemoryBackend(),
		authstore.WithLogger(log.Discard()),
		authstore.WithMetrics(metrics.NewStoreMetricsWithRegistry("test", prometheus.NewRegistry())))
	client, err := apiclient.New(apiclient.Config{BaseURL: srv.URL}, store,
		apiclient.WithLogger(log.Discard()),
		apiclient.WithMetrics(metrics.NewClientMetricsWithRegistry("test", prometheus.NewRegistry())))
	require.NoError(t, err)

	rec := &noticeRecorder{}
	return NewAuthService(client, store, rec, log.Discard()), store, rec
}

func newStub() http.Handler {
	return stubapi.New(stubapi.Options{
		SessionTTL: time.Minute,
		BcryptCost: bcrypt.MinCost,
		Logger:     log.Discard(),
		Registry:   prometheus.NewRegistry(),
	}).Handler()
}

func TestRegisterLoginLogout(t *testing.T) {
	ctx := context.Background()
	svc, store, notices := newTestService(t, newStub())

	assert.False(t, svc.IsAuthenticated(ctx))

	resp := svc.Register(ctx, authmodel.RegisterRequest{
		FirstName:       "Ayse",
		LastName:        "Yilmaz",
		Email:           "ayse@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})
	require.True(t, resp.IsSuccess, resp.Text())
	assert.True(t, svc.IsAuthenticated(ctx))

	rec, ok := svc.CurrentUser(ctx)
	require.True(t, ok)
	assert.Equal(t, "Ayse Yilmaz", rec.User.FullName())
	assert.Equal(t, resp.Data.Token, rec.Token)

	svc.Logout(ctx)
	_, ok = store.GetToken(ctx)
	assert.False(t, ok)
	assert.Equal(t, []notify.Kind{notify.KindLogout}, notices.kinds)

	login := svc.Login(ctx, authmodel.LoginRequest{Email: "ayse@example.com", Password: "secret1"})
	require.True(t, login.IsSuccess)
	token, ok := store.GetToken(ctx)
	require.True(t, ok)
	assert.Equal(t, login.Data.Token, token)
	assert.NotEqual(t, resp.Data.Token, token, "重新登录应覆盖旧 token")
}

func TestLoginWrongPasswordKeepsStoreEmpty(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t, newStub())

	resp := svc.Login(ctx, authmodel.LoginRequest{Email: "ghost@example.com", Password: "secret1"})
	assert.False(t, resp.IsSuccess)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid email or password", resp.Text())

	_, ok := store.GetToken(ctx)
	assert.False(t, ok)
}

func TestGoogleLoginAndForgotPassword(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, newStub())

	resp := svc.GoogleLogin(ctx, authmodel.GoogleLoginRequest{
		IDToken: "id-token", Email: "g@example.com", FirstName: "G", LastName: "User",
	})
	require.True(t, resp.IsSuccess)
	assert.True(t, svc.IsAuthenticated(ctx))

	forgot := svc.ForgotPassword(ctx, "g@example.com")
	assert.True(t, forgot.IsSuccess)
}

func TestValidationFailsWithoutNetworkCall(t *testing.T) {
	ctx := context.Background()
	var hits atomic.Int32
	svc, _, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name string
		call func() (bool, int, xerrors.ErrorCode)
	}{
		{
			name: "登录邮箱格式错误",
			call: func() (bool, int, xerrors.ErrorCode) {
				r := svc.Login(ctx, authmodel.LoginRequest{Email: "nope", Password: "secret1"})
				return r.IsSuccess, r.StatusCode, r.Code()
			},
		},
		{
			name: "登录密码太短",
			call: func() (bool, int, xerrors.ErrorCode) {
				r := svc.Login(ctx, authmodel.LoginRequest{Email: "a@b.com", Password: "123"})
				return r.IsSuccess, r.StatusCode, r.Code()
			},
		},
		{
			name: "注册两次密码不一致",
			call: func() (bool, int, xerrors.ErrorCode) {
				r := svc.Register(ctx, authmodel.RegisterRequest{
					FirstName: "A", LastName: "B", Email: "a@b.com", Password: "secret1", ConfirmPassword: "secret2",
				})
				return r.IsSuccess, r.StatusCode, r.Code()
			},
		},
		{
			name: "Google 登录缺少 idToken",
			call: func() (bool, int, xerrors.ErrorCode) {
				r := svc.GoogleLogin(ctx, authmodel.GoogleLoginRequest{Email: "a@b.com"})
				return r.IsSuccess, r.StatusCode, r.Code()
			},
		},
		{
			name: "忘记密码邮箱为空",
			call: func() (bool, int, xerrors.ErrorCode) {
				r := svc.ForgotPassword(ctx, "")
				return r.IsSuccess, r.StatusCode, r.Code()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, status, code := tt.call()
			assert.False(t, ok)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, xerrors.CodeInvalidParams, code)
		})
	}
	assert.Equal(t, int32(0), hits.Load())
}

func TestSuccessWithoutTokenIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"isSuccess":true,"data":{"email":"a@b.com"}}`))
	}))

	// 之前的会话不能保留
	store.SetAuth(ctx, authmodel.AuthRecord{Token: "old", User: authmodel.User{Email: "old@b.com"}})

	resp := svc.Login(ctx, authmodel.LoginRequest{Email: "a@b.com", Password: "secret1"})
	assert.True(t, resp.IsSuccess)
	_, ok := store.GetAuth(ctx)
	assert.False(t, ok)
	_, ok = store.GetToken(ctx)
	assert.False(t, ok)
}
