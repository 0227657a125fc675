package stubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"be4you/internal/model/activitymodel"
	"be4you/internal/model/authmodel"
	"be4you/internal/pkg/log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	IsSuccess bool            `json:"isSuccess"`
	Data      json.RawMessage `json:"data"`
	Message   *string         `json:"message"`
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(Options{
		SessionTTL: time.Minute,
		BcryptCost: bcrypt.MinCost,
		Logger:     log.Discard(),
		Registry:   prometheus.NewRegistry(),
	})
}

func do(t *testing.T, s *Server, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func register(t *testing.T, s *Server, email string) authmodel.AuthResponse {
	t.Helper()
	rec, env := do(t, s, http.MethodPost, "/Auth/Register", "", authmodel.RegisterRequest{
		FirstName:       "Ayse",
		LastName:        "Yilmaz",
		Email:           email,
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.True(t, env.IsSuccess)

	var auth authmodel.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	require.NotEmpty(t, auth.Token)
	return auth
}

func samplePayload() activitymodel.ActivityPayload {
	return activitymodel.ActivityPayload{
		Activity: activitymodel.Activity{
			Name:         "Beach cleanup",
			ActivityTime: "2026-11-01T10:00:00Z",
			Location:     "Kadikoy",
		},
		ActivityItems: []activitymodel.ActivityItem{
			{Name: "Water", Unit: activitymodel.UnitLitre, ItemCount: 10},
			{Name: "Bags", Unit: activitymodel.UnitPiece, ItemCount: 50},
		},
	}
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	register(t, s, "ayse@example.com")

	t.Run("重复注册", func(t *testing.T) {
		rec, env := do(t, s, http.MethodPost, "/Auth/Register", "", authmodel.RegisterRequest{
			FirstName: "A", LastName: "B", Email: "AYSE@example.com", Password: "secret1", ConfirmPassword: "secret1",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.False(t, env.IsSuccess)
	})

	t.Run("登录成功", func(t *testing.T) {
		rec, env := do(t, s, http.MethodPost, "/Auth/Login", "", authmodel.LoginRequest{Email: "ayse@example.com", Password: "secret1"})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, env.IsSuccess)
		assert.Nil(t, env.Message)
	})

	t.Run("密码错误返回 400", func(t *testing.T) {
		rec, env := do(t, s, http.MethodPost, "/Auth/Login", "", authmodel.LoginRequest{Email: "ayse@example.com", Password: "wrong-pass"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, env.IsSuccess)
		require.NotNil(t, env.Message)
		assert.Equal(t, "Invalid email or password", *env.Message)
	})

	t.Run("参数校验失败", func(t *testing.T) {
		rec, env := do(t, s, http.MethodPost, "/Auth/Login", "", authmodel.LoginRequest{Email: "not-an-email", Password: "x"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, env.IsSuccess)
	})
}

func TestGoogleLoginCreatesUser(t *testing.T) {
	s := newTestServer(t)
	photo := "https://example.com/me.png"

	rec, env := do(t, s, http.MethodPost, "/Auth/GoogleLogin", "", authmodel.GoogleLoginRequest{
		IDToken: "google-id-token", Email: "g@example.com", FirstName: "G", LastName: "User", PhotoURL: &photo,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var auth authmodel.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	assert.Equal(t, &photo, auth.ProfileImage)

	_, ok := s.data.findUser("g@example.com")
	assert.True(t, ok)
}

func TestGoogleLoginRefusesPasswordAccount(t *testing.T) {
	s := newTestServer(t)
	register(t, s, "pw@example.com")

	rec, env := do(t, s, http.MethodPost, "/Auth/GoogleLogin", "", authmodel.GoogleLoginRequest{
		IDToken: "any-token", Email: "pw@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.IsSuccess)
	require.NotNil(t, env.Message)
	assert.Equal(t, "Account uses password sign-in", *env.Message)
	// 只有注册时签发的那一个会话
	assert.Equal(t, 1, s.sessions.Len())
}

func TestForgotPassword(t *testing.T) {
	s := newTestServer(t)
	rec, env := do(t, s, http.MethodPost, "/auth/forgot-password", "", authmodel.ForgotPasswordRequest{Email: "nobody@example.com"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.IsSuccess)
}

func TestActivitiesRequireAuth(t *testing.T) {
	s := newTestServer(t)

	for _, token := range []string{"", "00000000-0000-0000-0000-000000000000"} {
		rec, env := do(t, s, http.MethodGet, "/Activities", token, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, env.IsSuccess)
	}
}

func TestActivityCRUD(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "crud@example.com").Token

	rec, env := do(t, s, http.MethodPost, "/Activities/CreateWithItems", token, samplePayload())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created activitymodel.ActivityDetail
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)
	require.Len(t, created.ActivityItems, 2)
	assert.NotNil(t, created.ActivityItems[0].ID)

	_, env = do(t, s, http.MethodGet, "/Activities", token, nil)
	var list []activitymodel.ActivityDetail
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	updated := samplePayload()
	updated.Activity.Name = "Park cleanup"
	updated.ActivityItems = updated.ActivityItems[:1]
	rec, env = do(t, s, http.MethodPut, "/Activities/"+created.ID, token, updated)
	require.Equal(t, http.StatusOK, rec.Code)
	var got activitymodel.ActivityDetail
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Park cleanup", got.Name)
	assert.Len(t, got.ActivityItems, 1)

	// 其他用户看不到
	other := register(t, s, "other@example.com").Token
	rec, _ = do(t, s, http.MethodGet, "/Activities/"+created.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, s, http.MethodDelete, "/Activities/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = do(t, s, http.MethodGet, "/Activities/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateActivityValidation(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "v@example.com").Token

	bad := samplePayload()
	bad.ActivityItems[0].Unit = "Ton"
	rec, env := do(t, s, http.MethodPost, "/Activities/CreateWithItems", token, bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.IsSuccess)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "bye@example.com").Token

	rec, _ := do(t, s, http.MethodPost, "/Auth/Logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, s, http.MethodGet, "/Activities", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec, env := do(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.IsSuccess)

	register(t, s, "m@example.com")
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	mrec := httptest.NewRecorder()
	s.Handler().ServeHTTP(mrec, req)
	assert.Equal(t, http.StatusOK, mrec.Code)
	assert.Contains(t, mrec.Body.String(), "be4you_login_duration_seconds")
}

func TestSweeperLifecycle(t *testing.T) {
	s := New(Options{
		SessionTTL: time.Minute,
		SweepSpec:  "@every 1h",
		BcryptCost: bcrypt.MinCost,
		Logger:     log.Discard(),
		Registry:   prometheus.NewRegistry(),
	})
	require.NoError(t, s.StartSweeper())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Shutdown(ctx))

	bad := New(Options{SweepSpec: "not a spec", Logger: log.Discard(), Registry: prometheus.NewRegistry()})
	assert.Error(t, bad.StartSweeper())
}

func TestActivityIDMustBeUUID(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "uuid@example.com").Token

	rec, env := do(t, s, http.MethodGet, "/Activities/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.IsSuccess)

	// 未登录时先返回 401
	rec, _ = do(t, s, http.MethodGet, "/Activities/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSecurityHeadersAndCORS(t *testing.T) {
	s := newTestServer(t)

	rec, _ := do(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	req := httptest.NewRequest(http.MethodOptions, "/Activities", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	pre := httptest.NewRecorder()
	s.Handler().ServeHTTP(pre, req)
	assert.Equal(t, http.StatusNoContent, pre.Code)
	assert.Equal(t, "*", pre.Header().Get("Access-Control-Allow-Origin"))
}
