package service

import (
	"context"
	"net/http"

	"be4you/internal/apiclient"
	"be4you/internal/model/authmodel"
	"be4you/internal/pkg/log"
	"be4you/internal/pkg/notify"
	"be4you/internal/pkg/response"
	"be4you/internal/pkg/validator"
)

// 认证相关 endpoint
const (
	EndpointLogin          = "/Auth/Login"
	EndpointRegister       = "/Auth/Register"
	EndpointGoogleLogin    = "/Auth/GoogleLogin"
	EndpointForgotPassword = "/auth/forgot-password"
)

// SessionStore 认证服务对本地会话存储的依赖
type SessionStore interface {
	SetAuth(ctx context.Context, rec authmodel.AuthRecord)
	GetAuth(ctx context.Context) (authmodel.AuthRecord, bool)
	ClearAuth(ctx context.Context)
}

// AuthService 登录/注册/登出,成功后维护本地会话
type AuthService struct {
	client    *apiclient.Client
	store     SessionStore
	notifier  notify.Notifier
	validator *validator.CustomValidator
	logger    log.Logger
}

// NewAuthService 创建认证服务; notifier 可为 nil
func NewAuthService(client *apiclient.Client, store SessionStore, notifier notify.Notifier, logger log.Logger) *AuthService {
	if logger == nil {
		logger = log.GetLogger()
	}
	if notifier == nil {
		notifier = notify.NewLogNotifier(logger)
	}
	return &AuthService{
		client:    client,
		store:     store,
		notifier:  notifier,
		validator: validator.New(),
		logger:    logger.With("module", "auth_service"),
	}
}

// Login 邮箱密码登录
func (s *AuthService) Login(ctx context.Context, req authmodel.LoginRequest) apiclient.Response[authmodel.AuthResponse] {
	if appErr := s.validator.Struct(req); appErr != nil {
		return response.Failure[authmodel.AuthResponse](http.StatusBadRequest, appErr)
	}
	resp := apiclient.PostAs[authmodel.AuthResponse](ctx, s.client, EndpointLogin, req, apiclient.SkipAuth())
	s.persist(ctx, "login", resp)
	return resp
}

// Register 注册新账号,成功后直接进入登录态
func (s *AuthService) Register(ctx context.Context, req authmodel.RegisterRequest) apiclient.Response[authmodel.AuthResponse] {
	if appErr := s.validator.Struct(req); appErr != nil {
		return response.Failure[authmodel.AuthResponse](http.StatusBadRequest, appErr)
	}
	resp := apiclient.PostAs[authmodel.AuthResponse](ctx, s.client, EndpointRegister, req, apiclient.SkipAuth())
	s.persist(ctx, "register", resp)
	return resp
}

// GoogleLogin 使用 Google idToken 登录
func (s *AuthService) GoogleLogin(ctx context.Context, req authmodel.GoogleLoginRequest) apiclient.Response[authmodel.AuthResponse] {
	if appErr := s.validator.Struct(req); appErr != nil {
		return response.Failure[authmodel.AuthResponse](http.StatusBadRequest, appErr)
	}
	resp := apiclient.PostAs[authmodel.AuthResponse](ctx, s.client, EndpointGoogleLogin, req, apiclient.SkipAuth())
	s.persist(ctx, "google_login", resp)
	return resp
}

// ForgotPassword 发送重置密码邮件
func (s *AuthService) ForgotPassword(ctx context.Context, email string) apiclient.Response[any] {
	req := authmodel.ForgotPasswordRequest{Email: email}
	if appErr := s.validator.Struct(req); appErr != nil {
		return response.Failure[any](http.StatusBadRequest, appErr)
	}
	return apiclient.PostAs[any](ctx, s.client, EndpointForgotPassword, req, apiclient.SkipAuth())
}

// Logout 清除本地会话
func (s *AuthService) Logout(ctx context.Context) {
	s.store.ClearAuth(ctx)
	if err := s.notifier.Notify(ctx, notify.LogoutNotice()); err != nil {
		s.logger.WarnContext(ctx, "deliver logout notice failed", log.Any("error", err))
	}
	s.logger.InfoContext(ctx, "user logged out")
}

// CurrentUser 返回当前登录的会话记录
func (s *AuthService) CurrentUser(ctx context.Context) (authmodel.AuthRecord, bool) {
	return s.store.GetAuth(ctx)
}

// IsAuthenticated 是否存在有效会话,决定启动时进入主页还是欢迎页
func (s *AuthService) IsAuthenticated(ctx context.Context) bool {
	_, ok := s.store.GetAuth(ctx)
	return ok
}

func (s *AuthService) persist(ctx context.Context, flow string, resp apiclient.Response[authmodel.AuthResponse]) {
	if !resp.IsSuccess {
		s.logger.InfoContext(ctx, "authentication rejected",
			log.String("flow", flow),
			log.Int("status_code", resp.StatusCode),
			log.String("message", resp.Text()))
		return
	}

	rec := resp.Data.ToRecord()
	if !rec.Valid() {
		s.logger.WarnContext(ctx, "authentication succeeded without a usable session",
			log.String("flow", flow))
		s.store.ClearAuth(ctx)
		return
	}

	s.store.SetAuth(ctx, rec)
	s.logger.InfoContext(ctx, "user authenticated",
		log.String("flow", flow),
		log.String("token_hash", log.TokenHash(rec.Token)))
}
