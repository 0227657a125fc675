package stubapi

import (
	"net/http"
	"time"

	"be4you/internal/middleware"
	"be4you/internal/model/authmodel"
	"be4you/internal/pkg/log"
	"be4you/internal/pkg/response"
	"be4you/internal/pkg/sessioncache"
	"be4you/internal/pkg/xerrors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// Login 邮箱密码登录
func (s *Server) Login(c echo.Context) error {
	start := time.Now()
	var req authmodel.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	u, ok := s.data.findUser(req.Email)
	if !ok || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)) != nil {
		s.sessionMetrics.ObserveLogin(serviceName, "invalid_credentials", time.Since(start))
		// 用 400 而不是 401: 客户端会把 401 当作会话过期
		return response.EchoErrorWithStatus(c, http.StatusBadRequest,
			xerrors.New(xerrors.CodeInvalidCredentials, "Invalid email or password"))
	}

	s.sessionMetrics.ObserveLogin(serviceName, "success", time.Since(start))
	return response.EchoOK(c, http.StatusOK, s.issueSession(c, u))
}

// Register 注册并直接登录
func (s *Server) Register(c echo.Context) error {
	start := time.Now()
	var req authmodel.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return xerrors.NewWithError(xerrors.CodeInternalError, "hash password failed", err)
	}

	u := &user{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if !s.data.addUser(u) {
		s.sessionMetrics.ObserveLogin(serviceName, "duplicate", time.Since(start))
		appErr := xerrors.NewConflictError("user", "email already registered")
		appErr.Message = "Email is already registered"
		return response.EchoError(c, appErr)
	}

	s.sessionMetrics.ObserveLogin(serviceName, "registered", time.Since(start))
	return response.EchoOK(c, http.StatusOK, s.issueSession(c, u))
}

// GoogleLogin 接受任意非空 idToken,不做签名校验;邮箱首次出现时自动建号。
// 已用密码注册的邮箱一律拒绝。
func (s *Server) GoogleLogin(c echo.Context) error {
	start := time.Now()
	var req authmodel.GoogleLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	u, ok := s.data.findUser(req.Email)
	if ok && len(u.PasswordHash) > 0 {
		// idToken 不做校验,因此不能借 Google 登录接管密码账号
		s.sessionMetrics.ObserveLogin(serviceName, "google_rejected", time.Since(start))
		return response.EchoErrorWithStatus(c, http.StatusBadRequest,
			xerrors.New(xerrors.CodeInvalidCredentials, "Account uses password sign-in"))
	}
	if !ok {
		u = &user{
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Email:        req.Email,
			ProfileImage: req.PhotoURL,
		}
		if !s.data.addUser(u) {
			// 并发注册同一邮箱,以已存在的账号为准
			existing, _ := s.data.findUser(req.Email)
			if existing != nil && len(existing.PasswordHash) > 0 {
				return response.EchoErrorWithStatus(c, http.StatusBadRequest,
					xerrors.New(xerrors.CodeInvalidCredentials, "Account uses password sign-in"))
			}
			u = existing
		}
	}

	s.sessionMetrics.ObserveLogin(serviceName, "google", time.Since(start))
	return response.EchoOK(c, http.StatusOK, s.issueSession(c, u))
}

// ForgotPassword 不真正发邮件,只记录日志。不暴露邮箱是否存在。
func (s *Server) ForgotPassword(c echo.Context) error {
	var req authmodel.ForgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	_, known := s.data.findUser(req.Email)
	s.logger.InfoContext(c.Request().Context(), "password reset requested",
		log.Bool("known_email", known))

	msg := "If the address is registered, a reset link has been sent"
	return c.JSON(http.StatusOK, response.Envelope[any]{IsSuccess: true, Message: &msg, StatusCode: http.StatusOK})
}

// Logout 让当前 token 失效
func (s *Server) Logout(c echo.Context) error {
	current, _ := middleware.GetCurrentUser(c)
	s.sessions.Delete(c.Request().Context(), serviceName, current.Token, "logout")
	return response.EchoOK[any](c, http.StatusOK, nil)
}

func (s *Server) issueSession(c echo.Context, u *user) authmodel.AuthResponse {
	token := uuid.NewString()
	s.sessions.Set(c.Request().Context(), serviceName, sessioncache.Session{
		Token:  token,
		UserID: u.ID,
		Email:  u.Email,
	})
	return authmodel.AuthResponse{
		Token:        token,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		ProfileImage: u.ProfileImage,
	}
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return xerrors.New(xerrors.CodeInvalidRequest, "Invalid request body")
	}
	return c.Validate(req)
}
