// Package stubapi 是与远端 activities API 同构的本地开发服务器,使用相同的响应信封。
package stubapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	custommiddleware "be4you/internal/middleware"
	"be4you/internal/pkg/log"
	"be4you/internal/pkg/metrics"
	"be4you/internal/pkg/response"
	"be4you/internal/pkg/security"
	"be4you/internal/pkg/sessioncache"
	"be4you/internal/pkg/trace"
	"be4you/internal/pkg/validation"
	"be4you/internal/pkg/validator"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"golang.org/x/crypto/bcrypt"
)

const serviceName = "stub-api"

// Options stub server 配置
type Options struct {
	// SessionTTL 会话空闲过期时间
	SessionTTL time.Duration
	// SweepSpec 清理过期会话的 cron 表达式,默认每分钟
	SweepSpec string
	// BcryptCost 测试中可以调低
	BcryptCost int
	Logger     log.Logger
	// Registry 为 nil 时使用全局 registry
	Registry *prometheus.Registry
}

// Server stub API 服务
type Server struct {
	echo           *echo.Echo
	sessions       *sessioncache.Cache
	sessionMetrics *metrics.SessionMetrics
	data           *memoryData
	cron           *cron.Cron
	sweepSpec      string
	bcryptCost     int
	logger         log.Logger
}

// New 创建 stub server 并注册路由
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.GetLogger()
	}
	logger = logger.With("module", serviceName)

	sessionMetrics := metrics.DefaultSessionMetrics
	httpMetrics := metrics.DefaultHTTPMetrics
	var gatherer prometheus.Gatherer
	if opts.Registry != nil {
		sessionMetrics = metrics.NewSessionMetricsWithRegistry("be4you", opts.Registry)
		httpMetrics = metrics.NewHTTPMetricsWithRegistry("be4you", opts.Registry)
		gatherer = opts.Registry
	}

	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	spec := opts.SweepSpec
	if spec == "" {
		spec = "@every 1m"
	}

	s := &Server{
		sessions:       sessioncache.New(opts.SessionTTL, sessionMetrics, logger),
		sessionMetrics: sessionMetrics,
		data:           newMemoryData(),
		sweepSpec:      spec,
		bcryptCost:     cost,
		logger:         logger,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.New()
	e.HTTPErrorHandler = response.HTTPErrorHandler

	e.Use(trace.Middleware())
	e.Use(custommiddleware.RecoveryMiddleware(logger))
	e.Use(security.CORSMiddleware())
	e.Use(security.SecurityHeadersMiddleware())
	e.Use(custommiddleware.LoggingMiddleware(logger))
	e.Use(metrics.Middleware(httpMetrics, serviceName))

	e.GET("/health", func(c echo.Context) error {
		return response.EchoOK(c, http.StatusOK, map[string]any{
			"status":   "ok",
			"sessions": s.sessions.Len(),
		})
	})
	e.GET("/metrics", metrics.EchoHandler(gatherer))

	e.POST("/Auth/Login", s.Login)
	e.POST("/Auth/Register", s.Register)
	e.POST("/Auth/GoogleLogin", s.GoogleLogin)
	e.POST("/auth/forgot-password", s.ForgotPassword)

	auth := custommiddleware.AuthMiddleware(s.sessions, serviceName, logger)
	activityID := validation.UUIDParamMiddleware("activity")
	e.POST("/Auth/Logout", s.Logout, auth)
	e.GET("/Activities", s.ListActivities, auth)
	e.POST("/Activities/CreateWithItems", s.CreateActivity, auth)
	e.GET("/Activities/:id", s.GetActivity, auth, activityID)
	e.PUT("/Activities/:id", s.UpdateActivity, auth, activityID)
	e.DELETE("/Activities/:id", s.DeleteActivity, auth, activityID)

	s.echo = e
	return s
}

// Handler 返回 http.Handler,测试中配合 httptest 使用
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Sessions 返回会话缓存
func (s *Server) Sessions() *sessioncache.Cache {
	return s.sessions
}

// StartSweeper 启动定时清理过期会话的任务
func (s *Server) StartSweeper() error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.sweepSpec, func() {
		s.sessions.Sweep(context.Background(), serviceName)
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("session sweeper started", log.String("spec", s.sweepSpec))
	return nil
}

// Start 启动 HTTP 服务与会话清理任务,阻塞直到服务关闭
func (s *Server) Start(addr string) error {
	if err := s.StartSweeper(); err != nil {
		return err
	}
	s.logger.Info("stub api listening", log.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	return s.echo.Shutdown(ctx)
}
