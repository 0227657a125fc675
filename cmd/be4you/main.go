// File: cmd/be4you/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"be4you/internal/apiclient"
	"be4you/internal/authstore"
	activityservice "be4you/internal/modules/activity/service"
	authservice "be4you/internal/modules/auth/service"
	"be4you/internal/pkg/config"
	"be4you/internal/pkg/log"
	"be4you/internal/pkg/notify"

	"github.com/nats-io/nats.go"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// app 一次命令执行所需的全部依赖
type app struct {
	auth       *authservice.AuthService
	activities *activityservice.ActivityService
	logger     log.Logger
	stdout     io.Writer
	stderr     io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(stderr)
		if len(args) == 0 {
			return exitUsage
		}
		return exitOK
	}

	cfg := config.Load()
	log.Init(log.ParseLevel(cfg.LogLevel), cfg.Environment)
	logger := log.GetLogger().With("module", "be4you-cli")
	logger.Debug("configuration loaded", log.Any("config", cfg.LogFields()))

	a, cleanup, err := newApp(ctx, cfg, logger, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "be4you: %v\n", err)
		return exitFailure
	}
	defer cleanup()

	return a.dispatch(ctx, args[0], args[1:])
}

func newApp(ctx context.Context, cfg config.Config, logger log.Logger, stdout, stderr io.Writer) (*app, func(), error) {
	store, err := authstore.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	notifiers := notify.Multi{notify.NewConsoleNotifier(stderr)}
	nc := connectNATS(cfg, logger)
	if nc != nil {
		notifiers = append(notifiers, notify.NewNATSNotifier(nc, cfg.NATSNoticeSubject))
	}

	cleanup := func() {
		if nc != nil {
			if err := nc.Drain(); err != nil {
				logger.Warn("drain nats connection failed", log.Any("error", err))
			}
		}
		if err := store.Close(); err != nil {
			logger.Warn("close auth store failed", log.Any("error", err))
		}
	}

	navigator := apiclient.NavigatorFunc(func(context.Context) error {
		_, err := fmt.Fprintln(stderr, "Please sign in again: run `be4you login -email <email> -password <password>`")
		return err
	})

	if cfg.NavigationDelay > 0 {
		logger.Debug("NAVIGATION_DELAY ignored, the CLI exits before a delayed reset could run",
			log.String("navigation_delay", cfg.NavigationDelay.String()))
	}

	// CLI 进程在命令结束后立即退出,导航重置必须同步执行
	client, err := apiclient.New(apiclient.Config{
		BaseURL: cfg.APIURL,
		Timeout: cfg.HTTPTimeout,
	}, store,
		apiclient.WithNotifier(notifiers),
		apiclient.WithNavigator(navigator),
		apiclient.WithLogger(logger),
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return &app{
		auth:       authservice.NewAuthService(client, store, notifiers, logger),
		activities: activityservice.NewActivityService(client, logger),
		logger:     logger,
		stdout:     stdout,
		stderr:     stderr,
	}, cleanup, nil
}

// connectNATS 仅在配置了 NATS_URL 时连接;连接失败只降级为本地提示
func connectNATS(cfg config.Config, logger log.Logger) *nats.Conn {
	if cfg.NATSURL == "" {
		return nil
	}
	nc, err := nats.Connect(cfg.NATSURL,
		nats.Name("be4you-cli"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(1*time.Second),
		nats.Timeout(2*time.Second),
	)
	if err != nil {
		logger.Warn("connect to nats failed, notices stay local", log.Any("error", err))
		return nil
	}
	logger.Debug("connected to nats", log.String("subject", cfg.NATSNoticeSubject))
	return nc
}
