package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"be4you/internal/pkg/log"

	"github.com/nats-io/nats.go"
)

// Kind 通知类型
type Kind string

const (
	KindSessionExpired Kind = "session_expired"
	KindSessionAlert   Kind = "session_alert" // 导航失败时的兜底提示
	KindLogout         Kind = "logout"
)

// Level 通知的展示级别
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notice 面向用户的短暂提示（移动端的 toast / alert）
type Notice struct {
	Kind       Kind          `json:"kind"`
	Level      Level         `json:"level"`
	Title      string        `json:"title"`
	Body       string        `json:"body"`
	Visibility time.Duration `json:"visibility_ms"`
	At         time.Time     `json:"at"`
}

// MarshalJSON 以毫秒输出 Visibility
func (n Notice) MarshalJSON() ([]byte, error) {
	type alias Notice
	return json.Marshal(struct {
		alias
		Visibility int64 `json:"visibility_ms"`
	}{alias: alias(n), Visibility: n.Visibility.Milliseconds()})
}

// SessionExpiredNotice 会话过期提示
func SessionExpiredNotice() Notice {
	return Notice{
		Kind:       KindSessionExpired,
		Level:      LevelError,
		Title:      "Session expired",
		Body:       "Please log in again",
		Visibility: 3 * time.Second,
		At:         time.Now(),
	}
}

// SessionAlertNotice 导航失败时的兜底提示
func SessionAlertNotice() Notice {
	return Notice{
		Kind:  KindSessionAlert,
		Level: LevelError,
		Title: "Session error",
		Body:  "Your session has ended. Please restart the app and log in again.",
		At:    time.Now(),
	}
}

// LogoutNotice 主动登出提示
func LogoutNotice() Notice {
	return Notice{
		Kind:       KindLogout,
		Level:      LevelInfo,
		Title:      "Logged out",
		Visibility: 3 * time.Second,
		At:         time.Now(),
	}
}

// Notifier 通知投递接口
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

// NotifierFunc 函数适配器
type NotifierFunc func(ctx context.Context, n Notice) error

func (f NotifierFunc) Notify(ctx context.Context, n Notice) error {
	return f(ctx, n)
}

// LogNotifier 只把通知写入结构化日志
type LogNotifier struct {
	logger log.Logger
}

// NewLogNotifier 创建日志通知器
func NewLogNotifier(logger log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &LogNotifier{logger: logger.With("component", "notifier")}
}

func (l *LogNotifier) Notify(ctx context.Context, n Notice) error {
	l.logger.InfoContext(ctx, "user notice",
		log.String("kind", string(n.Kind)),
		log.String("title", n.Title),
		log.String("body", n.Body))
	return nil
}

// ConsoleNotifier 把通知写到终端（CLI 使用 stderr）
type ConsoleNotifier struct {
	w io.Writer
}

// NewConsoleNotifier 创建终端通知器
func NewConsoleNotifier(w io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{w: w}
}

func (c *ConsoleNotifier) Notify(_ context.Context, n Notice) error {
	if n.Body == "" {
		_, err := fmt.Fprintf(c.w, "[%s] %s\n", n.Level, n.Title)
		return err
	}
	_, err := fmt.Fprintf(c.w, "[%s] %s: %s\n", n.Level, n.Title, n.Body)
	return err
}

// NATSNotifier 把通知发布到 NATS 主题，供其他进程（桌面提醒、审计）订阅
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
}

// NewNATSNotifier 创建 NATS 通知器，conn 为 nil 时静默降级
func NewNATSNotifier(conn *nats.Conn, subject string) *NATSNotifier {
	if subject == "" {
		subject = "be4you.notice"
	}
	return &NATSNotifier{conn: conn, subject: subject}
}

// Subject 返回具体发布的主题：<subject>.<kind>
func (p *NATSNotifier) Subject(kind Kind) string {
	return p.subject + "." + string(kind)
}

func (p *NATSNotifier) Notify(_ context.Context, n Notice) error {
	if p.conn == nil {
		return nil
	}
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notice failed: %w", err)
	}
	return p.conn.Publish(p.Subject(n.Kind), data)
}

// Multi 依次投递给多个通知器，合并所有错误
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notice) error {
	var errs []error
	for _, notifier := range m {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
