package apiclient

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"be4you/internal/pkg/log"
	"be4you/internal/pkg/notify"
)

// expireSession 401/403 的处理:清除凭据、提示用户、重置到登录入口。
// 并发请求可能同时进入,清除与导航都是幂等的。
func (c *Client) expireSession(ctx context.Context, endpoint string, status int) {
	c.metrics.IncSessionExpired(strconv.Itoa(status))
	c.logger.WarnContext(ctx, "session expired, clearing credentials",
		log.String("endpoint", endpoint),
		log.Int("status_code", status))

	c.store.ClearAuth(ctx)

	if err := c.notifier.Notify(ctx, notify.SessionExpiredNotice()); err != nil {
		c.logger.WarnContext(ctx, "deliver session expired notice failed", log.Any("error", err))
	}

	if c.navDelay <= 0 {
		c.resetNavigation(ctx)
		return
	}

	navCtx := context.WithoutCancel(ctx)
	time.AfterFunc(c.navDelay, func() {
		c.resetNavigation(navCtx)
	})
}

// resetNavigation 导航失败(返回错误或 panic)时退化为一条 alert 提示
func (c *Client) resetNavigation(ctx context.Context) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("navigator panicked: %v", r)
			}
		}()
		return c.navigator.ResetToLogin(ctx)
	}()
	if err == nil {
		return
	}

	c.logger.ErrorContext(ctx, "reset navigation to login failed", log.Any("error", err))
	if nerr := c.notifier.Notify(ctx, notify.SessionAlertNotice()); nerr != nil {
		c.logger.WarnContext(ctx, "deliver session alert failed", log.Any("error", nerr))
	}
}
