// Package apiclient 是所有出站 API 调用的唯一入口:附加 bearer token、归一化响应信封、处理会话过期。
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"be4you/internal/pkg/log"
	"be4you/internal/pkg/metrics"
	"be4you/internal/pkg/notify"
	"be4you/internal/pkg/response"
	"be4you/internal/pkg/trace"
	"be4you/internal/pkg/xerrors"
)

const defaultTimeout = 15 * time.Second

// Client 长生命周期的 API 客户端,进程启动时创建一次并共享
type Client struct {
	baseURL  string
	navDelay time.Duration

	http      *http.Client
	store     TokenStore
	notifier  notify.Notifier
	navigator Navigator
	logger    log.Logger
	metrics   *metrics.ClientMetrics

	inFlight atomic.Int64
}

// New 创建客户端。BaseURL 为空时返回 CodeConfigError
func New(cfg Config, store TokenStore, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, xerrors.NewConfigError("API_URL")
	}
	if store == nil {
		return nil, xerrors.New(xerrors.CodeConfigError, "token store is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		baseURL:   baseURL,
		navDelay:  cfg.NavigationDelay,
		http:      &http.Client{Timeout: timeout},
		store:     store,
		navigator: NavigatorFunc(func(context.Context) error { return nil }),
		logger:    log.GetLogger(),
		metrics:   metrics.DefaultClientMetrics,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "api_client")
	if c.notifier == nil {
		c.notifier = notify.NewLogNotifier(c.logger)
	}
	return c, nil
}

// BaseURL 返回规范化后的 base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// InFlight 返回当前进行中的请求数
func (c *Client) InFlight() int64 {
	return c.inFlight.Load()
}

// Request 发送请求并返回统一信封。任何路径都不会 panic 或返回裸传输错误。
func (c *Client) Request(ctx context.Context, endpoint string, opts RequestOptions) (resp Response[json.RawMessage]) {
	method := strings.ToUpper(opts.Method)
	if method == "" {
		method = http.MethodGet
	}

	ctx, _ = trace.EnsureTraceID(ctx)
	start := time.Now()
	outcome := metrics.OutcomeFailed

	c.inFlight.Add(1)
	c.metrics.IncInProgress()
	defer func() {
		if r := recover(); r != nil {
			appErr := xerrors.New(xerrors.CodeInternalError, fmt.Sprint(r)).
				WithMetadata("endpoint", endpoint)
			log.LogAppError(ctx, c.logger, "api request panicked", appErr)
			resp = response.Failure[json.RawMessage](http.StatusInternalServerError, appErr)
			outcome = metrics.OutcomeFailed
		}
		c.inFlight.Add(-1)
		c.metrics.DecInProgress()
		c.metrics.ObserveRequest(method, outcome, time.Since(start))
	}()

	resp, outcome = c.do(ctx, method, endpoint, opts)
	return resp
}

func (c *Client) do(ctx context.Context, method, endpoint string, opts RequestOptions) (Response[json.RawMessage], string) {
	start := time.Now()
	url := c.url(endpoint)

	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return c.transportFailure(ctx, method, endpoint, err), metrics.OutcomeTransportError
	}
	c.buildHeaders(ctx, req, opts)

	res, err := c.http.Do(req)
	if err != nil {
		return c.transportFailure(ctx, method, endpoint, err), metrics.OutcomeTransportError
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return c.transportFailure(ctx, method, endpoint, err), metrics.OutcomeTransportError
	}

	status := res.StatusCode
	log.LogOutboundRequest(ctx, c.logger, method, endpoint, status, time.Since(start).Milliseconds())

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		c.expireSession(ctx, endpoint, status)
		return response.Failure[json.RawMessage](status, xerrors.NewSessionExpiredError(status)), metrics.OutcomeSessionExpired
	}

	if status < 200 || status > 299 {
		msg := errorText(raw, status)
		appErr := xerrors.NewServerError(status, msg).WithMetadata("endpoint", endpoint)
		log.LogAppError(ctx, c.logger, "api request failed", appErr)
		return response.Failure[json.RawMessage](status, appErr), metrics.OutcomeFailed
	}

	// 只有 No Content 允许空 body,其余空 body 按格式错误处理
	if (status == http.StatusNoContent || status == http.StatusResetContent) && len(bytes.TrimSpace(raw)) == 0 {
		return response.Success[json.RawMessage](nil, status), metrics.OutcomeSuccess
	}

	if ct := res.Header.Get("Content-Type"); !isJSONContentType(ct) {
		c.logger.WarnContext(ctx, "response content type is not json, parsing anyway",
			log.String("endpoint", endpoint),
			log.String("content_type", ct))
	}

	env, err := normalize(raw, status)
	if err != nil {
		appErr := xerrors.NewMalformedResponseError(err).WithMetadata("endpoint", endpoint)
		log.LogAppError(ctx, c.logger, "api response is not valid json", appErr)
		return response.Failure[json.RawMessage](status, appErr), metrics.OutcomeMalformed
	}
	if !env.IsSuccess {
		if appErr, ok := env.Err.(*xerrors.AppError); ok {
			log.LogAppError(ctx, c.logger, "api reported failure", appErr.WithMetadata("endpoint", endpoint))
		}
		return env, metrics.OutcomeFailed
	}
	return env, metrics.OutcomeSuccess
}

func (c *Client) url(endpoint string) string {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return c.baseURL + endpoint
}

// buildHeaders 默认头 -> Authorization -> 追踪头 -> 调用方自定义头(最后合并,可覆盖)
func (c *Client) buildHeaders(ctx context.Context, req *http.Request, opts RequestOptions) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if !opts.SkipAuth {
		if token, ok := c.store.GetToken(ctx); ok && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	req.Header.Set(trace.HeaderTraceID, trace.GetTraceID(ctx))

	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
}

func (c *Client) transportFailure(ctx context.Context, method, endpoint string, err error) Response[json.RawMessage] {
	appErr := xerrors.NewTransportError(err).
		WithMetadata("method", method).
		WithMetadata("endpoint", endpoint)
	log.LogAppError(ctx, c.logger, "api request transport failure", appErr)
	return response.Failure[json.RawMessage](http.StatusInternalServerError, appErr)
}

// normalize 解析 2xx 响应体:带 isSuccess 的对象原样透传,其余包装为成功信封
func normalize(raw []byte, status int) (Response[json.RawMessage], error) {
	if !json.Valid(raw) {
		return Response[json.RawMessage]{}, fmt.Errorf("invalid json body (%d bytes)", len(raw))
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		// 非对象(数组、字符串、数字)
		return response.Success(json.RawMessage(raw), status), nil
	}
	if _, ok := probe["isSuccess"]; !ok {
		return response.Success(json.RawMessage(raw), status), nil
	}

	var env Response[json.RawMessage]
	if err := json.Unmarshal(raw, &env); err != nil {
		return Response[json.RawMessage]{}, fmt.Errorf("decode envelope: %w", err)
	}
	env.StatusCode = status
	if !env.IsSuccess {
		msg := env.Text()
		if msg == "" {
			msg = xerrors.CodeServerError.Message()
			env.Message = &msg
		}
		env.Err = xerrors.NewServerError(status, msg)
	}
	return env, nil
}

// errorText 非 2xx 响应的诊断文本:优先取信封里的 message,其次原始文本,最后是状态行
func errorText(raw []byte, status int) string {
	var env struct {
		Message *string `json:"message"`
	}
	if json.Unmarshal(raw, &env) == nil && env.Message != nil && *env.Message != "" {
		return *env.Message
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return fmt.Sprintf("API error: %d %s", status, http.StatusText(status))
}

func isJSONContentType(ct string) bool {
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
