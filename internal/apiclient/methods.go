package apiclient

import (
	"context"
	"encoding/json"
	"net/http"

	"be4you/internal/pkg/response"
	"be4you/internal/pkg/xerrors"
)

// CallOption 调整单次请求
type CallOption func(*RequestOptions)

// SkipAuth 不附带 Authorization 头
func SkipAuth() CallOption {
	return func(o *RequestOptions) {
		o.SkipAuth = true
	}
}

// WithHeader 追加请求头,可覆盖默认值
func WithHeader(key, value string) CallOption {
	return func(o *RequestOptions) {
		if o.Headers == nil {
			o.Headers = make(map[string]string)
		}
		o.Headers[key] = value
	}
}

// Get 发送 GET 请求
func (c *Client) Get(ctx context.Context, endpoint string, opts ...CallOption) Response[json.RawMessage] {
	return c.Request(ctx, endpoint, buildOptions(http.MethodGet, nil, opts))
}

// Post 发送 POST 请求, body 序列化为 JSON
func (c *Client) Post(ctx context.Context, endpoint string, body any, opts ...CallOption) Response[json.RawMessage] {
	return c.withBody(ctx, http.MethodPost, endpoint, body, opts)
}

// Put 发送 PUT 请求, body 序列化为 JSON
func (c *Client) Put(ctx context.Context, endpoint string, body any, opts ...CallOption) Response[json.RawMessage] {
	return c.withBody(ctx, http.MethodPut, endpoint, body, opts)
}

// Delete 发送 DELETE 请求
func (c *Client) Delete(ctx context.Context, endpoint string, opts ...CallOption) Response[json.RawMessage] {
	return c.Request(ctx, endpoint, buildOptions(http.MethodDelete, nil, opts))
}

func (c *Client) withBody(ctx context.Context, method, endpoint string, body any, opts []CallOption) Response[json.RawMessage] {
	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			appErr := xerrors.NewWithError(xerrors.CodeInternalError, err.Error(), err).
				WithMetadata("endpoint", endpoint)
			return response.Failure[json.RawMessage](http.StatusInternalServerError, appErr)
		}
	}
	return c.Request(ctx, endpoint, buildOptions(method, data, opts))
}

func buildOptions(method string, body []byte, opts []CallOption) RequestOptions {
	o := RequestOptions{Method: method, Body: body}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// GetAs 发送 GET 并把 data 解码为 T
func GetAs[T any](ctx context.Context, c *Client, endpoint string, opts ...CallOption) Response[T] {
	return Decode[T](c.Get(ctx, endpoint, opts...))
}

// PostAs 发送 POST 并把 data 解码为 T
func PostAs[T any](ctx context.Context, c *Client, endpoint string, body any, opts ...CallOption) Response[T] {
	return Decode[T](c.Post(ctx, endpoint, body, opts...))
}

// PutAs 发送 PUT 并把 data 解码为 T
func PutAs[T any](ctx context.Context, c *Client, endpoint string, body any, opts ...CallOption) Response[T] {
	return Decode[T](c.Put(ctx, endpoint, body, opts...))
}

// DeleteAs 发送 DELETE 并把 data 解码为 T
func DeleteAs[T any](ctx context.Context, c *Client, endpoint string, opts ...CallOption) Response[T] {
	return Decode[T](c.Delete(ctx, endpoint, opts...))
}

// Decode 把原始信封的 data 解码为 T;解码失败视为响应格式错误
func Decode[T any](env Response[json.RawMessage]) Response[T] {
	var zero T
	if !env.IsSuccess || len(env.Data) == 0 || string(env.Data) == "null" {
		return response.Recast(env, zero)
	}

	var data T
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return response.Failure[T](env.StatusCode, xerrors.NewMalformedResponseError(err))
	}
	return response.Recast(env, data)
}
