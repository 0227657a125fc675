// Package authstore 持久化当前登录会话(token + 用户资料),单槽位,尽力而为。
package authstore

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"be4you/internal/model/authmodel"
	"be4you/internal/pkg/log"
	"be4you/internal/pkg/metrics"
)

// DefaultKey 默认存储键
const DefaultKey = "auth_data"

const (
	opSet   = "set"
	opGet   = "get"
	opClear = "clear"

	resultOK       = "ok"
	resultMiss     = "miss"
	resultError    = "error"
	resultRejected = "rejected"
)

// Store 对 Backend 的封装。所有操作只记录失败,不向调用方返回错误。
type Store struct {
	backend Backend
	key     string
	logger  log.Logger
	metrics *metrics.StoreMetrics
}

// Option Store 可选项
type Option func(*Store)

// WithKey 设置存储键
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger 设置 logger
func WithLogger(logger log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics 设置指标收集器
func WithMetrics(m *metrics.StoreMetrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// New 创建 Store
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		key:     DefaultKey,
		logger:  log.GetLogger(),
		metrics: metrics.DefaultStoreMetrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "auth_store", "backend", backend.Name())
	return s
}

// Backend 返回底层存储
func (s *Store) Backend() Backend {
	return s.backend
}

// SetAuth 覆盖保存会话记录。不完整的记录会被拒绝。
func (s *Store) SetAuth(ctx context.Context, rec authmodel.AuthRecord) {
	if !rec.Valid() {
		s.record(opSet, resultRejected)
		s.logger.WarnContext(ctx, "refusing to persist incomplete auth record, clearing slot",
			log.Bool("has_token", rec.Token != ""),
			log.Bool("has_email", rec.User.Email != ""))
		// 旧会话不能留在槽位里冒充新登录
		if err := s.backend.Remove(ctx, s.key); err != nil {
			s.logger.ErrorContext(ctx, "clear auth record after rejection failed", log.Any("error", err))
		}
		return
	}

	data, err := json.Marshal(rec)
	if err != nil {
		s.record(opSet, resultError)
		s.logger.ErrorContext(ctx, "encode auth record failed", log.Any("error", err))
		return
	}

	if err := s.backend.Save(ctx, s.key, data); err != nil {
		s.record(opSet, resultError)
		s.logger.ErrorContext(ctx, "save auth record failed", log.Any("error", err))
		return
	}

	s.record(opSet, resultOK)
	s.logger.DebugContext(ctx, "auth record saved",
		log.String("token_hash", log.TokenHash(rec.Token)))
}

// GetAuth 读取会话记录;不存在、读取失败或解码失败都返回 false
func (s *Store) GetAuth(ctx context.Context) (authmodel.AuthRecord, bool) {
	data, err := s.backend.Load(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		s.record(opGet, resultMiss)
		return authmodel.AuthRecord{}, false
	}
	if err != nil {
		s.record(opGet, resultError)
		s.logger.ErrorContext(ctx, "load auth record failed", log.Any("error", err))
		return authmodel.AuthRecord{}, false
	}

	var rec authmodel.AuthRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		s.record(opGet, resultError)
		s.logger.ErrorContext(ctx, "decode auth record failed", log.Any("error", err))
		return authmodel.AuthRecord{}, false
	}
	if !rec.Valid() {
		s.record(opGet, resultRejected)
		s.logger.WarnContext(ctx, "stored auth record is incomplete")
		return authmodel.AuthRecord{}, false
	}

	s.record(opGet, resultOK)
	return rec, true
}

// GetToken 只返回 token
func (s *Store) GetToken(ctx context.Context) (string, bool) {
	rec, ok := s.GetAuth(ctx)
	if !ok {
		return "", false
	}
	return rec.Token, true
}

// ClearAuth 删除会话记录,重复调用无副作用
func (s *Store) ClearAuth(ctx context.Context) {
	if err := s.backend.Remove(ctx, s.key); err != nil {
		s.record(opClear, resultError)
		s.logger.ErrorContext(ctx, "clear auth record failed", log.Any("error", err))
		return
	}
	s.record(opClear, resultOK)
	s.logger.DebugContext(ctx, "auth record cleared")
}

// Close 释放底层存储持有的连接
func (s *Store) Close() error {
	if c, ok := s.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Store) record(operation, result string) {
	s.metrics.RecordOperation(s.backend.Name(), operation, result)
}
