package authstore

import (
	"context"
	"fmt"

	"be4you/internal/pkg/config"
	"be4you/internal/pkg/log"
	"be4you/internal/pkg/redis"
	"be4you/internal/pkg/xerrors"
)

// Open 按配置选择存储后端并创建 Store
func Open(ctx context.Context, cfg config.Config, logger log.Logger) (*Store, error) {
	var backend Backend

	switch cfg.StoreBackend {
	case config.StoreBackendFile, "":
		backend = NewFileBackend(cfg.StoreDir)
	case config.StoreBackendMemory:
		backend = NewMemoryBackend()
	case config.StoreBackendRedis:
		client, err := redis.NewClient(ctx, cfg.RedisURL, "be4you-authstore")
		if err != nil {
			return nil, xerrors.NewWithError(xerrors.CodeStorageError, "connect auth store", err)
		}
		backend = NewRedisBackend(client, cfg.StoreTTL)
	default:
		return nil, xerrors.New(xerrors.CodeConfigError,
			fmt.Sprintf("unsupported AUTH_STORE_BACKEND %q", cfg.StoreBackend)).
			WithMetadata("config_key", "AUTH_STORE_BACKEND")
	}

	return New(backend, WithKey(cfg.StoreKey), WithLogger(logger)), nil
}
