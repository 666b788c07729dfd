package synonym

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"pantry-resolver/internal/core/pantry"
	"pantry-resolver/internal/infrastructure/config"
	"pantry-resolver/internal/pkg/common"
)

// Store 可關閉的同義詞儲存
type Store interface {
	pantry.SynonymStore
	io.Closer
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*RedisStore)(nil)
	_ Store = (*BadgerStore)(nil)
)

// Open 依設定建立同義詞儲存
func Open(ctx context.Context, cfg config.SynonymsConfig) (Store, error) {
	var (
		store Store
		err   error
	)

	switch cfg.Backend {
	case config.BackendFile, "":
		store = NewFileStore(cfg.Path)
	case config.BackendRedis:
		store, err = NewRedisStore(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.RedisKey,
		})
	case config.BackendBadger:
		store, err = NewBadgerStore(cfg.BadgerDir)
	default:
		return nil, fmt.Errorf("unknown synonyms backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	common.LogInfo("Synonym store opened", zap.String("backend", cfg.Backend))
	return store, nil
}
