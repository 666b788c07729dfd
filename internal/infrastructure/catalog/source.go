package catalog

import (
	"context"
	"fmt"
	"io"

	"pantry-resolver/internal/core/cache"
	"pantry-resolver/internal/core/pantry"
	"pantry-resolver/internal/infrastructure/config"
)

// Source 提供目錄快照
type Source interface {
	Entries(ctx context.Context) ([]pantry.Entry, error)
}

// Open 依設定建立目錄來源，並以快取包裝
func Open(cfg config.CatalogConfig, cacheManager *cache.Manager) (*CachedSource, io.Closer, error) {
	var (
		src    Source
		closer io.Closer = nopCloser{}
	)

	switch cfg.Source {
	case config.SourceFile, "":
		src = NewFileSource(cfg.Path)
	case config.SourceSQLite:
		s, err := OpenSQLite(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		src, closer = s, s
	default:
		return nil, nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}

	return NewCachedSource(src, cacheManager, cfg.SnapshotTTL), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
