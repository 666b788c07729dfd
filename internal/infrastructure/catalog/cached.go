package catalog

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"pantry-resolver/internal/core/cache"
	"pantry-resolver/internal/core/pantry"
	"pantry-resolver/internal/pkg/common"
)

const snapshotKey = "snapshot"

// CachedSource 將底層來源的快照暫存於快取管理器
type CachedSource struct {
	source Source
	cache  *cache.Manager
	ttl    time.Duration
}

// NewCachedSource cacheManager 為 nil 或停用時每次都讀取底層來源
func NewCachedSource(source Source, cacheManager *cache.Manager, ttl time.Duration) *CachedSource {
	return &CachedSource{source: source, cache: cacheManager, ttl: ttl}
}

// Entries 回傳快照；呼叫端不可修改回傳的切片
func (s *CachedSource) Entries(ctx context.Context) ([]pantry.Entry, error) {
	if s.cache.Enabled() {
		if v, err := s.cache.Get(ctx, cache.NamespaceCatalog, snapshotKey); err == nil {
			if entries, ok := v.([]pantry.Entry); ok {
				return entries, nil
			}
		} else if !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("Catalog cache lookup failed", zap.Error(err))
		}
	}

	start := time.Now()
	entries, err := s.source.Entries(ctx)
	if err != nil {
		return nil, common.Wrap(common.ErrCatalogUnavailable, err)
	}
	common.LogInfo("Catalog snapshot loaded",
		zap.Int("entries", len(entries)),
		zap.Duration("duration", time.Since(start)),
	)

	if s.cache.Enabled() {
		if err := s.cache.SetWithTTL(ctx, cache.NamespaceCatalog, snapshotKey, entries, s.ttl); err != nil {
			common.LogWarn("Failed to cache catalog snapshot", zap.Error(err))
		}
	}
	return entries, nil
}

// Invalidate 清除快照，下次讀取時重新載入
func (s *CachedSource) Invalidate(ctx context.Context) {
	s.cache.Delete(ctx, cache.NamespaceCatalog, snapshotKey)
	common.LogInfo("Catalog snapshot invalidated")
}

// Source 底層來源
func (s *CachedSource) Source() Source {
	return s.source
}
