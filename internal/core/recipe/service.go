package recipe

import (
	"context"

	"go.uber.org/zap"

	"pantry-resolver/internal/core/pantry"
	"pantry-resolver/internal/infrastructure/config"
	"pantry-resolver/internal/pkg/common"
)

// CatalogSource 目錄快照來源
type CatalogSource interface {
	Entries(ctx context.Context) ([]pantry.Entry, error)
}

// Session 單次請求使用的索引；Populate 會清空索引，因此不跨請求共用
type Session struct {
	Index    *pantry.Index
	Resolver *pantry.Resolver
	Stats    pantry.PopulateStats
	entries  int
	ids      map[string]struct{}
}

// HasID 目錄快照（套用匯入政策後）是否包含此 ID
func (s *Session) HasID(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// sessionFactory 建立 Session 的共用設定
type sessionFactory struct {
	catalog  CatalogSource
	synonyms pantry.SynonymStore
	policy   pantry.ImportPolicy
	resolver config.ResolverConfig
}

// NewSession 快照 → 匯入政策 → 同義詞覆寫層 → 建立索引
func (f *sessionFactory) NewSession(ctx context.Context) (*Session, error) {
	entries, err := f.catalog.Entries(ctx)
	if err != nil {
		return nil, err
	}
	entries = pantry.FilterImported(entries, f.policy)

	ix := pantry.NewIndex()
	if f.synonyms != nil {
		// 同義詞讀取失敗不影響一般比對
		if _, err := pantry.LoadSynonyms(ctx, f.synonyms, ix); err != nil {
			common.LogError("Failed to load synonyms, continuing without overrides", zap.Error(err))
		}
	}
	stats := ix.Populate(entries)

	ids := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Valid() {
			ids[e.ID] = struct{}{}
		}
	}

	common.LogInfo("Catalog index populated",
		zap.Int("total", stats.Total),
		zap.Int("staples", stats.Staples),
		zap.Int("standard", stats.Standard),
		zap.Int("skipped", stats.Skipped),
		zap.Int("synonyms", stats.Synonyms),
		zap.String("import_policy", f.policy.String()),
	)

	return &Session{
		Index:    ix,
		Resolver: pantry.NewResolver(ix, pantry.WithThreshold(f.resolver.Threshold)),
		Stats:    stats,
		entries:  len(entries),
		ids:      ids,
	}, nil
}

func (f *sessionFactory) topN(n int) int {
	if n > 0 {
		return n
	}
	if f.resolver.Suggestions > 0 {
		return f.resolver.Suggestions
	}
	return pantry.DefaultSuggestions
}
