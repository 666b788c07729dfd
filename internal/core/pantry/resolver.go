package pantry

import (
	"sort"

	"go.uber.org/zap"

	"pantry-resolver/internal/pkg/common"
)

const (
	// DefaultThreshold 模糊比對的最低接受分數（0-100）
	DefaultThreshold = 85
	// DefaultSuggestions Suggest 預設回傳筆數
	DefaultSuggestions = 3
)

// Stage 比對成功的階段
type Stage string

const (
	StageNormalizedExact Stage = "normalized_exact"
	StageNormalizedFuzzy Stage = "normalized_fuzzy"
	StageExact           Stage = "exact"
	StageFuzzy           Stage = "fuzzy"
)

// Match 單一比對結果
type Match struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Query string `json:"query"`
	Score int    `json:"score"`
	Stage Stage  `json:"stage"`
}

// Suggestion 提供給人工選擇的候選
type Suggestion struct {
	Name  string `json:"name"`
	ID    string `json:"id"`
	Score int    `json:"score"`
}

// Resolver 在 Index 上執行精確/模糊比對
type Resolver struct {
	index     *Index
	threshold int
	primary   Scorer
	secondary Scorer
}

// Option Resolver 設定
type Option func(*Resolver)

// WithThreshold 設定模糊比對門檻
func WithThreshold(threshold int) Option {
	return func(r *Resolver) {
		if threshold > 0 {
			r.threshold = threshold
		}
	}
}

// WithScorers 替換兩階段的評分函式
func WithScorers(primary, secondary Scorer) Option {
	return func(r *Resolver) {
		if primary != nil {
			r.primary = primary
		}
		if secondary != nil {
			r.secondary = secondary
		}
	}
}

// NewResolver 建立 Resolver
func NewResolver(index *Index, opts ...Option) *Resolver {
	r := &Resolver{
		index:     index,
		threshold: DefaultThreshold,
		primary:   WeightedRatio,
		secondary: TokenSetRatio,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Threshold 目前的門檻
func (r *Resolver) Threshold() int {
	return r.threshold
}

// Resolve 回傳最佳比對的目錄 ID
func (r *Resolver) Resolve(name string) (string, bool) {
	m, ok := r.Match(name)
	if !ok {
		return "", false
	}
	return m.ID, true
}

// Match 依序嘗試：正規化精確、正規化模糊、原始精確、原始模糊
func (r *Resolver) Match(name string) (Match, bool) {
	raw := Fold(name)
	if raw == "" {
		return Match{}, false
	}
	if r.index.Len() == 0 {
		common.LogWarn("Resolve called on empty catalog index", zap.String("name", name))
		return Match{}, false
	}

	normalized := Normalize(name)
	if normalized != "" && normalized != raw {
		if id, ok := r.index.Lookup(normalized); ok {
			return Match{ID: id, Key: normalized, Query: normalized, Score: 100, Stage: StageNormalizedExact}, true
		}
		if m, ok := r.fuzzy(normalized); ok {
			m.Stage = StageNormalizedFuzzy
			return m, true
		}
	}

	if id, ok := r.index.Lookup(raw); ok {
		return Match{ID: id, Key: raw, Query: raw, Score: 100, Stage: StageExact}, true
	}
	if m, ok := r.fuzzy(raw); ok {
		m.Stage = StageFuzzy
		return m, true
	}
	return Match{}, false
}

// fuzzy 兩階段：先用主要評分，未達門檻再用 token 集合評分。
// 同一階段有多個 key 並列最高分時不自動採用，除非其中恰好一個是查詢的預設形態。
func (r *Resolver) fuzzy(query string) (Match, bool) {
	keys := r.index.Keys()
	if len(keys) == 0 {
		return Match{}, false
	}
	for _, scorer := range []Scorer{r.primary, r.secondary} {
		top := topCandidates(query, keys, scorer)
		if top[0].Score < r.threshold {
			continue
		}
		best, ok := pickUnambiguous(query, top)
		if !ok {
			common.LogDebug("Ambiguous fuzzy match",
				zap.String("query", query),
				zap.Int("score", top[0].Score),
				zap.Int("candidates", len(top)),
			)
			continue
		}
		id, _ := r.index.Lookup(best.Key)
		return Match{ID: id, Key: best.Key, Query: query, Score: best.Score}, true
	}
	return Match{}, false
}

// topCandidates 回傳所有並列最高分的 key（依字母排序）
func topCandidates(query string, keys []string, scorer Scorer) []Candidate {
	var top []Candidate
	for _, k := range keys {
		score := scorer(query, k)
		switch {
		case len(top) == 0 || score > top[0].Score:
			top = append(top[:0], Candidate{Key: k, Score: score})
		case score == top[0].Score:
			top = append(top, Candidate{Key: k, Score: score})
		}
	}
	return top
}

func pickUnambiguous(query string, top []Candidate) (Candidate, bool) {
	if len(top) == 1 {
		return top[0], true
	}
	var base []Candidate
	for _, c := range top {
		if IsBaseFormOf(c.Key, query) {
			base = append(base, c)
		}
	}
	if len(base) == 1 {
		return base[0], true
	}
	return Candidate{}, false
}

// Suggest 回傳前 topN 名候選，不套用門檻
func (r *Resolver) Suggest(name string, topN int) []Suggestion {
	if topN <= 0 {
		topN = DefaultSuggestions
	}
	raw := Fold(name)
	if raw == "" || r.index.Len() == 0 {
		return []Suggestion{}
	}

	queries := []string{raw}
	if normalized := Normalize(name); normalized != "" && normalized != raw {
		queries = append(queries, normalized)
	}

	keys := r.index.Keys()
	best := make(map[string]int)
	for _, q := range queries {
		for _, scorer := range []Scorer{r.primary, r.secondary} {
			for _, c := range Extract(q, keys, scorer, topN*2) {
				if s, ok := best[c.Key]; !ok || c.Score > s {
					best[c.Key] = c.Score
				}
			}
		}
	}

	merged := make([]Candidate, 0, len(best))
	for k, s := range best {
		merged = append(merged, Candidate{Key: k, Score: s})
	}
	// 同分時查詢的預設形態優先，其次依字母
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		bi, bj := isBaseFormOfAny(merged[i].Key, queries), isBaseFormOfAny(merged[j].Key, queries)
		if bi != bj {
			return bi
		}
		return merged[i].Key < merged[j].Key
	})
	if len(merged) > topN {
		merged = merged[:topN]
	}

	out := make([]Suggestion, 0, len(merged))
	for _, c := range merged {
		id, _ := r.index.Lookup(c.Key)
		out = append(out, Suggestion{Name: c.Key, ID: id, Score: c.Score})
	}
	return out
}

func isBaseFormOfAny(key string, queries []string) bool {
	for _, q := range queries {
		if IsBaseFormOf(key, q) {
			return true
		}
	}
	return false
}
