package pantry

import (
	"sort"
	"strings"
)

// Index 食材名稱（已 Fold）到目錄 ID 的對應。
// 不可並發使用：Populate 會清空整個索引，每個請求應建立自己的 Index。
type Index struct {
	entries  map[string]string
	synonyms map[string]string
}

// PopulateStats 一次 Populate 的統計
type PopulateStats struct {
	Total    int `json:"total"`
	Staples  int `json:"staples"`
	Standard int `json:"standard"`
	Skipped  int `json:"skipped"`
	Invalid  int `json:"invalid"`
	Synonyms int `json:"synonyms"`
}

// NewIndex 建立空索引
func NewIndex() *Index {
	return &Index{
		entries:  make(map[string]string),
		synonyms: make(map[string]string),
	}
}

// Populate 清空索引後以兩輪方式重建：
// 第一輪寫入所有常備食材；第二輪寫入其他食材，
// 但名稱已存在、或正規化後的名稱已存在者跳過。
// 最後重新套用同義詞覆寫。
func (ix *Index) Populate(entries []Entry) PopulateStats {
	var stats PopulateStats
	ix.entries = make(map[string]string, len(entries)+len(ix.synonyms))

	for _, e := range entries {
		if !e.IsStaple {
			continue
		}
		if !e.Valid() {
			stats.Invalid++
			continue
		}
		ix.entries[Fold(e.Name)] = strings.TrimSpace(e.ID)
		stats.Staples++
	}

	for _, e := range entries {
		if e.IsStaple {
			continue
		}
		if !e.Valid() {
			stats.Invalid++
			continue
		}
		key := Fold(e.Name)
		if _, ok := ix.entries[key]; ok {
			stats.Skipped++
			continue
		}
		if normalized := Normalize(e.Name); normalized != key {
			if _, ok := ix.entries[normalized]; ok {
				stats.Skipped++
				continue
			}
		}
		ix.entries[key] = strings.TrimSpace(e.ID)
		stats.Standard++
	}

	for name, id := range ix.synonyms {
		ix.entries[name] = id
	}
	stats.Synonyms = len(ix.synonyms)
	stats.Total = len(ix.entries)
	return stats
}

// LoadSynonyms 將同義詞加入覆寫層並立即寫入索引
func (ix *Index) LoadSynonyms(synonyms map[string]string) int {
	n := 0
	for name, id := range synonyms {
		if ix.AddSynonym(name, id) {
			n++
		}
	}
	return n
}

// AddSynonym 只更新記憶體中的索引；需要持久化時使用 pantry.AddSynonym
func (ix *Index) AddSynonym(name, id string) bool {
	key := Fold(name)
	id = strings.TrimSpace(id)
	if key == "" || id == "" {
		return false
	}
	ix.synonyms[key] = id
	ix.entries[key] = id
	return true
}

// Lookup 以 Fold 後的名稱精確查詢
func (ix *Index) Lookup(name string) (string, bool) {
	id, ok := ix.entries[Fold(name)]
	return id, ok
}

// Contains 索引中是否存在此 ID
func (ix *Index) Contains(id string) bool {
	for _, v := range ix.entries {
		if v == id {
			return true
		}
	}
	return false
}

// Len 索引中的名稱數量
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Keys 排序後的所有名稱
func (ix *Index) Keys() []string {
	keys := make([]string, 0, len(ix.entries))
	for k := range ix.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Synonyms 目前的同義詞覆寫層（複本）
func (ix *Index) Synonyms() map[string]string {
	out := make(map[string]string, len(ix.synonyms))
	for k, v := range ix.synonyms {
		out[k] = v
	}
	return out
}

// Reset 清空索引與同義詞
func (ix *Index) Reset() {
	ix.entries = make(map[string]string)
	ix.synonyms = make(map[string]string)
}
