package recipe

import (
	"pantry-resolver/internal/core/pantry"
	"pantry-resolver/internal/pkg/common"
)

// 食譜解析狀態
const (
	StatusSuccess            = "SUCCESS"
	StatusMissingIngredients = "MISSING_INGREDIENTS"
)

// 食材 ID 的來源
const (
	SourceProvided = "provided" // 呼叫端或 LLM 預先提供且存在於目錄
	SourceMatched  = "matched"  // 以名稱比對取得
)

// ResolvedIngredient 已對應到目錄的食材
type ResolvedIngredient struct {
	common.Ingredient
	Component string       `json:"component"`
	Source    string       `json:"source"`
	Stage     pantry.Stage `json:"stage,omitempty"`
	Score     int          `json:"score,omitempty"`
}

// MissingIngredient 無法對應的食材，附上候選供人工選擇
type MissingIngredient struct {
	Name        string              `json:"name"`
	Amount      common.Quantity     `json:"amount"`
	Unit        string              `json:"unit"`
	Component   string              `json:"component"`
	Suggestions []pantry.Suggestion `json:"suggestions"`
}

// RecipeResolution 整份食譜的解析結果
type RecipeResolution struct {
	Status      string               `json:"status"`
	Ingredients []ResolvedIngredient `json:"ingredients"`
	Missing     []MissingIngredient  `json:"missing"`
}

// NameResolution 單一名稱的比對結果
type NameResolution struct {
	Name    string       `json:"name"`
	ID      string       `json:"id,omitempty"`
	Matched bool         `json:"matched"`
	Key     string       `json:"key,omitempty"`
	Stage   pantry.Stage `json:"stage,omitempty"`
	Score   int          `json:"score,omitempty"`
}

// CatalogStats 目錄與索引統計
type CatalogStats struct {
	Entries int                  `json:"entries"`
	Index   pantry.PopulateStats `json:"index"`
	Policy  string               `json:"import_policy"`
}
