package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Quantity 食材數量，接受 JSON 數字或字串（LLM 常回傳 "1.5"）
type Quantity float64

// UnmarshalJSON 實現 json.Unmarshaler
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*q = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*q = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// 「適量」之類的非數字描述視為 0
			*q = 0
			return nil
		}
		*q = Quantity(f)
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid quantity %s: %w", data, err)
	}
	*q = Quantity(f)
	return nil
}

// Ingredient 食譜中的食材（LLM 或使用者提供）
type Ingredient struct {
	Name     string   `json:"name"`
	Amount   Quantity `json:"amount"`
	Unit     string   `json:"unit"`
	PantryID string   `json:"pantry_id,omitempty"` // LLM 預先對應的目錄 ID，可能為空
}

// IngredientGroup 食譜元件（例如「醬汁」「主菜」）及其食材
type IngredientGroup struct {
	Component   string       `json:"component"`
	Ingredients []Ingredient `json:"ingredients"`
}
