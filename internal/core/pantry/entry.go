package pantry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ImportedPrefix 自動匯入食材的 ID 前綴，這類 ID 不應用於後續比對
const ImportedPrefix = "IMP-"

// Entry 目錄中的一個可解析食材
type Entry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsStaple bool   `json:"is_staple"`
}

// IsImported 是否為自動匯入的食材
func (e Entry) IsImported() bool {
	return IsImportedID(e.ID)
}

// Valid 名稱與 ID 皆非空
func (e Entry) Valid() bool {
	return strings.TrimSpace(e.Name) != "" && strings.TrimSpace(e.ID) != ""
}

// IsImportedID 判斷 ID 是否帶有自動匯入前綴
func IsImportedID(id string) bool {
	return strings.HasPrefix(id, ImportedPrefix)
}

// 簡寫與完整欄位名稱
var (
	idKeys     = [2]string{"i", "id"}
	nameKeys   = [2]string{"n", "name"}
	stapleKeys = [2]string{"s", "is_staple"}
)

// ParseEntry 將簡寫（i/n/s）或完整（id/name/is_staple）欄位的記錄轉為 Entry，
// 兩者同時存在時以簡寫為準
func ParseEntry(raw map[string]any) Entry {
	return Entry{
		ID:       stringField(raw, idKeys),
		Name:     stringField(raw, nameKeys),
		IsStaple: boolField(raw, stapleKeys),
	}
}

// UnmarshalJSON 接受兩種欄位命名
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("invalid catalog entry: %w", err)
	}
	*e = ParseEntry(raw)
	return nil
}

func lookup(raw map[string]any, keys [2]string) (any, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func stringField(raw map[string]any, keys [2]string) string {
	v, ok := lookup(raw, keys)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}

func boolField(raw map[string]any, keys [2]string) bool {
	v, ok := lookup(raw, keys)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	default:
		return false
	}
}

// ImportPolicy 呼叫端決定是否接受自動匯入的食材
type ImportPolicy int

const (
	// IncludeImported 上游已過濾停用資料時使用
	IncludeImported ImportPolicy = iota
	// ExcludeImported 完全排除 IMP- 前綴的食材
	ExcludeImported
)

// String 實現 fmt.Stringer
func (p ImportPolicy) String() string {
	if p == ExcludeImported {
		return "exclude"
	}
	return "include"
}

// FilterImported 依政策過濾自動匯入的食材
func FilterImported(entries []Entry, policy ImportPolicy) []Entry {
	if policy != ExcludeImported {
		return entries
	}
	filtered := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsImported() {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}
