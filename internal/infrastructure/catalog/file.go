package catalog

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"pantry-resolver/internal/core/pantry"
	"pantry-resolver/internal/pkg/common"
)

// FileSource 從 JSON 快照檔讀取目錄，
// 接受 {"ingredients":[...]} 或直接的陣列，欄位可為簡寫或完整名稱
type FileSource struct {
	path string
}

// NewFileSource 建立檔案來源
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Entries 每次呼叫都重新讀檔
func (s *FileSource) Entries(ctx context.Context) ([]pantry.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", s.path, err)
	}
	entries, err := ParseSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", s.path, err)
	}
	return entries, nil
}

// ParseSnapshot 解析 JSON 快照
func ParseSnapshot(data []byte) ([]pantry.Entry, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []pantry.Entry{}, nil
	}

	if data[0] == '[' {
		var entries []pantry.Entry
		if err := common.ParseJSONBytes(data, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}

	var wrapped struct {
		Ingredients []pantry.Entry `json:"ingredients"`
	}
	if err := common.ParseJSONBytes(data, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Ingredients == nil {
		return []pantry.Entry{}, nil
	}
	return wrapped.Ingredients, nil
}
