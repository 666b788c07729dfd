package synonym

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"pantry-resolver/internal/pkg/common"
)

// lockRetryDelay 取得檔案鎖失敗時的重試間隔
const lockRetryDelay = 20 * time.Millisecond

// FileStore 以 JSON 物件檔案保存同義詞（name -> id）
//
// 同一檔案可能同時被 API 服務與 pantryctl 寫入，因此除了行程內的 mutex，
// 還在旁邊的 <path>.lock 上持有 advisory 檔案鎖。
type FileStore struct {
	path string
	mu   sync.Mutex
	lock *flock.Flock
}

// NewFileStore 建立檔案儲存，檔案不存在時視為空集合
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, lock: flock.New(path + ".lock")}
}

// Load 讀取全部同義詞，持有共享鎖
func (s *FileStore) Load(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.acquire(ctx, false)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return s.read()
}

// Put 讀取、修改、寫回，整段持有獨佔鎖
func (s *FileStore) Put(ctx context.Context, name, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer unlock()

	synonyms, err := s.read()
	if err != nil {
		return err
	}
	synonyms[name] = id
	return s.write(synonyms)
}

// Close 實現 io.Closer
func (s *FileStore) Close() error {
	return nil
}

// acquire 取得檔案鎖，直到 ctx 結束為止
func (s *FileStore) acquire(ctx context.Context, exclusive bool) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create synonyms dir: %w", err)
	}

	var (
		locked bool
		err    error
	)
	if exclusive {
		locked, err = s.lock.TryLockContext(ctx, lockRetryDelay)
	} else {
		locked, err = s.lock.TryRLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock synonyms file: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("failed to lock synonyms file %s", s.lock.Path())
	}

	return func() {
		if err := s.lock.Unlock(); err != nil {
			common.LogWarn("Failed to unlock synonyms file", zap.String("path", s.lock.Path()), zap.Error(err))
		}
	}, nil
}

func (s *FileStore) read() (map[string]string, error) {
	synonyms := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return synonyms, nil
		}
		return nil, fmt.Errorf("failed to read synonyms file: %w", err)
	}
	if len(data) == 0 {
		return synonyms, nil
	}
	if err := common.ParseJSONBytes(data, &synonyms); err != nil {
		return nil, fmt.Errorf("failed to parse synonyms file %s: %w", s.path, err)
	}
	return synonyms, nil
}

// write 先寫暫存檔再改名，避免寫到一半的檔案
func (s *FileStore) write(synonyms map[string]string) error {
	data, err := json.MarshalIndent(synonyms, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal synonyms: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create synonyms dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".synonyms-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write synonyms: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace synonyms file: %w", err)
	}
	return nil
}
