package synonym

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const badgerPrefix = "synonym:"

// BadgerStore 以內嵌 BadgerDB 保存同義詞，每個名稱一個 key
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore 開啟資料目錄；dir 為空時使用記憶體模式
func NewBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // 關閉 badger 內建 logger

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Load 讀取全部同義詞
func (s *BadgerStore) Load(ctx context.Context) (map[string]string, error) {
	synonyms := make(map[string]string)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(badgerPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			name := string(item.Key()[len(prefix):])
			if err := item.Value(func(val []byte) error {
				synonyms[name] = string(val)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load synonyms: %w", err)
	}
	return synonyms, nil
}

// Put 在同一個交易中讀取舊值並寫入，衝突時交易失敗
func (s *BadgerStore) Put(ctx context.Context, name, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := []byte(badgerPrefix + name)
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			same := false
			if err := item.Value(func(val []byte) error {
				same = string(val) == id
				return nil
			}); err != nil {
				return err
			}
			if same {
				return nil
			}
		}
		return txn.Set(key, []byte(id))
	})
	if err != nil {
		return fmt.Errorf("failed to set synonym: %w", err)
	}
	return nil
}

// Close 關閉資料庫
func (s *BadgerStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
