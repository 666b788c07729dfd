package synonym

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisStore 以 Redis hash 保存同義詞，HSET 本身即為單欄位的原子讀改寫
type RedisStore struct {
	client *redis.Client
	key    string
}

// RedisOptions Redis 連線設定
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// NewRedisStore 建立並測試連線
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	key := opts.Key
	if key == "" {
		key = "pantry:synonyms"
	}
	return &RedisStore{client: client, key: key}, nil
}

// Load 讀取全部同義詞
func (s *RedisStore) Load(ctx context.Context) (map[string]string, error) {
	synonyms, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load synonyms: %w", err)
	}
	return synonyms, nil
}

// Put 寫入單一同義詞
func (s *RedisStore) Put(ctx context.Context, name, id string) error {
	if err := s.client.HSet(ctx, s.key, name, id).Err(); err != nil {
		return fmt.Errorf("failed to set synonym: %w", err)
	}
	return nil
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}
