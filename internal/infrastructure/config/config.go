package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	OpenRouter  OpenRouterConfig `mapstructure:"openrouter"`
	Cache       CacheConfig      `mapstructure:"cache"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	Catalog     CatalogConfig    `mapstructure:"catalog"`
	Synonyms    SynonymsConfig   `mapstructure:"synonyms"`
	Resolver    ResolverConfig   `mapstructure:"resolver"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// OpenRouterConfig OpenRouter 配置
type OpenRouterConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// CatalogConfig 食材目錄來源
type CatalogConfig struct {
	Source          string        `mapstructure:"source"` // file | sqlite
	Path            string        `mapstructure:"path"`
	DSN             string        `mapstructure:"dsn"`
	ExcludeImported bool          `mapstructure:"exclude_imported"`
	SnapshotTTL     time.Duration `mapstructure:"snapshot_ttl"`
}

// SynonymsConfig 同義詞儲存
type SynonymsConfig struct {
	Backend       string `mapstructure:"backend"` // file | redis | badger
	Path          string `mapstructure:"path"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisKey      string `mapstructure:"redis_key"`
	BadgerDir     string `mapstructure:"badger_dir"`
}

// ResolverConfig 比對參數
type ResolverConfig struct {
	Threshold   int `mapstructure:"threshold"`
	Suggestions int `mapstructure:"suggestions"`
}

// 目錄與同義詞後端名稱
const (
	SourceFile   = "file"
	SourceSQLite = "sqlite"

	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendBadger = "badger"
)

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件，不存在時只使用環境變數與預設值
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := newViper()

	// 設定設定檔名稱和路徑
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	// 讀取設定檔
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// logger 尚未初始化，改用 fmt.Println
	fmt.Println("Loading configuration",
		"openrouter_api_key:", maskAPIKey(v.GetString("openrouter.api_key")),
		"catalog_source:", v.GetString("catalog.source"),
		"synonyms_backend:", v.GetString("synonyms.backend"))

	return unmarshal(v)
}

// newViper 建立帶預設值與環境變數綁定的 viper
func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	bindings := map[string]string{
		"openrouter.api_key":      "OPENROUTER_API_KEY",
		"openrouter.model":        "OPENROUTER_MODEL",
		"openrouter.base_url":     "OPENROUTER_BASE_URL",
		"openrouter.max_tokens":   "MODEL_MAX_TOKENS",
		"cache.enabled":           "CACHE_ENABLED",
		"rate_limit.enabled":      "RATE_LIMIT_ENABLED",
		"rate_limit.requests":     "RATE_LIMIT_REQUESTS",
		"rate_limit.window":       "RATE_LIMIT_WINDOW",
		"dedup_window":            "DEDUP_WINDOW",
		"log_level":               "LOG_LEVEL",
		"catalog.source":          "CATALOG_SOURCE",
		"catalog.path":            "CATALOG_PATH",
		"catalog.dsn":             "CATALOG_DSN",
		"synonyms.backend":        "SYNONYMS_BACKEND",
		"synonyms.redis_addr":     "REDIS_ADDR",
		"synonyms.redis_password": "REDIS_PASSWORD",
		"resolver.threshold":      "RESOLVER_THRESHOLD",
	}
	for key, env := range bindings {
		_ = v.BindEnv(key, "APP_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env)
	}
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

// maskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "pantry-resolver")
	v.SetDefault("log_level", "info")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 1<<20) // 1MB

	// OpenRouter 設定
	v.SetDefault("openrouter.enabled", false)
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.model", "qwen/qwen2.5-vl-72b-instruct:free")
	v.SetDefault("openrouter.max_tokens", 1000)
	v.SetDefault("openrouter.timeout", "60s")

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	// 目錄設定
	v.SetDefault("catalog.source", SourceFile)
	v.SetDefault("catalog.path", "data/pantry.json")
	v.SetDefault("catalog.dsn", "data/pantry.db")
	v.SetDefault("catalog.exclude_imported", false)
	v.SetDefault("catalog.snapshot_ttl", "5m")

	// 同義詞設定
	v.SetDefault("synonyms.backend", BackendFile)
	v.SetDefault("synonyms.path", "data/synonyms.json")
	v.SetDefault("synonyms.redis_addr", "localhost:6379")
	v.SetDefault("synonyms.redis_db", 0)
	v.SetDefault("synonyms.redis_key", "pantry:synonyms")
	v.SetDefault("synonyms.badger_dir", "data/synonyms")

	// 比對設定
	v.SetDefault("resolver.threshold", 85)
	v.SetDefault("resolver.suggestions", 3)

	v.SetDefault("dedup_window", "1s")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit")
	}

	switch config.Catalog.Source {
	case SourceFile:
		if config.Catalog.Path == "" {
			return fmt.Errorf("catalog path is required")
		}
	case SourceSQLite:
		if config.Catalog.DSN == "" {
			return fmt.Errorf("catalog dsn is required")
		}
	default:
		return fmt.Errorf("unknown catalog source %q", config.Catalog.Source)
	}

	switch config.Synonyms.Backend {
	case BackendFile:
		if config.Synonyms.Path == "" {
			return fmt.Errorf("synonyms path is required")
		}
	case BackendRedis:
		if config.Synonyms.RedisAddr == "" {
			return fmt.Errorf("synonyms redis address is required")
		}
	case BackendBadger:
		if config.Synonyms.BadgerDir == "" {
			return fmt.Errorf("synonyms badger dir is required")
		}
	default:
		return fmt.Errorf("unknown synonyms backend %q", config.Synonyms.Backend)
	}

	if config.Resolver.Threshold <= 0 || config.Resolver.Threshold > 100 {
		return fmt.Errorf("resolver threshold must be within 1-100")
	}
	if config.Resolver.Suggestions <= 0 {
		return fmt.Errorf("invalid resolver suggestions")
	}

	if config.OpenRouter.Enabled && config.OpenRouter.APIKey == "" {
		return fmt.Errorf("openrouter api key is required when enabled")
	}

	return nil
}
