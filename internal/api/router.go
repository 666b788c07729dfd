package api

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pantry-resolver/internal/api/handlers/health"
	pantryHandler "pantry-resolver/internal/api/handlers/pantry"
	"pantry-resolver/internal/api/middleware"
	"pantry-resolver/internal/core/recipe"
	"pantry-resolver/internal/infrastructure/config"
	"pantry-resolver/internal/pkg/common"
)

const (
	// 單一請求的處理時限
	timeoutDuration = 60 * time.Second
	// 未設定時的請求體大小限制 (1MB)
	defaultMaxBodySize = 1 << 20
)

// Services 路由所需的服務
type Services struct {
	Resolution *recipe.ResolutionService
	// Extraction 為 nil 時 /extract 回傳 AI_SERVICE_ERROR
	Extraction *recipe.ExtractionService
	Catalog    pantryHandler.CatalogReloader
	Cache      health.CacheStatsProvider
}

// SetupRouter 設置路由；回傳的 stop 用於停止背景清理協程
func SetupRouter(cfg *config.Config, svc Services) (*gin.Engine, func()) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件；requestid 必須在 Logger 之前
	router.Use(middleware.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID)))
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	maxBodySize := cfg.Server.MaxBodyBytes
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxBodySize
	}
	router.Use(middleware.BodySizeLimit(maxBodySize))
	router.Use(requestTimeout(timeoutDuration))

	var stops []func()

	// 健康檢查路由
	health.NewHandler(cfg.App.Version, svc.Resolution, svc.Cache, svc.Extraction != nil).Register(router)

	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled && cfg.RateLimit.Requests > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		limiter.StartCleanup()
		stops = append(stops, limiter.Stop)
		api.Use(limiter.Middleware())
	}
	// 去重只套用在寫入類路由，唯讀的 resolve/suggest 可重複呼叫
	var mutating []gin.HandlerFunc
	if cfg.DedupWindow > 0 {
		dedup := middleware.NewDeduplicator(cfg.DedupWindow)
		dedup.StartCleanup(time.Minute)
		stops = append(stops, dedup.Stop)
		mutating = append(mutating, dedup.Middleware())
	}

	// nil 指標不可直接放入介面
	var extractor pantryHandler.Extractor
	if svc.Extraction != nil {
		extractor = svc.Extraction
	}
	pantryHandler.NewHandler(svc.Resolution, extractor, svc.Catalog).Register(api.Group("/pantry"), mutating...)

	router.NoRoute(func(c *gin.Context) {
		status, resp := common.ToResponse(common.ErrNotFound)
		c.JSON(status, resp)
	})

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("dedup_window", cfg.DedupWindow),
		zap.Bool("extraction_enabled", svc.Extraction != nil),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, func() {
		for _, stop := range stops {
			stop()
		}
	}
}

// requestTimeout 為請求上下文設定時限
func requestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeout),
			)
			if !c.Writer.Written() {
				status, resp := common.ToResponse(common.ErrGatewayTimeout)
				c.AbortWithStatusJSON(status, resp)
			}
		}
	}
}
