package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pantry-resolver/internal/core/cache"
	"pantry-resolver/internal/core/recipe"
	"pantry-resolver/internal/pkg/common"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Catalog   *recipe.CatalogStats   `json:"catalog,omitempty"`
	Cache     *cache.Stats           `json:"cache,omitempty"`
	AI        bool                   `json:"ai_enabled"`
}

// StatsProvider 提供目錄統計
type StatsProvider interface {
	Stats(ctx context.Context) (*recipe.CatalogStats, error)
}

// CacheStatsProvider 提供快取統計
type CacheStatsProvider interface {
	GetStats() cache.Stats
}

// Handler 健康檢查
type Handler struct {
	version   string
	catalog   StatsProvider
	cache     CacheStatsProvider
	aiEnabled bool
	now       func() time.Time
}

// NewHandler cacheStats 可為 nil
func NewHandler(version string, catalog StatsProvider, cacheStats CacheStatsProvider, aiEnabled bool) *Handler {
	return &Handler{
		version:   version,
		catalog:   catalog,
		cache:     cacheStats,
		aiEnabled: aiEnabled,
		now:       time.Now,
	}
}

// Register 註冊 /health、/ready、/live
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/health", h.HealthCheck)
	r.GET("/ready", h.ReadinessCheck)
	r.GET("/live", h.LivenessCheck)
}

// HealthCheck 健康檢查處理器；目錄無法讀取時狀態為 degraded
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: h.now(),
		Version:   h.version,
		AI:        h.aiEnabled,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	stats, err := h.catalog.Stats(c.Request.Context())
	if err != nil {
		common.LogWarn("Catalog unavailable during health check", zap.Error(err))
		response.Status = "degraded"
	} else {
		response.Catalog = stats
	}

	if h.cache != nil {
		cs := h.cache.GetStats()
		response.Cache = &cs
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 目錄可讀取才算就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if _, err := h.catalog.Stats(c.Request.Context()); err != nil {
		status, resp := common.ToResponse(err)
		if status < http.StatusInternalServerError {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"status": "not_ready",
			"error":  resp,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
