package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pantry-resolver/internal/api"
	aiService "pantry-resolver/internal/core/ai/service"
	"pantry-resolver/internal/core/cache"
	"pantry-resolver/internal/core/pantry"
	"pantry-resolver/internal/core/recipe"
	"pantry-resolver/internal/infrastructure/catalog"
	"pantry-resolver/internal/infrastructure/config"
	"pantry-resolver/internal/infrastructure/synonym"
	"pantry-resolver/internal/pkg/common"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("catalog_source", cfg.Catalog.Source),
		zap.String("synonyms_backend", cfg.Synonyms.Backend),
		zap.Bool("openrouter_enabled", cfg.OpenRouter.Enabled),
		zap.String("openrouter_model", cfg.OpenRouter.Model),
	)

	// 初始化快取
	cacheManager := cache.NewManager(cfg.Cache)
	defer cacheManager.Close()

	// 食材目錄
	catalogSource, catalogCloser, err := catalog.Open(cfg.Catalog, cacheManager)
	if err != nil {
		common.LogFatal("Failed to open catalog", zap.Error(err))
	}
	defer catalogCloser.Close()

	// 同義詞儲存
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	synonyms, err := synonym.Open(startupCtx, cfg.Synonyms)
	cancelStartup()
	if err != nil {
		common.LogFatal("Failed to open synonym store", zap.Error(err))
	}
	defer synonyms.Close()

	policy := pantry.IncludeImported
	if cfg.Catalog.ExcludeImported {
		policy = pantry.ExcludeImported
	}
	resolution := recipe.NewResolutionService(catalogSource, synonyms, cfg.Resolver, policy)

	services := api.Services{
		Resolution: resolution,
		Catalog:    catalogSource,
		Cache:      cacheManager,
	}
	if ai := aiService.NewService(cfg.OpenRouter, cacheManager); ai.Enabled() {
		services.Extraction = recipe.NewExtractionService(ai)
	}

	// 設置路由
	router, stopMiddleware := api.SetupRouter(cfg, services)
	defer stopMiddleware()

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}
