package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pantry-resolver/internal/core/cache"
	openrouter "pantry-resolver/internal/core/service"
	"pantry-resolver/internal/infrastructure/config"
	"pantry-resolver/internal/pkg/common"
)

// Completer 底層的聊天補全客戶端
type Completer interface {
	GenerateResponse(ctx context.Context, messages []openrouter.Message) (string, error)
}

// Service AI 服務：統一 prompt 格式、快取回應並記錄調用
type Service struct {
	enabled      bool
	client       Completer
	cacheManager *cache.Manager
}

// NewService 創建 AI 服務
func NewService(cfg config.OpenRouterConfig, cacheManager *cache.Manager) *Service {
	return NewServiceWithClient(cfg.Enabled, openrouter.NewOpenRouterService(cfg), cacheManager)
}

// NewServiceWithClient 以指定客戶端建立服務
func NewServiceWithClient(enabled bool, client Completer, cacheManager *cache.Manager) *Service {
	return &Service{
		enabled:      enabled,
		client:       client,
		cacheManager: cacheManager,
	}
}

// Enabled 是否可呼叫外部模型
func (s *Service) Enabled() bool {
	return s != nil && s.enabled
}

// Generate 以系統提示與使用者輸入取得模型回應
func (s *Service) Generate(ctx context.Context, system, prompt string) (string, error) {
	if !s.Enabled() {
		return "", common.Wrap(common.ErrAIServiceError, errors.New("openrouter is disabled"))
	}

	// 統一空白，確保快取 key 一致
	prompt = strings.Join(strings.Fields(prompt), " ")
	if prompt == "" {
		return "", common.NewValidationError("prompt is empty")
	}
	cacheKey := system + "\x00" + prompt

	if s.cacheManager.Enabled() {
		if val, err := s.cacheManager.Get(ctx, cache.NamespaceExtraction, cacheKey); err == nil {
			if content, ok := val.(string); ok && content != "" {
				return content, nil
			}
		}
	}

	start := time.Now()
	content, err := s.client.GenerateResponse(ctx, []openrouter.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: prompt},
	})
	common.LogAICall(time.Since(start), err, common.RequestIDFromContext(ctx))
	if err != nil {
		return "", common.Wrap(common.ErrAIServiceError, fmt.Errorf("generate: %w", err))
	}

	if s.cacheManager.Enabled() {
		_ = s.cacheManager.Set(ctx, cache.NamespaceExtraction, cacheKey, content)
	}
	return content, nil
}
