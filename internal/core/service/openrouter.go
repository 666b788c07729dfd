package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"pantry-resolver/internal/infrastructure/config"
	"pantry-resolver/internal/pkg/common"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterService OpenRouter 服務
type OpenRouterService struct {
	config config.OpenRouterConfig
	client *resty.Client
}

// Message 聊天訊息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewOpenRouterService 創建 OpenRouter 服務
func NewOpenRouterService(cfg config.OpenRouterConfig) *OpenRouterService {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("HTTP-Referer", "https://pantry-resolver.local").
		SetHeader("X-Title", "Pantry Resolver")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &OpenRouterService{
		config: cfg,
		client: client,
	}
}

// GenerateResponse 送出對話並回傳第一個選項的內容
func (s *OpenRouterService) GenerateResponse(ctx context.Context, messages []Message) (string, error) {
	// 構建請求
	req := map[string]interface{}{
		"model":       s.config.Model,
		"messages":    messages,
		"max_tokens":  s.config.MaxTokens,
		"temperature": 0,
	}

	// 發送請求
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		common.LogWarn("OpenRouter returned non-200",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", common.Truncate(resp.String(), 200)),
		)
		return "", fmt.Errorf("OpenRouter API returned error: %s", resp.String())
	}

	// 解析回應
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenRouter response")
	}

	return result.Choices[0].Message.Content, nil
}
