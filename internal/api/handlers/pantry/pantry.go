package pantry

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pantry-resolver/internal/core/pantry"
	"pantry-resolver/internal/core/recipe"
	"pantry-resolver/internal/pkg/common"
)

// Resolver 食材解析服務
type Resolver interface {
	ResolveRecipe(ctx context.Context, groups []common.IngredientGroup) (*recipe.RecipeResolution, error)
	ResolveNames(ctx context.Context, names []string) ([]recipe.NameResolution, error)
	Suggest(ctx context.Context, name string, topN int) ([]pantry.Suggestion, error)
	AddSynonym(ctx context.Context, name, id string) error
	Synonyms(ctx context.Context) (map[string]string, error)
}

// Extractor 食材擷取服務
type Extractor interface {
	Extract(ctx context.Context, text string) ([]common.IngredientGroup, error)
}

// CatalogReloader 清除目錄快照
type CatalogReloader interface {
	Invalidate(ctx context.Context)
}

// Handler 食材目錄 API
type Handler struct {
	resolver  Resolver
	extractor Extractor
	catalog   CatalogReloader
}

// NewHandler extractor 或 catalog 可為 nil
func NewHandler(resolver Resolver, extractor Extractor, catalog CatalogReloader) *Handler {
	return &Handler{resolver: resolver, extractor: extractor, catalog: catalog}
}

// Register 註冊路由；mutating 只套用在會改變狀態或呼叫外部服務的路由
func (h *Handler) Register(rg *gin.RouterGroup, mutating ...gin.HandlerFunc) {
	rg.POST("/resolve", h.Resolve)
	rg.POST("/resolve/recipe", h.ResolveRecipe)
	rg.POST("/suggest", h.Suggest)
	rg.GET("/synonyms", h.ListSynonyms)

	writes := rg.Group("", mutating...)
	writes.POST("/synonyms", h.AddSynonym)
	writes.POST("/extract", h.Extract)
	writes.POST("/catalog/reload", h.ReloadCatalog)
}

// ResolveRequest 名稱解析請求
type ResolveRequest struct {
	Names []string `json:"names" binding:"required,min=1,max=200"`
}

// ResolveResponse 名稱解析響應
type ResolveResponse struct {
	Results []recipe.NameResolution `json:"results"`
}

// RecipeRequest 食譜解析請求
type RecipeRequest struct {
	Groups []common.IngredientGroup `json:"groups" binding:"required,min=1"`
}

// SuggestRequest 候選請求
type SuggestRequest struct {
	Name string `json:"name" binding:"required"`
	TopN int    `json:"top_n" binding:"omitempty,min=1,max=50"`
}

// SuggestResponse 候選響應
type SuggestResponse struct {
	Name        string              `json:"name"`
	Suggestions []pantry.Suggestion `json:"suggestions"`
}

// SynonymRequest 新增同義詞請求
type SynonymRequest struct {
	Name string `json:"name" binding:"required"`
	ID   string `json:"id" binding:"required"`
}

// ExtractRequest 擷取請求
type ExtractRequest struct {
	Text string `json:"text" binding:"required"`
}

// ExtractResponse 擷取並解析的結果
type ExtractResponse struct {
	Groups     []common.IngredientGroup `json:"groups"`
	Resolution *recipe.RecipeResolution `json:"resolution"`
}

// Resolve 處理名稱解析
func (h *Handler) Resolve(c *gin.Context) {
	var req ResolveRequest
	if !bind(c, &req) {
		return
	}

	results, err := h.resolver.ResolveNames(c.Request.Context(), req.Names)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ResolveResponse{Results: results})
}

// ResolveRecipe 處理食譜解析
func (h *Handler) ResolveRecipe(c *gin.Context) {
	var req RecipeRequest
	if !bind(c, &req) {
		return
	}

	result, err := h.resolver.ResolveRecipe(c.Request.Context(), req.Groups)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Suggest 處理候選查詢
func (h *Handler) Suggest(c *gin.Context) {
	var req SuggestRequest
	if !bind(c, &req) {
		return
	}

	suggestions, err := h.resolver.Suggest(c.Request.Context(), req.Name, req.TopN)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuggestResponse{Name: req.Name, Suggestions: suggestions})
}

// ListSynonyms 列出同義詞
func (h *Handler) ListSynonyms(c *gin.Context) {
	synonyms, err := h.resolver.Synonyms(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"synonyms": synonyms})
}

// AddSynonym 新增同義詞
func (h *Handler) AddSynonym(c *gin.Context) {
	var req SynonymRequest
	if !bind(c, &req) {
		return
	}

	if err := h.resolver.AddSynonym(c.Request.Context(), req.Name, req.ID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"name": pantry.Fold(req.Name),
		"id":   strings.TrimSpace(req.ID),
	})
}

// Extract 以 LLM 擷取食材後立即解析
func (h *Handler) Extract(c *gin.Context) {
	if h.extractor == nil {
		writeError(c, common.Wrap(common.ErrAIServiceError, errors.New("extraction is disabled")))
		return
	}

	var req ExtractRequest
	if !bind(c, &req) {
		return
	}

	ctx := c.Request.Context()
	groups, err := h.extractor.Extract(ctx, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}

	resolution, err := h.resolver.ResolveRecipe(ctx, groups)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ExtractResponse{Groups: groups, Resolution: resolution})
}

// ReloadCatalog 清除目錄快照
func (h *Handler) ReloadCatalog(c *gin.Context) {
	if h.catalog != nil {
		h.catalog.Invalidate(c.Request.Context())
	}
	c.JSON(http.StatusOK, gin.H{"status": "reloaded"})
}

func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		common.LogWarn("Invalid request format",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", common.RequestIDFromContext(c.Request.Context())),
		)
		c.AbortWithStatusJSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "Invalid request format",
			Details: err.Error(),
		})
		return false
	}
	return true
}

func writeError(c *gin.Context, err error) {
	status, resp := common.ToResponse(err)
	if status >= http.StatusInternalServerError {
		common.LogError("Request failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", common.RequestIDFromContext(c.Request.Context())),
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}
