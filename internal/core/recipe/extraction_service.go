package recipe

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"pantry-resolver/internal/pkg/common"
)

// DefaultComponent 未標示元件時使用
const DefaultComponent = "main"

const extractionPrompt = `You extract ingredients from recipe text.
Return only compact JSON with no markdown, no comments and no line breaks:
{"ingredients":[{"name":"ingredient name","amount":1,"unit":"unit","component":"component name","pantry_id":""}]}
Rules:
1. Only list ingredients that appear in the text.
2. Keep the ingredient name as written, including qualifiers like "diced" or "large".
3. amount is a number; use 0 when unknown.
4. component groups ingredients (for example "sauce" or "main"); use "main" when the recipe has one part.
5. Leave pantry_id empty.`

// Generator 文字生成服務
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// ExtractionService 以 LLM 從食譜文字擷取食材
type ExtractionService struct {
	ai Generator
}

// NewExtractionService 創建食材擷取服務
func NewExtractionService(ai Generator) *ExtractionService {
	return &ExtractionService{ai: ai}
}

type extractedIngredient struct {
	common.Ingredient
	Component string `json:"component"`
}

// Extract 回傳依元件分組的食材，元件順序依首次出現
func (s *ExtractionService) Extract(ctx context.Context, text string) ([]common.IngredientGroup, error) {
	if strings.TrimSpace(text) == "" {
		return nil, common.NewValidationError("text is required")
	}

	content, err := s.ai.Generate(ctx, extractionPrompt, text)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Ingredients []extractedIngredient `json:"ingredients"`
	}
	raw := common.QuoteJSONKeys(common.ExtractJSONObject(content))
	if err := common.ParseJSON(raw, &parsed); err != nil {
		common.LogWarn("Failed to parse extraction response",
			zap.String("content", common.Truncate(content, 200)),
			zap.Error(err),
		)
		return nil, common.Wrap(common.ErrAIServiceError, fmt.Errorf("failed to parse AI response: %w", err))
	}

	groups := groupByComponent(parsed.Ingredients)
	common.LogInfo("Successfully extracted ingredients",
		zap.Int("ingredients_count", len(parsed.Ingredients)),
		zap.Int("component_count", len(groups)),
	)
	return groups, nil
}

func groupByComponent(items []extractedIngredient) []common.IngredientGroup {
	groups := []common.IngredientGroup{}
	index := make(map[string]int)
	for _, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			continue
		}
		component := strings.TrimSpace(item.Component)
		if component == "" {
			component = DefaultComponent
		}
		i, ok := index[component]
		if !ok {
			i = len(groups)
			index[component] = i
			groups = append(groups, common.IngredientGroup{Component: component})
		}
		groups[i].Ingredients = append(groups[i].Ingredients, item.Ingredient)
	}
	return groups
}
