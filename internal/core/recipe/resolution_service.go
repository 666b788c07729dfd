package recipe

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"pantry-resolver/internal/core/pantry"
	"pantry-resolver/internal/infrastructure/config"
	"pantry-resolver/internal/pkg/common"
)

// ResolutionService 將食譜食材對應到食材目錄
type ResolutionService struct {
	sessionFactory
}

// NewResolutionService 創建食材解析服務
func NewResolutionService(catalog CatalogSource, synonyms pantry.SynonymStore, cfg config.ResolverConfig, policy pantry.ImportPolicy) *ResolutionService {
	return &ResolutionService{
		sessionFactory: sessionFactory{
			catalog:  catalog,
			synonyms: synonyms,
			policy:   policy,
			resolver: cfg,
		},
	}
}

// ResolveRecipe 逐一解析各元件的食材：
// 先採用預先提供且存在於目錄的 pantry_id，否則以名稱比對。
// 無法對應的食材依名稱去重後回傳，狀態為 MISSING_INGREDIENTS。
func (s *ResolutionService) ResolveRecipe(ctx context.Context, groups []common.IngredientGroup) (*RecipeResolution, error) {
	session, err := s.NewSession(ctx)
	if err != nil {
		return nil, err
	}

	result := &RecipeResolution{
		Status:      StatusSuccess,
		Ingredients: []ResolvedIngredient{},
		Missing:     []MissingIngredient{},
	}
	seenMissing := make(map[string]struct{})

	for _, group := range groups {
		for _, ing := range group.Ingredients {
			name := strings.TrimSpace(ing.Name)
			if name == "" {
				common.LogDebug("Skipping ingredient without name", zap.String("component", group.Component))
				continue
			}

			if resolved, ok := s.resolveProvided(session, ing, group.Component); ok {
				result.Ingredients = append(result.Ingredients, resolved)
				continue
			}

			if m, ok := session.Resolver.Match(name); ok {
				ing.PantryID = m.ID
				result.Ingredients = append(result.Ingredients, ResolvedIngredient{
					Ingredient: ing,
					Component:  group.Component,
					Source:     SourceMatched,
					Stage:      m.Stage,
					Score:      m.Score,
				})
				continue
			}

			key := pantry.Fold(name)
			if _, dup := seenMissing[key]; dup {
				continue
			}
			seenMissing[key] = struct{}{}
			result.Missing = append(result.Missing, MissingIngredient{
				Name:        name,
				Amount:      ing.Amount,
				Unit:        ing.Unit,
				Component:   group.Component,
				Suggestions: session.Resolver.Suggest(name, s.topN(0)),
			})
		}
	}

	if len(result.Missing) > 0 {
		result.Status = StatusMissingIngredients
	}

	common.LogInfo("Recipe ingredients resolved",
		zap.String("status", result.Status),
		zap.Int("resolved", len(result.Ingredients)),
		zap.Int("missing", len(result.Missing)),
	)
	return result, nil
}

// resolveProvided 預先提供的 ID 必須存在於目錄且不是自動匯入的資料
func (s *ResolutionService) resolveProvided(session *Session, ing common.Ingredient, component string) (ResolvedIngredient, bool) {
	id := strings.TrimSpace(ing.PantryID)
	if id == "" {
		return ResolvedIngredient{}, false
	}
	if pantry.IsImportedID(id) || !session.HasID(id) {
		common.LogDebug("Ignoring provided pantry id",
			zap.String("name", ing.Name),
			zap.String("pantry_id", id),
		)
		return ResolvedIngredient{}, false
	}
	ing.PantryID = id
	return ResolvedIngredient{Ingredient: ing, Component: component, Source: SourceProvided}, true
}

// ResolveNames 解析多個名稱
func (s *ResolutionService) ResolveNames(ctx context.Context, names []string) ([]NameResolution, error) {
	session, err := s.NewSession(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]NameResolution, 0, len(names))
	for _, name := range names {
		r := NameResolution{Name: name}
		if m, ok := session.Resolver.Match(name); ok {
			r.ID = m.ID
			r.Matched = true
			r.Key = m.Key
			r.Stage = m.Stage
			r.Score = m.Score
		}
		out = append(out, r)
	}
	return out, nil
}

// Suggest 回傳候選清單，topN <= 0 時使用設定值
func (s *ResolutionService) Suggest(ctx context.Context, name string, topN int) ([]pantry.Suggestion, error) {
	if strings.TrimSpace(name) == "" {
		return nil, common.NewValidationError("name is required")
	}
	session, err := s.NewSession(ctx)
	if err != nil {
		return nil, err
	}
	return session.Resolver.Suggest(name, s.topN(topN)), nil
}

// AddSynonym 記錄人工確認的對應；ID 必須存在於目錄
func (s *ResolutionService) AddSynonym(ctx context.Context, name, id string) error {
	if s.synonyms == nil {
		return common.Wrap(common.ErrServiceUnavailable, fmt.Errorf("synonym store is not configured"))
	}
	id = strings.TrimSpace(id)
	if pantry.IsImportedID(id) {
		return common.NewValidationError("auto-imported pantry ids cannot be used as synonyms")
	}

	session, err := s.NewSession(ctx)
	if err != nil {
		return err
	}
	if id != "" && !session.HasID(id) {
		return common.Wrap(common.ErrUnknownPantryID, fmt.Errorf("pantry id %q", id))
	}
	return pantry.AddSynonym(ctx, s.synonyms, session.Index, name, id)
}

// Synonyms 列出已保存的同義詞
func (s *ResolutionService) Synonyms(ctx context.Context) (map[string]string, error) {
	if s.synonyms == nil {
		return map[string]string{}, nil
	}
	synonyms, err := s.synonyms.Load(ctx)
	if err != nil {
		return nil, common.Wrap(common.ErrSynonymStore, err)
	}
	return synonyms, nil
}

// Stats 目前目錄快照建立的索引統計
func (s *ResolutionService) Stats(ctx context.Context) (*CatalogStats, error) {
	session, err := s.NewSession(ctx)
	if err != nil {
		return nil, err
	}
	return &CatalogStats{
		Entries: session.entries,
		Index:   session.Stats,
		Policy:  s.policy.String(),
	}, nil
}
