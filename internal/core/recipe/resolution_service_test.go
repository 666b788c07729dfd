package recipe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantry-resolver/internal/core/pantry"
	"pantry-resolver/internal/infrastructure/config"
	"pantry-resolver/internal/pkg/common"
)

type staticCatalog struct {
	entries []pantry.Entry
	err     error
}

func (c staticCatalog) Entries(context.Context) ([]pantry.Entry, error) {
	return c.entries, c.err
}

type memorySynonyms struct {
	data    map[string]string
	loadErr error
}

func (m *memorySynonyms) Load(context.Context) (map[string]string, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make(map[string]string, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out, nil
}

func (m *memorySynonyms) Put(_ context.Context, name, id string) error {
	m.data[name] = id
	return nil
}

var testCatalog = []pantry.Entry{
	{ID: "P1", Name: "onions", IsStaple: true},
	{ID: "P2", Name: "chicken breast"},
	{ID: "P3", Name: "unsalted butter"},
	{ID: "P4", Name: "whole eggs"},
	{ID: "P5", Name: "egg whites"},
	{ID: "P6", Name: "duck eggs"},
	{ID: "IMP-7", Name: "imported salt"},
}

var testResolverConfig = config.ResolverConfig{Threshold: 85, Suggestions: 3}

func newTestService(policy pantry.ImportPolicy) (*ResolutionService, *memorySynonyms) {
	synonyms := &memorySynonyms{data: map[string]string{}}
	return NewResolutionService(staticCatalog{entries: testCatalog}, synonyms, testResolverConfig, policy), synonyms
}

func TestResolveRecipe(t *testing.T) {
	s, _ := newTestService(pantry.ExcludeImported)

	groups := []common.IngredientGroup{
		{
			Component: "main",
			Ingredients: []common.Ingredient{
				{Name: "diced onions", Amount: 2, Unit: "cups"},
				{Name: "boneless skinless chicken breasts", Amount: 1, Unit: "lb"},
				{Name: "mystery", PantryID: "P4"},
				{Name: "salt", Amount: 1, Unit: "tsp"},
				{Name: "", Amount: 1},
			},
		},
		{
			Component: "sauce",
			Ingredients: []common.Ingredient{
				{Name: "Salt", Amount: 2, Unit: "tsp"},
				{Name: "imported", PantryID: "IMP-7"},
			},
		},
	}

	got, err := s.ResolveRecipe(context.Background(), groups)
	require.NoError(t, err)

	assert.Equal(t, StatusMissingIngredients, got.Status)
	require.Len(t, got.Ingredients, 3)

	assert.Equal(t, "P1", got.Ingredients[0].PantryID)
	assert.Equal(t, pantry.StageNormalizedExact, got.Ingredients[0].Stage)
	assert.Equal(t, SourceMatched, got.Ingredients[0].Source)

	assert.Equal(t, "P2", got.Ingredients[1].PantryID)
	assert.Equal(t, pantry.StageNormalizedFuzzy, got.Ingredients[1].Stage)

	assert.Equal(t, "P4", got.Ingredients[2].PantryID)
	assert.Equal(t, SourceProvided, got.Ingredients[2].Source)

	// salt 與 Salt 去重；IMP- 開頭的 ID 不被採用，名稱也找不到
	require.Len(t, got.Missing, 2)
	assert.Equal(t, "salt", got.Missing[0].Name)
	assert.Equal(t, "main", got.Missing[0].Component)
	assert.Equal(t, common.Quantity(1), got.Missing[0].Amount)
	assert.Equal(t, "tsp", got.Missing[0].Unit)
	require.NotEmpty(t, got.Missing[0].Suggestions)
	assert.LessOrEqual(t, len(got.Missing[0].Suggestions), 3)
	assert.Equal(t, "imported", got.Missing[1].Name)
	assert.Equal(t, "sauce", got.Missing[1].Component)
}

func TestResolveRecipe_Success(t *testing.T) {
	s, _ := newTestService(pantry.ExcludeImported)

	got, err := s.ResolveRecipe(context.Background(), []common.IngredientGroup{
		{Component: "main", Ingredients: []common.Ingredient{{Name: "Lrg Whole Eggs", Amount: 3}}},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, got.Status)
	assert.Empty(t, got.Missing)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, "P4", got.Ingredients[0].PantryID)
}

func TestResolveRecipe_LrgEggsLinksWholeEggs(t *testing.T) {
	s, _ := newTestService(pantry.ExcludeImported)

	got, err := s.ResolveRecipe(context.Background(), []common.IngredientGroup{
		{Component: "main", Ingredients: []common.Ingredient{{Name: "Lrg Eggs", Amount: 2}}},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, got.Status)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, "P4", got.Ingredients[0].PantryID)
	assert.Equal(t, pantry.StageNormalizedFuzzy, got.Ingredients[0].Stage)
}

func TestResolveRecipe_UnknownProvidedIDFallsBackToName(t *testing.T) {
	s, _ := newTestService(pantry.IncludeImported)

	got, err := s.ResolveRecipe(context.Background(), []common.IngredientGroup{
		{Component: "main", Ingredients: []common.Ingredient{{Name: "onions", PantryID: "P404"}}},
	})
	require.NoError(t, err)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, "P1", got.Ingredients[0].PantryID)
	assert.Equal(t, SourceMatched, got.Ingredients[0].Source)
}

func TestResolveRecipe_CatalogUnavailable(t *testing.T) {
	s := NewResolutionService(staticCatalog{err: common.Wrap(common.ErrCatalogUnavailable, errors.New("down"))}, nil, testResolverConfig, pantry.IncludeImported)

	_, err := s.ResolveRecipe(context.Background(), nil)
	assert.ErrorIs(t, err, common.ErrCatalogUnavailable)
}

func TestImportPolicy(t *testing.T) {
	include, _ := newTestService(pantry.IncludeImported)
	exclude, _ := newTestService(pantry.ExcludeImported)

	got, err := include.ResolveNames(context.Background(), []string{"imported salt"})
	require.NoError(t, err)
	assert.True(t, got[0].Matched)
	assert.Equal(t, "IMP-7", got[0].ID)

	got, err = exclude.ResolveNames(context.Background(), []string{"imported salt"})
	require.NoError(t, err)
	assert.False(t, got[0].Matched)
}

func TestResolveNames(t *testing.T) {
	s, _ := newTestService(pantry.ExcludeImported)

	got, err := s.ResolveNames(context.Background(), []string{"diced onions", "salt"})
	require.NoError(t, err)
	assert.Equal(t, []NameResolution{
		{Name: "diced onions", ID: "P1", Matched: true, Key: "onions", Stage: pantry.StageNormalizedExact, Score: 100},
		{Name: "salt"},
	}, got)
}

func TestSuggest(t *testing.T) {
	s, _ := newTestService(pantry.ExcludeImported)

	got, err := s.Suggest(context.Background(), "lrg eggs", 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "whole eggs", got[0].Name)
	assert.Equal(t, "duck eggs", got[1].Name)
	assert.Equal(t, "egg whites", got[2].Name)

	_, err = s.Suggest(context.Background(), " ", 3)
	assert.True(t, common.IsValidationError(err))
}

func TestAddSynonym(t *testing.T) {
	ctx := context.Background()
	s, store := newTestService(pantry.ExcludeImported)

	require.NoError(t, s.AddSynonym(ctx, "Soy Milk", "P4"))
	assert.Equal(t, map[string]string{"soy milk": "P4"}, store.data)

	got, err := s.ResolveNames(ctx, []string{"soy milk"})
	require.NoError(t, err)
	assert.Equal(t, "P4", got[0].ID)
	assert.Equal(t, pantry.StageExact, got[0].Stage)

	err = s.AddSynonym(ctx, "soy milk", "P404")
	assert.ErrorIs(t, err, common.ErrUnknownPantryID)

	err = s.AddSynonym(ctx, "soy milk", "IMP-7")
	assert.True(t, common.IsValidationError(err))

	err = s.AddSynonym(ctx, "", "P4")
	assert.True(t, common.IsValidationError(err))

	synonyms, err := s.Synonyms(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"soy milk": "P4"}, synonyms)
}

func TestSynonymLoadFailureDegrades(t *testing.T) {
	store := &memorySynonyms{data: map[string]string{}, loadErr: errors.New("unreachable")}
	s := NewResolutionService(staticCatalog{entries: testCatalog}, store, testResolverConfig, pantry.IncludeImported)

	got, err := s.ResolveNames(context.Background(), []string{"onions"})
	require.NoError(t, err)
	assert.True(t, got[0].Matched)

	_, err = s.Synonyms(context.Background())
	assert.ErrorIs(t, err, common.ErrSynonymStore)
}

func TestStats(t *testing.T) {
	s, _ := newTestService(pantry.ExcludeImported)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Entries)
	assert.Equal(t, 6, stats.Index.Total)
	assert.Equal(t, 1, stats.Index.Staples)
	assert.Equal(t, "exclude", stats.Policy)
}
