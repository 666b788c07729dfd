package pantry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexOf(t *testing.T, entries ...Entry) *Index {
	t.Helper()
	ix := NewIndex()
	ix.Populate(entries)
	return ix
}

// fixedScorer 對特定 key 回傳固定分數，其餘為 0
func fixedScorer(key string, score int) Scorer {
	return func(_, k string) int {
		if k == key {
			return score
		}
		return 0
	}
}

func TestResolver_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		entries   []Entry
		query     string
		wantID    string
		wantOK    bool
		wantStage Stage
	}{
		{
			name:      "normalized exact",
			entries:   []Entry{{ID: "P1", Name: "onions", IsStaple: true}},
			query:     "diced onions",
			wantID:    "P1",
			wantOK:    true,
			wantStage: StageNormalizedExact,
		},
		{
			name:      "normalized fuzzy over plural",
			entries:   []Entry{{ID: "P2", Name: "chicken breast"}},
			query:     "boneless skinless chicken breasts",
			wantID:    "P2",
			wantOK:    true,
			wantStage: StageNormalizedFuzzy,
		},
		{
			name:    "salt does not match unsalted butter",
			entries: []Entry{{ID: "P3", Name: "unsalted butter"}},
			query:   "salt",
			wantOK:  false,
		},
		{
			name:      "qualifier stripped then fuzzy",
			entries:   []Entry{{ID: "E1", Name: "Whole Eggs"}},
			query:     "Lrg Eggs",
			wantID:    "E1",
			wantOK:    true,
			wantStage: StageNormalizedFuzzy,
		},
		{
			name:      "raw exact",
			entries:   []Entry{{ID: "L1", Name: "Lime Juice"}},
			query:     "  lime juice ",
			wantID:    "L1",
			wantOK:    true,
			wantStage: StageExact,
		},
		{
			name:      "raw fuzzy",
			entries:   []Entry{{ID: "T1", Name: "tomato"}},
			query:     "tomatoe",
			wantID:    "T1",
			wantOK:    true,
			wantStage: StageFuzzy,
		},
		{
			name:      "token subset",
			entries:   []Entry{{ID: "F1", Name: "feta cheese"}},
			query:     "feta",
			wantID:    "F1",
			wantOK:    true,
			wantStage: StageFuzzy,
		},
		{
			name:    "empty name",
			entries: []Entry{{ID: "P1", Name: "onions"}},
			query:   "   ",
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(indexOf(t, tt.entries...))

			m, ok := r.Match(tt.query)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantID, m.ID)
			assert.Equal(t, tt.wantStage, m.Stage)

			id, ok := r.Resolve(tt.query)
			assert.True(t, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestResolver_EmptyIndex(t *testing.T) {
	r := NewResolver(NewIndex())

	assert.NotPanics(t, func() {
		id, ok := r.Resolve("anything")
		assert.False(t, ok)
		assert.Empty(t, id)
	})
	assert.Empty(t, r.Suggest("anything", 3))
}

func TestResolver_ThresholdBoundary(t *testing.T) {
	tests := []struct {
		name      string
		primary   Scorer
		secondary Scorer
		wantOK    bool
	}{
		{"stage A at threshold", fixedScorer("saffron", 85), fixedScorer("saffron", 0), true},
		{"stage A below threshold", fixedScorer("saffron", 84), fixedScorer("saffron", 0), false},
		{"stage B at threshold", fixedScorer("saffron", 10), fixedScorer("saffron", 85), true},
		{"stage B below threshold", fixedScorer("saffron", 84), fixedScorer("saffron", 84), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix := indexOf(t, Entry{ID: "S1", Name: "saffron"}, Entry{ID: "S2", Name: "sumac"})
			r := NewResolver(ix, WithScorers(tt.primary, tt.secondary))

			id, ok := r.Resolve("zzz")
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, "S1", id)
			}
		})
	}
}

func TestResolver_ThresholdWithBuiltinScorers(t *testing.T) {
	ix := indexOf(t, Entry{ID: "C1", Name: "cucumber"})

	// WeightedRatio("pickled cucumbers", "cucumber") == 85
	m, ok := NewResolver(ix).Match("pickled cucumbers")
	require.True(t, ok)
	assert.Equal(t, 85, m.Score)

	_, ok = NewResolver(ix, WithThreshold(86)).Match("pickled cucumbers")
	assert.False(t, ok)

	// WeightedRatio 82，TokenSetRatio 86：由第二階段接受
	ix = indexOf(t, Entry{ID: "TS", Name: "tomato sauce"})
	m, ok = NewResolver(ix).Match("sauce oat")
	require.True(t, ok)
	assert.Equal(t, "TS", m.ID)
	assert.Equal(t, 86, m.Score)
}

func eggIndex(t *testing.T) *Index {
	return indexOf(t,
		Entry{ID: "E1", Name: "whole eggs"},
		Entry{ID: "E2", Name: "egg whites"},
		Entry{ID: "E3", Name: "duck eggs"},
	)
}

func TestResolver_LrgEggsResolvesToWholeEggs(t *testing.T) {
	r := NewResolver(eggIndex(t))

	// "eggs" 對 whole eggs 與 duck eggs 皆為 90，由預設形態決定
	m, ok := r.Match("lrg eggs")
	require.True(t, ok)
	assert.Equal(t, "E1", m.ID)
	assert.Equal(t, "whole eggs", m.Key)
	assert.Equal(t, "eggs", m.Query)
	assert.Equal(t, StageNormalizedFuzzy, m.Stage)

	id, ok := r.Resolve("Lrg Eggs")
	require.True(t, ok)
	assert.Equal(t, "E1", id)
}

func TestResolver_TiedTopScores(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		query   string
		wantID  string
		wantOK  bool
	}{
		{
			name:    "base form wins the tie",
			entries: []Entry{{ID: "W", Name: "whole eggs"}, {ID: "D", Name: "duck eggs"}},
			query:   "eggs",
			wantID:  "W",
			wantOK:  true,
		},
		{
			name:    "tie without base form is refused",
			entries: []Entry{{ID: "D", Name: "duck eggs"}, {ID: "Q", Name: "quail eggs"}},
			query:   "eggs",
			wantOK:  false,
		},
		{
			name:    "tie with two base forms is refused",
			entries: []Entry{{ID: "A", Name: "whole eggs"}, {ID: "B", Name: "eggs whole"}},
			query:   "eggs",
			wantOK:  false,
		},
		{
			name:    "single top score needs no tie break",
			entries: []Entry{{ID: "D", Name: "duck eggs"}, {ID: "S", Name: "sumac"}},
			query:   "eggs",
			wantID:  "D",
			wantOK:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := NewResolver(indexOf(t, tt.entries...)).Resolve(tt.query)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestResolver_TieAtThresholdWithFixedScorers(t *testing.T) {
	ix := indexOf(t, Entry{ID: "S1", Name: "saffron"}, Entry{ID: "S2", Name: "sumac"})
	both := func(_, _ string) int { return 90 }

	_, ok := NewResolver(ix, WithScorers(both, both)).Resolve("zzz")
	assert.False(t, ok)

	// 第一階段並列時交由第二階段
	id, ok := NewResolver(ix, WithScorers(both, fixedScorer("sumac", 88))).Resolve("zzz")
	require.True(t, ok)
	assert.Equal(t, "S2", id)
}

func TestResolver_Suggest(t *testing.T) {
	r := NewResolver(eggIndex(t))

	got := r.Suggest("lrg eggs", 3)
	assert.Equal(t, []Suggestion{
		{Name: "whole eggs", ID: "E1", Score: 100},
		{Name: "duck eggs", ID: "E3", Score: 100},
		{Name: "egg whites", ID: "E2", Score: 77},
	}, got)

	assert.Len(t, r.Suggest("lrg eggs", 0), DefaultSuggestions)
	assert.Equal(t, []Suggestion{{Name: "whole eggs", ID: "E1", Score: 100}}, r.Suggest("lrg eggs", 1))
	assert.Empty(t, r.Suggest("", 3))
}

func TestResolver_SuggestHasNoThreshold(t *testing.T) {
	r := NewResolver(indexOf(t, Entry{ID: "P3", Name: "unsalted butter"}))

	_, ok := r.Resolve("salt")
	assert.False(t, ok)

	got := r.Suggest("salt", 3)
	require.Len(t, got, 1)
	assert.Equal(t, "P3", got[0].ID)
	assert.Equal(t, 60, got[0].Score)
}
