package pantry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_Populate_StaplePriority(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{
			name: "staple listed first",
			entries: []Entry{
				{ID: "S1", Name: "Onions", IsStaple: true},
				{ID: "N1", Name: "onions"},
			},
		},
		{
			name: "staple listed last",
			entries: []Entry{
				{ID: "N1", Name: "onions"},
				{ID: "S1", Name: "Onions", IsStaple: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix := NewIndex()
			stats := ix.Populate(tt.entries)

			id, ok := ix.Lookup("onions")
			require.True(t, ok)
			assert.Equal(t, "S1", id)
			assert.Equal(t, 1, stats.Staples)
			assert.Equal(t, 0, stats.Standard)
			assert.Equal(t, 1, stats.Skipped)
			assert.Equal(t, 1, stats.Total)
		})
	}
}

func TestIndex_Populate_SkipsDecoratedDuplicates(t *testing.T) {
	ix := NewIndex()
	stats := ix.Populate([]Entry{
		{ID: "P1", Name: "onions", IsStaple: true},
		{ID: "P9", Name: "diced onions"},
		{ID: "P2", Name: "red onions"},
		{ID: "P3", Name: "Feta Cheese"},
		{ID: "P4", Name: "feta cheese"},
	})

	_, ok := ix.Lookup("diced onions")
	assert.False(t, ok)

	id, ok := ix.Lookup("red onions")
	require.True(t, ok)
	assert.Equal(t, "P2", id)

	id, ok = ix.Lookup("FETA CHEESE")
	require.True(t, ok)
	assert.Equal(t, "P3", id, "first non-staple wins")

	assert.Equal(t, PopulateStats{Total: 3, Staples: 1, Standard: 2, Skipped: 2}, stats)
}

func TestIndex_Populate_SkipsInvalidEntries(t *testing.T) {
	ix := NewIndex()
	stats := ix.Populate([]Entry{
		{ID: "", Name: "salt", IsStaple: true},
		{ID: "P1", Name: "  "},
		{ID: "P2", Name: "pepper"},
	})

	assert.Equal(t, 1, ix.Len())
	assert.Equal(t, 2, stats.Invalid)
}

func TestIndex_Populate_ClearsPreviousState(t *testing.T) {
	ix := NewIndex()
	ix.Populate([]Entry{{ID: "P1", Name: "onions"}})
	ix.Populate([]Entry{{ID: "P2", Name: "garlic"}})

	_, ok := ix.Lookup("onions")
	assert.False(t, ok)
	assert.Equal(t, []string{"garlic"}, ix.Keys())
}

func TestIndex_SynonymsSurvivePopulate(t *testing.T) {
	ix := NewIndex()
	ix.Populate([]Entry{{ID: "P1", Name: "milk", IsStaple: true}})
	require.True(t, ix.AddSynonym(" Soy Milk ", "000123"))
	require.True(t, ix.AddSynonym("milk", "000999"))

	stats := ix.Populate([]Entry{{ID: "P1", Name: "milk", IsStaple: true}})

	id, ok := ix.Lookup("soy milk")
	require.True(t, ok)
	assert.Equal(t, "000123", id)

	id, _ = ix.Lookup("milk")
	assert.Equal(t, "000999", id, "synonyms override catalog names")
	assert.Equal(t, 2, stats.Synonyms)
	assert.Equal(t, map[string]string{"soy milk": "000123", "milk": "000999"}, ix.Synonyms())
}

func TestIndex_AddSynonym_RejectsEmpty(t *testing.T) {
	ix := NewIndex()
	assert.False(t, ix.AddSynonym("", "P1"))
	assert.False(t, ix.AddSynonym("salt", " "))
	assert.Equal(t, 0, ix.Len())
}

func TestIndex_Reset(t *testing.T) {
	ix := NewIndex()
	ix.Populate([]Entry{{ID: "P1", Name: "milk"}})
	ix.AddSynonym("soy milk", "P2")

	ix.Reset()

	assert.Equal(t, 0, ix.Len())
	assert.Empty(t, ix.Synonyms())
	assert.False(t, ix.Contains("P1"))
}
