package pantry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"identical", "eggs", "eggs", 100},
		{"plural", "onion", "onions", 91},
		{"one substitution", "abc", "abd", 67},
		{"case and punctuation ignored", "Chicken-Breast!", "chicken breast", 100},
		{"empty side", "", "salt", 0},
		{"both empty", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Ratio(tt.a, tt.b))
		})
	}
}

func TestPartialRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"whole token contained", "eggs", "duck eggs", 100},
		{"argument order irrelevant", "Whole Eggs", "eggs", 100},
		{"no match inside a token", "salt", "unsalted butter", 67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PartialRatio(tt.a, tt.b))
		})
	}
}

func TestTokenRatios(t *testing.T) {
	assert.Equal(t, 100, TokenSortRatio("cheese feta", "feta cheese"))
	assert.Equal(t, 100, TokenSetRatio("feta", "feta cheese"))
	assert.Equal(t, 42, TokenSetRatio("salt", "unsalted butter"))
	assert.Equal(t, 0, TokenSetRatio("", "feta"))
}

func TestWeightedRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"plural within length ratio", "chicken breasts", "chicken breast", 97},
		{"contained token discounted", "eggs", "whole eggs", 90},
		{"substring is not a token match", "salt", "unsalted butter", 60},
		{"pickled cucumbers", "pickled cucumbers", "cucumber", 85},
		{"reordered tokens", "sauce oat", "tomato sauce", 82},
		{"empty", "salt", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeightedRatio(tt.a, tt.b))
		})
	}
}

func TestExtract(t *testing.T) {
	keys := []string{"egg whites", "whole eggs", "duck eggs"}

	got := Extract("eggs", keys, TokenSetRatio, 0)
	assert.Equal(t, []Candidate{
		{Key: "duck eggs", Score: 100},
		{Key: "whole eggs", Score: 100},
		{Key: "egg whites", Score: 57},
	}, got)

	limited := Extract("eggs", keys, TokenSetRatio, 1)
	assert.Equal(t, []Candidate{{Key: "duck eggs", Score: 100}}, limited)

	assert.Empty(t, Extract("eggs", nil, TokenSetRatio, 3))
}

func TestExtractOne(t *testing.T) {
	best, ok := ExtractOne("lrg eggs", []string{"whole eggs", "duck eggs"}, WeightedRatio)
	assert.True(t, ok)
	assert.Equal(t, "whole eggs", best.Key)
	assert.Equal(t, 67, best.Score)

	_, ok = ExtractOne("eggs", nil, WeightedRatio)
	assert.False(t, ok)
}
