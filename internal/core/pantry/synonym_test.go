package pantry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantry-resolver/internal/pkg/common"
)

type memoryStore struct {
	data    map[string]string
	putErr  error
	loadErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]string)}
}

func (s *memoryStore) Load(context.Context) (map[string]string, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make(map[string]string, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out, nil
}

func (s *memoryStore) Put(_ context.Context, name, id string) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.data[name] = id
	return nil
}

func TestAddSynonym_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	ix := indexOf(t, Entry{ID: "M1", Name: "milk"})
	r := NewResolver(ix)

	require.NoError(t, AddSynonym(ctx, store, ix, "Soy Milk", "000123"))

	m, ok := r.Match("soy milk")
	require.True(t, ok)
	assert.Equal(t, "000123", m.ID)
	assert.Equal(t, StageExact, m.Stage)
	assert.Equal(t, map[string]string{"soy milk": "000123"}, store.data)

	// 重複加入會覆寫
	require.NoError(t, AddSynonym(ctx, store, ix, "soy milk", "000456"))
	id, _ := r.Resolve("soy milk")
	assert.Equal(t, "000456", id)
}

func TestAddSynonym_StoreFailureLeavesIndexUntouched(t *testing.T) {
	store := newMemoryStore()
	store.putErr = errors.New("disk full")
	ix := indexOf(t, Entry{ID: "M1", Name: "milk"})

	err := AddSynonym(context.Background(), store, ix, "soy milk", "000123")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSynonymStore)

	_, ok := ix.Lookup("soy milk")
	assert.False(t, ok)
}

func TestAddSynonym_Validation(t *testing.T) {
	ix := NewIndex()
	store := newMemoryStore()

	err := AddSynonym(context.Background(), store, ix, " ", "P1")
	assert.True(t, common.IsValidationError(err))

	err = AddSynonym(context.Background(), store, ix, "salt", "")
	assert.True(t, common.IsValidationError(err))
	assert.Empty(t, store.data)
}

func TestLoadSynonyms(t *testing.T) {
	store := newMemoryStore()
	store.data["soy milk"] = "000123"
	store.data["oat milk"] = "000124"
	ix := NewIndex()

	n, err := LoadSynonyms(context.Background(), store, ix)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ix.Populate([]Entry{{ID: "M1", Name: "milk"}})
	id, ok := ix.Lookup("oat milk")
	require.True(t, ok)
	assert.Equal(t, "000124", id)

	store.loadErr = errors.New("unreachable")
	_, err = LoadSynonyms(context.Background(), store, ix)
	assert.ErrorIs(t, err, common.ErrSynonymStore)
}
