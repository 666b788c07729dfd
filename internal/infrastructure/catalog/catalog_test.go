package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantry-resolver/internal/core/cache"
	"pantry-resolver/internal/core/pantry"
	"pantry-resolver/internal/infrastructure/config"
	"pantry-resolver/internal/pkg/common"
)

func TestParseSnapshot(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []pantry.Entry
	}{
		{
			name: "wrapped terse",
			data: `{"ingredients":[{"i":"P1","n":"onions","s":true}]}`,
			want: []pantry.Entry{{ID: "P1", Name: "onions", IsStaple: true}},
		},
		{
			name: "bare verbose array",
			data: `[{"id":"P2","name":"garlic","is_staple":false},{"id":3,"name":"salt"}]`,
			want: []pantry.Entry{{ID: "P2", Name: "garlic"}, {ID: "3", Name: "salt"}},
		},
		{
			name: "empty document",
			data: "  ",
			want: []pantry.Entry{},
		},
		{
			name: "object without ingredients",
			data: `{}`,
			want: []pantry.Entry{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSnapshot([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseSnapshot([]byte(`{"ingredients":`))
	assert.Error(t, err)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pantry.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"i":"P1","n":"onions"}]`), 0o644))

	entries, err := NewFileSource(path).Entries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []pantry.Entry{{ID: "P1", Name: "onions"}}, entries)

	_, err = NewFileSource(filepath.Join(t.TempDir(), "missing.json")).Entries(context.Background())
	assert.Error(t, err)
}

func TestSQLiteSource(t *testing.T) {
	ctx := context.Background()
	src, err := OpenSQLite(filepath.Join(t.TempDir(), "pantry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })

	n, err := src.Import(ctx, []pantry.Entry{
		{ID: "P1", Name: "Onions", IsStaple: true},
		{ID: "P2", Name: "Garlic"},
		{ID: "IMP-9", Name: "Imported Garlic"},
		{ID: "", Name: "invalid"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	entries, err := src.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []pantry.Entry{
		{ID: "P1", Name: "Onions", IsStaple: true},
		{ID: "P2", Name: "Garlic"},
	}, entries)

	require.NoError(t, src.SetStatus(ctx, "P2", StatusInactive))
	entries, err = src.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	err = src.SetStatus(ctx, "missing", StatusActive)
	assert.ErrorIs(t, err, common.ErrNotFound)

	// 更新既有資料
	_, err = src.Import(ctx, []pantry.Entry{{ID: "P1", Name: "Yellow Onions"}})
	require.NoError(t, err)
	entries, err = src.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []pantry.Entry{{ID: "P1", Name: "Yellow Onions"}}, entries)

	assert.NoError(t, src.Ping(ctx))
}

type countingSource struct {
	calls   int
	entries []pantry.Entry
	err     error
}

func (s *countingSource) Entries(context.Context) ([]pantry.Entry, error) {
	s.calls++
	return s.entries, s.err
}

func TestCachedSource(t *testing.T) {
	ctx := context.Background()
	mgr := cache.NewManager(config.CacheConfig{Enabled: true, MaxSize: 10, TTL: time.Hour})
	t.Cleanup(func() { mgr.Close() })

	src := &countingSource{entries: []pantry.Entry{{ID: "P1", Name: "onions"}}}
	cached := NewCachedSource(src, mgr, time.Minute)

	for i := 0; i < 3; i++ {
		entries, err := cached.Entries(ctx)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	}
	assert.Equal(t, 1, src.calls)

	cached.Invalidate(ctx)
	_, err := cached.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestCachedSource_WithoutCache(t *testing.T) {
	src := &countingSource{entries: []pantry.Entry{}}
	cached := NewCachedSource(src, nil, time.Minute)

	_, _ = cached.Entries(context.Background())
	_, _ = cached.Entries(context.Background())
	assert.Equal(t, 2, src.calls)
	cached.Invalidate(context.Background())
}

func TestCachedSource_Unavailable(t *testing.T) {
	src := &countingSource{err: errors.New("connection refused")}
	cached := NewCachedSource(src, nil, time.Minute)

	_, err := cached.Entries(context.Background())
	assert.ErrorIs(t, err, common.ErrCatalogUnavailable)
}

func TestOpen(t *testing.T) {
	cached, closer, err := Open(config.CatalogConfig{Source: config.SourceSQLite, DSN: filepath.Join(t.TempDir(), "c.db")}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteSource{}, cached.Source())
	assert.NoError(t, closer.Close())

	_, _, err = Open(config.CatalogConfig{Source: "mongo"}, nil)
	assert.Error(t, err)
}
