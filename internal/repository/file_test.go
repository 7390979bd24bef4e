package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varoOP/seasonshare/internal/domain"
)

func TestStoreAndGet(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")
	repo := NewFileRepository(zerolog.Nop(), dir)
	key := domain.SeasonKey{Year: "2025", Season: domain.SeasonAutumn}

	assert.False(t, repo.Exists(key))

	doc := &domain.SeasonDocument{AnimeList: []domain.AnimeEntry{{Name: "間諜家家酒", PremiereDate: "六"}}}
	require.NoError(t, repo.Store(ctx, key, doc))
	assert.True(t, repo.Exists(key))
	assert.FileExists(t, filepath.Join(dir, "2025_秋.json"))

	got, err := repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, doc.AnimeList, got.AnimeList)
}

func TestGetMissing(t *testing.T) {
	repo := NewFileRepository(zerolog.Nop(), t.TempDir())
	_, err := repo.Get(context.Background(), domain.SeasonKey{Year: "2019", Season: domain.SeasonWinter})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestKeys(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"2025_春.json", "2024_冬.json", "index.yaml", "notes.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644))
	}

	keys, err := NewFileRepository(zerolog.Nop(), dir).Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.SeasonKey{
		{Year: "2025", Season: domain.SeasonSpring},
		{Year: "2024", Season: domain.SeasonWinter},
	}, keys)
}
