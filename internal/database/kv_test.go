package database

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*KVRepo, *DB, string) {
	t.Helper()
	dir := t.TempDir()
	db, err := NewDB(dir, zerolog.Nop())
	require.NoError(t, err)
	return NewKVRepo(zerolog.Nop(), db), db, dir
}

func TestKVRepoSetGetDelete(t *testing.T) {
	ctx := context.Background()
	repo, db, _ := newTestRepo(t)
	defer db.Close()

	_, ok, err := repo.Get(ctx, "anime_user_year")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Set(ctx, "anime_user_year", "2025"))
	require.NoError(t, repo.Set(ctx, "anime_user_season", "春"))
	require.NoError(t, repo.Set(ctx, "anime_user_year", "2024"))

	v, ok, err := repo.Get(ctx, "anime_user_year")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2024", v)

	v, ok, err = repo.Get(ctx, "anime_user_season")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "春", v)

	require.NoError(t, repo.Delete(ctx, "anime_user_year"))
	require.NoError(t, repo.Delete(ctx, "missing"))
	_, ok, err = repo.Get(ctx, "anime_user_year")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKVRepoSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	repo, db, dir := newTestRepo(t)
	require.NoError(t, repo.Set(ctx, "anime_user_scroll_pos", "1200"))
	require.NoError(t, db.Close())

	db, err := NewDB(dir, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	v, ok, err := NewKVRepo(zerolog.Nop(), db).Get(ctx, "anime_user_scroll_pos")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1200", v)
}

func TestMigrateIsIdempotent(t *testing.T) {
	_, db, _ := newTestRepo(t)
	defer db.Close()

	require.NoError(t, db.Migrate())
	require.NoError(t, db.Ping())
}
