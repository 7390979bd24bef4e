package app

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varoOP/seasonshare/internal/domain"
	"github.com/varoOP/seasonshare/internal/repository"
	"github.com/varoOP/seasonshare/internal/sharelist"
	"github.com/varoOP/seasonshare/internal/viewstate"
)

func coverServer(t *testing.T) *httptest.Server {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(buf.Bytes())
	}))
	t.Cleanup(srv.Close)
	return srv
}

func seed(t *testing.T, dir, imageURL string) {
	t.Helper()
	repo := repository.NewFileRepository(zerolog.Nop(), dir)
	ctx := context.Background()
	require.NoError(t, repo.Store(ctx, domain.SeasonKey{Year: "2025", Season: domain.SeasonSpring}, &domain.SeasonDocument{
		AnimeList: []domain.AnimeEntry{
			{Name: "春一", ImageURL: imageURL, PremiereDate: "一", PremiereTime: "20:00", Story: "春天"},
			{Name: "春二", PremiereDate: "二", PremiereTime: "21:00"},
		},
	}))
	require.NoError(t, repo.Store(ctx, domain.SeasonKey{Year: "2025", Season: domain.SeasonSummer}, &domain.SeasonDocument{
		AnimeList: []domain.AnimeEntry{{Name: "夏一", PremiereDate: "三", PremiereTime: "22:00"}},
	}))
}

func newTestApp(t *testing.T, cfg *domain.Config, client *http.Client) *App {
	t.Helper()
	clock := func() time.Time { return time.Date(2025, time.August, 3, 12, 0, 0, 0, time.UTC) }
	a, err := New(zerolog.Nop(), cfg, WithClock(clock), WithHTTPClient(client))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestSessionAcrossRestarts(t *testing.T) {
	srv := coverServer(t)
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	seed(t, dataDir, srv.URL+"/cover.png")

	cfg := &domain.Config{
		DataDir:        dataDir,
		IndexPath:      filepath.Join(dataDir, "index.yaml"),
		DBDir:          filepath.Join(root, "db"),
		ExportDir:      filepath.Join(root, "out"),
		HDImageSize:    16,
		PreloadTimeout: time.Second,
		PreloadWorkers: 2,
	}
	ctx := context.Background()

	first := newTestApp(t, cfg, srv.Client())
	require.NoError(t, first.Start(ctx))
	assert.Equal(t, viewstate.FromCurrentSeason, first.Coordinator.Resolution().Origin)
	assert.Equal(t, domain.SeasonSummer, first.Coordinator.View().Season)

	require.NoError(t, first.Coordinator.SelectSeason(ctx, "2025", domain.SeasonSpring))
	_, err := first.Share(ctx, 1)
	require.NoError(t, err)
	_, err = first.Share(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrDuplicateEntry)
	_, err = first.Share(ctx, 9)
	assert.Error(t, err)
	require.NoError(t, first.Coordinator.SetScroll(ctx, 1))
	require.NoError(t, first.Close())

	second := newTestApp(t, cfg, srv.Client())
	require.NoError(t, second.Start(ctx))
	assert.Equal(t, viewstate.FromPreference, second.Coordinator.Resolution().Origin)
	assert.Equal(t, domain.SeasonSpring, second.Coordinator.View().Season)
	assert.Equal(t, 1, second.Coordinator.Scroll())
	require.Equal(t, 1, second.ShareList.Len())
	assert.Equal(t, "春一", second.ShareList.List()[0].Name)

	out, err := second.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Count)
	_, err = os.Stat(out.Path)
	assert.NoError(t, err)
	assert.Equal(t, 0, second.ShareList.Len())
}

func TestUnshareAndFallback(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	seed(t, dataDir, "")

	cfg := &domain.Config{
		DataDir:       dataDir,
		IndexPath:     filepath.Join(dataDir, "index.yaml"),
		DefaultYear:   "2025",
		DefaultSeason: domain.SeasonSpring,
	}
	a, err := New(zerolog.Nop(), cfg, WithEphemeral(true),
		WithClock(func() time.Time { return time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC) }))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.Start(ctx))
	assert.Equal(t, viewstate.FromServerDefault, a.Coordinator.Resolution().Origin)
	assert.Len(t, a.Coordinator.Visible(), 2)

	_, err = a.Share(ctx, 2)
	require.NoError(t, err)

	removed, err := a.Unshare(ctx, sharelist.Name("不存在"))
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = a.Unshare(ctx, sharelist.Index(0))
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = a.Export(ctx)
	assert.Error(t, err)
}

func TestFallbackFromIndex(t *testing.T) {
	a := &App{config: &domain.Config{}}
	idx := domain.SeasonIndex{}
	idx.Add("2024", domain.SeasonAutumn)
	idx.Add("2025", domain.SeasonWinter)
	idx.Add("2025", domain.SeasonSpring)

	assert.Equal(t, domain.SeasonKey{Year: "2025", Season: domain.SeasonSpring}, a.fallback(idx))
	assert.Equal(t, domain.SeasonKey{}, a.fallback(domain.SeasonIndex{}))
}

func TestGenerateBuildOnlyRefreshesIndex(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	seed(t, dataDir, "")

	cfg := &domain.Config{
		DataDir:   dataDir,
		IndexPath: filepath.Join(dataDir, "index.yaml"),
		BuildOnly: true,
	}
	a, err := New(zerolog.Nop(), cfg, WithEphemeral(true),
		WithClock(func() time.Time { return time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC) }))
	require.NoError(t, err)

	report, err := a.Generate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Written)

	idx, err := a.Index()
	require.NoError(t, err)
	assert.Equal(t, []domain.Season{domain.SeasonSpring, domain.SeasonSummer}, idx.Seasons("2025"))

	_, err = os.Stat(cfg.IndexPath)
	assert.NoError(t, err)
}
