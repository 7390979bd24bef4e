package generate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varoOP/seasonshare/internal/catalog"
	"github.com/varoOP/seasonshare/internal/domain"
	"github.com/varoOP/seasonshare/internal/repository"
)

const listingPage = `<html><body>
<div id="acgs-anime-list">
  <div class="CV-search" acgs-bangumi-data-id="101">
    <div class="time_today main_time">每週三 <span>23時30分</span></div>
    <div class="overflow-hidden anime_cover_image"><img src="https://img.example/101.jpg"></div>
    <h3 class="entity_localized_name"> 週三深夜 </h3>
    <div class="anime_story">
      <p>第一段</p>
      <p>第二段</p>
    </div>
  </div>
  <div class="CV-search" acgs-bangumi-data-id="102">
    <div class="time_today main_time">每週一 8時5分</div>
    <div class="overflow-hidden anime_cover_image"><img src="https://img.example/102.jpg"></div>
    <h3 class="entity_localized_name">週一早晨</h3>
  </div>
  <div class="CV-search">
    <h3 class="entity_localized_name">未定</h3>
  </div>
</div>
</body></html>`

func TestScrapeParsesListing(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, listingPage)
	}))
	defer srv.Close()

	s := NewScraper(zerolog.Nop(), srv.URL, WithDelay(0))
	list, err := s.Scrape(context.Background(), domain.SeasonKey{Year: "2025", Season: domain.SeasonSpring})
	require.NoError(t, err)
	assert.Equal(t, "/202504/", path)

	require.Len(t, list, 3)

	assert.Equal(t, "週一早晨", list[0].Name)
	assert.Equal(t, "一", list[0].PremiereDate)
	assert.Equal(t, "08:05", list[0].PremiereTime)
	assert.Equal(t, "無故事大綱", list[0].Story)

	assert.Equal(t, "週三深夜", list[1].Name)
	assert.Equal(t, "102", list[0].BangumiID)
	assert.Equal(t, "三", list[1].PremiereDate)
	assert.Equal(t, "23:30", list[1].PremiereTime)
	assert.Equal(t, "第一段第二段", list[1].Story)
	assert.Equal(t, "https://img.example/101.jpg", list[1].ImageURL)

	assert.Equal(t, "未定", list[2].Name)
	assert.Equal(t, domain.NoPremiereDate, list[2].PremiereDate)
	assert.Equal(t, domain.NoImage, list[2].ImageURL)
	assert.Equal(t, domain.UnknownID, list[2].BangumiID)
}

func TestScrapeMissingListIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>maintenance</p></body></html>")
	}))
	defer srv.Close()

	s := NewScraper(zerolog.Nop(), srv.URL+"/", WithDelay(0))
	list, err := s.Scrape(context.Background(), domain.SeasonKey{Year: "2025", Season: domain.SeasonSummer})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestScrapeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	s := NewScraper(zerolog.Nop(), srv.URL, WithDelay(0))
	_, err := s.Scrape(context.Background(), domain.SeasonKey{Year: "2025", Season: domain.SeasonSummer})
	assert.Error(t, err)
}

func TestScrapeInvalidSeason(t *testing.T) {
	s := NewScraper(zerolog.Nop(), "http://unused", WithDelay(0))
	_, err := s.Scrape(context.Background(), domain.SeasonKey{Year: "2025", Season: "x"})
	assert.Error(t, err)
}

type stubScraper struct {
	mu    sync.Mutex
	calls []domain.SeasonKey
	fail  map[domain.SeasonKey]bool
}

func (s *stubScraper) Scrape(ctx context.Context, key domain.SeasonKey) ([]domain.AnimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, key)
	if s.fail[key] {
		return nil, fmt.Errorf("boom")
	}
	return []domain.AnimeEntry{{Name: "A " + key.String(), PremiereDate: "一", PremiereTime: "20:00"}}, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestGeneratorFullCrawlWhenEmpty(t *testing.T) {
	dir := t.TempDir()
	repo := repository.NewFileRepository(zerolog.Nop(), dir)
	scr := &stubScraper{}
	indexPath := filepath.Join(dir, "index.yaml")

	g := NewGenerator(zerolog.Nop(), scr, repo, indexPath, WithClock(fixedClock(time.Date(2020, time.May, 1, 0, 0, 0, 0, time.UTC))))

	years, err := g.Years()
	require.NoError(t, err)
	assert.Equal(t, []int{2018, 2019, 2020, 2021}, years)

	report, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Written, 16)
	assert.Empty(t, report.Skipped)

	idx, err := catalog.LoadIndex(indexPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"2021", "2020", "2019", "2018"}, idx.Years())
	assert.Equal(t, domain.Seasons, idx.Seasons("2019"))
}

func TestGeneratorIncrementalSkipsStartedSeasons(t *testing.T) {
	dir := t.TempDir()
	repo := repository.NewFileRepository(zerolog.Nop(), dir)
	ctx := context.Background()

	existing := []domain.SeasonKey{
		{Year: "2023", Season: domain.SeasonWinter},
		{Year: "2025", Season: domain.SeasonSpring},
		{Year: "2025", Season: domain.SeasonAutumn},
	}
	for _, k := range existing {
		require.NoError(t, repo.Store(ctx, k, &domain.SeasonDocument{AnimeList: []domain.AnimeEntry{{Name: "old"}}}))
	}

	failing := domain.SeasonKey{Year: "2024", Season: domain.SeasonSummer}
	scr := &stubScraper{fail: map[domain.SeasonKey]bool{failing: true}}
	g := NewGenerator(zerolog.Nop(), scr, repo, "", WithClock(fixedClock(time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC))))

	report, err := g.Run(ctx)
	require.NoError(t, err)

	assert.ElementsMatch(t, existing[:2], report.Skipped)
	assert.Contains(t, report.Written, domain.SeasonKey{Year: "2025", Season: domain.SeasonAutumn})
	assert.Equal(t, []domain.SeasonKey{failing}, report.Failed)
	assert.Len(t, scr.calls, 16-2)

	assert.False(t, report.Index.Has("2024", domain.SeasonSummer))
	assert.True(t, report.Index.Has("2026", domain.SeasonAutumn))
}

func TestGeneratorBuildOnlyNeverScrapes(t *testing.T) {
	dir := t.TempDir()
	repo := repository.NewFileRepository(zerolog.Nop(), dir)
	ctx := context.Background()
	require.NoError(t, repo.Store(ctx, domain.SeasonKey{Year: "2025", Season: domain.SeasonSummer}, &domain.SeasonDocument{}))

	scr := &stubScraper{}
	indexPath := filepath.Join(dir, "index.yaml")
	g := NewGenerator(zerolog.Nop(), scr, repo, indexPath,
		WithClock(fixedClock(time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC))),
		WithBuildOnly(true),
	)

	report, err := g.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, scr.calls)
	assert.Empty(t, report.Written)
	assert.Equal(t, []domain.Season{domain.SeasonSummer}, report.Index.Seasons("2025"))
}
