package viewstate

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varoOP/seasonshare/internal/catalog"
	"github.com/varoOP/seasonshare/internal/domain"
	"github.com/varoOP/seasonshare/internal/preference"
)

var (
	spring2025 = domain.SeasonKey{Year: "2025", Season: domain.SeasonSpring}
	summer2025 = domain.SeasonKey{Year: "2025", Season: domain.SeasonSummer}
	index      = domain.SeasonIndex{"2025": {domain.SeasonSpring, domain.SeasonSummer}}
)

type fakeLoader struct {
	mu    sync.Mutex
	data  map[domain.SeasonKey][]domain.AnimeEntry
	block map[domain.SeasonKey]chan struct{}
	calls []domain.SeasonKey
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		data: map[domain.SeasonKey][]domain.AnimeEntry{
			spring2025: {
				{Name: "Kaiju No. 8", PremiereDate: "六", Story: "monster"},
				{Name: "Spring Show", PremiereDate: "一", Story: "sakura"},
			},
			summer2025: {
				{Name: "Summer Show", PremiereDate: "三", Story: "beach"},
			},
		},
		block: map[domain.SeasonKey]chan struct{}{},
	}
}

func (f *fakeLoader) Load(_ context.Context, key domain.SeasonKey) (catalog.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, key)
	ch := f.block[key]
	list, ok := f.data[key]
	f.mu.Unlock()

	if ch != nil {
		<-ch
	}
	if !ok {
		return catalog.Result{Key: key, Entries: []domain.AnimeEntry{}}, errors.Wrap(domain.ErrDataUnavailable, "missing")
	}
	return catalog.Result{Key: key, Entries: list}, nil
}

func (f *fakeLoader) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// countingPrefs records how often the persisted scroll offset is read
type countingPrefs struct {
	*preference.Store
	scrollReads int32
}

func (p *countingPrefs) Scroll(ctx context.Context) (int, error) {
	atomic.AddInt32(&p.scrollReads, 1)
	return p.Store.Scroll(ctx)
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []domain.Notice
}

func (r *recordingNotifier) Notify(_ context.Context, n domain.Notice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
	return nil
}

func clock(year int, month time.Month) func() time.Time {
	return func() time.Time { return time.Date(year, month, 15, 12, 0, 0, 0, time.UTC) }
}

func setup(t *testing.T, now func() time.Time) (*Coordinator, *fakeLoader, *countingPrefs, *recordingNotifier) {
	t.Helper()
	loader := newFakeLoader()
	prefs := &countingPrefs{Store: preference.NewStore(zerolog.Nop(), preference.NewMemoryStore())}
	notifier := &recordingNotifier{}
	c := New(zerolog.Nop(), loader, prefs, index, spring2025, WithClock(now), WithNotifier(notifier))
	return c, loader, prefs, notifier
}

func TestStalePreferenceFallsBackToServerDefault(t *testing.T) {
	ctx := context.Background()
	c, _, prefs, _ := setup(t, clock(2026, time.October))
	require.NoError(t, prefs.SetSelection(ctx, "2024", domain.SeasonSpring))
	require.NoError(t, prefs.SetScroll(ctx, 1200))

	require.NoError(t, c.Init(ctx))

	res := c.Resolution()
	assert.Equal(t, FromServerDefault, res.Origin)
	assert.False(t, res.RestoreScroll)
	assert.Equal(t, spring2025, c.View().Key())
	assert.Equal(t, Ready, c.State())
	assert.Equal(t, 0, c.Scroll())

	year, season, ok, err := prefs.Selection(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2025", year)
	assert.Equal(t, domain.SeasonSpring, season)
}

func TestPersistedSelectionRestoresScrollOnce(t *testing.T) {
	ctx := context.Background()
	c, loader, prefs, _ := setup(t, clock(2026, time.October))
	require.NoError(t, prefs.SetSelection(ctx, "2025", domain.SeasonSpring))
	require.NoError(t, prefs.SetScroll(ctx, 1200))

	require.NoError(t, c.Init(ctx))

	res := c.Resolution()
	assert.Equal(t, FromPreference, res.Origin)
	assert.True(t, res.RestoreScroll)
	assert.Equal(t, 1200, c.Scroll())
	assert.Len(t, c.Visible(), 2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&prefs.scrollReads))

	// a later season change starts at the top without reading the saved offset
	require.NoError(t, c.SelectSeason(ctx, "2025", domain.SeasonSummer))
	assert.Equal(t, 0, c.Scroll())
	assert.Equal(t, int32(1), atomic.LoadInt32(&prefs.scrollReads))
	assert.Equal(t, []domain.SeasonKey{spring2025, summer2025}, loader.calls)

	saved, err := prefs.Store.Scroll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, saved)
}

func TestCurrentSeasonDoesNotRestoreScroll(t *testing.T) {
	ctx := context.Background()
	c, _, prefs, _ := setup(t, clock(2025, time.August))
	require.NoError(t, prefs.SetScroll(ctx, 800))

	require.NoError(t, c.Init(ctx))

	res := c.Resolution()
	assert.Equal(t, FromCurrentSeason, res.Origin)
	assert.Equal(t, summer2025, res.Key)
	assert.False(t, res.RestoreScroll)
	assert.Equal(t, 0, c.Scroll())
	assert.Equal(t, int32(0), atomic.LoadInt32(&prefs.scrollReads))
}

func TestServerDefaultOutsideIndexIsNormalized(t *testing.T) {
	ctx := context.Background()
	loader := newFakeLoader()
	prefs := preference.NewStore(zerolog.Nop(), preference.NewMemoryStore())

	c := New(zerolog.Nop(), loader, prefs, index, domain.SeasonKey{Year: "2025", Season: domain.SeasonAutumn}, WithClock(clock(2030, time.January)))
	require.NoError(t, c.Init(ctx))
	assert.Equal(t, spring2025, c.View().Key())

	c = New(zerolog.Nop(), loader, prefs, domain.SeasonIndex{}, spring2025, WithClock(clock(2030, time.January)))
	require.NoError(t, c.Init(ctx))
	assert.Equal(t, domain.SeasonKey{Year: "2025"}, c.View().Key())
	assert.Empty(t, c.Visible())
	assert.NoError(t, c.LoadErr())
}

func TestWeekdayRestoredIndependently(t *testing.T) {
	ctx := context.Background()
	c, _, prefs, _ := setup(t, clock(2026, time.October))
	require.NoError(t, prefs.SetWeekday(ctx, "六"))

	require.NoError(t, c.Init(ctx))
	assert.Equal(t, "六", c.View().Weekday)
	require.Len(t, c.Visible(), 1)
	assert.Equal(t, "Kaiju No. 8", c.Visible()[0].Name)
	assert.Len(t, c.Entries(), 2)
}

func TestFilterChangesDoNotReload(t *testing.T) {
	ctx := context.Background()
	c, loader, prefs, _ := setup(t, clock(2026, time.October))
	require.NoError(t, c.Init(ctx))
	require.Equal(t, 1, loader.callCount())

	require.NoError(t, c.SetWeekday(ctx, "一"))
	assert.Equal(t, []string{"Spring Show"}, names(c.Visible()))

	w, err := prefs.Weekday(ctx)
	require.NoError(t, err)
	assert.Equal(t, "一", w)

	require.NoError(t, c.SetWeekday(ctx, domain.WeekdayAll))
	c.SetKeyword("MONSTER")
	assert.Equal(t, []string{"Kaiju No. 8"}, names(c.Visible()))

	c.SetKeyword("")
	assert.Len(t, c.Recompute(), 2)
	assert.Equal(t, 1, loader.callCount())
}

func TestLoadFailureLeavesSessionUsable(t *testing.T) {
	ctx := context.Background()
	c, loader, prefs, notifier := setup(t, clock(2026, time.October))
	idx := domain.SeasonIndex{"2025": {domain.SeasonSpring, domain.SeasonSummer, domain.SeasonAutumn}}
	c.index = idx
	require.NoError(t, c.Init(ctx))

	require.NoError(t, c.SelectSeason(ctx, "2025", domain.SeasonAutumn))
	assert.Equal(t, Ready, c.State())
	assert.Empty(t, c.Visible())
	assert.ErrorIs(t, c.LoadErr(), domain.ErrDataUnavailable)
	require.Len(t, notifier.notices, 1)
	assert.Equal(t, domain.NoticeError, notifier.notices[0].Level)

	_, season, _, err := prefs.Selection(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.SeasonAutumn, season)

	require.NoError(t, c.SelectSeason(ctx, "2025", domain.SeasonSummer))
	assert.NoError(t, c.LoadErr())
	assert.Len(t, c.Visible(), 1)
	assert.Equal(t, 3, loader.callCount())
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	ctx := context.Background()
	c, loader, _, _ := setup(t, clock(2025, time.August))
	require.NoError(t, c.Init(ctx))

	release := make(chan struct{})
	loader.mu.Lock()
	loader.block[spring2025] = release
	loader.mu.Unlock()

	done := make(chan error)
	go func() { done <- c.SelectSeason(ctx, "2025", domain.SeasonSpring) }()

	require.Eventually(t, func() bool { return loader.callCount() == 2 }, time.Second, time.Millisecond)
	require.NoError(t, c.SelectSeason(ctx, "2025", domain.SeasonSummer))

	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, summer2025, c.View().Key())
	assert.Equal(t, []string{"Summer Show"}, names(c.Entries()))
}

// gatedPrefs holds SetSelection for one key until released
type gatedPrefs struct {
	*preference.Store
	mu      sync.Mutex
	gate    domain.SeasonKey
	entered chan struct{}
	release chan struct{}
}

func (p *gatedPrefs) SetSelection(ctx context.Context, year string, season domain.Season) error {
	p.mu.Lock()
	hold := p.release != nil && p.gate == (domain.SeasonKey{Year: year, Season: season})
	entered, release := p.entered, p.release
	if hold {
		p.release = nil
	}
	p.mu.Unlock()

	if hold {
		close(entered)
		<-release
	}
	return p.Store.SetSelection(ctx, year, season)
}

func TestSlowSelectionWriteDoesNotOverrideNewerSeason(t *testing.T) {
	ctx := context.Background()
	loader := newFakeLoader()
	prefs := &gatedPrefs{Store: preference.NewStore(zerolog.Nop(), preference.NewMemoryStore())}
	c := New(zerolog.Nop(), loader, prefs, index, spring2025, WithClock(clock(2025, time.August)))
	require.NoError(t, c.Init(ctx))

	entered := make(chan struct{})
	release := make(chan struct{})
	prefs.mu.Lock()
	prefs.gate, prefs.entered, prefs.release = spring2025, entered, release
	prefs.mu.Unlock()

	springDone := make(chan error, 1)
	go func() { springDone <- c.SelectSeason(ctx, "2025", domain.SeasonSpring) }()
	<-entered

	summerDone := make(chan error, 1)
	go func() { summerDone <- c.SelectSeason(ctx, "2025", domain.SeasonSummer) }()
	require.Eventually(t, func() bool {
		return c.View().Key() == summer2025 && c.State() == Ready && len(c.Entries()) == 1
	}, time.Second, time.Millisecond)

	close(release)
	require.NoError(t, <-springDone)
	require.NoError(t, <-summerDone)

	year, season, ok, err := prefs.Store.Selection(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, summer2025, domain.SeasonKey{Year: year, Season: season})
	assert.Equal(t, summer2025, c.View().Key())
}

func TestSelectYearPicksFirstSeason(t *testing.T) {
	ctx := context.Background()
	c, loader, _, _ := setup(t, clock(2025, time.August))
	require.NoError(t, c.Init(ctx))

	require.NoError(t, c.SelectYear(ctx, "2025"))
	assert.Equal(t, spring2025, c.View().Key())

	require.NoError(t, c.SelectYear(ctx, "1999"))
	assert.Equal(t, domain.SeasonKey{Year: "1999"}, c.View().Key())
	assert.Empty(t, c.Visible())
	assert.Equal(t, 2, loader.callCount())
}

func TestInitTwiceFails(t *testing.T) {
	ctx := context.Background()
	c, _, _, _ := setup(t, clock(2025, time.August))
	require.NoError(t, c.Init(ctx))
	assert.Error(t, c.Init(ctx))
}

func TestSelectBeforeInitFails(t *testing.T) {
	c, _, _, _ := setup(t, clock(2025, time.August))
	assert.Error(t, c.SelectSeason(context.Background(), "2025", domain.SeasonSpring))
}

func TestScrollAndBackToTop(t *testing.T) {
	ctx := context.Background()
	c, _, prefs, _ := setup(t, clock(2025, time.August))
	require.NoError(t, c.Init(ctx))

	require.NoError(t, c.SetScroll(ctx, 640))
	assert.Equal(t, 640, c.Scroll())
	saved, err := prefs.Store.Scroll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 640, saved)

	require.NoError(t, c.BackToTop(ctx))
	assert.Equal(t, 0, c.Scroll())
	saved, err = prefs.Store.Scroll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, saved)
}

func names(list []domain.AnimeEntry) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.Name
	}
	return out
}
