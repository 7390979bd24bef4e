// Package viewstate coordinates the initial season selection, season loads,
// the filtered view and scroll restoration for one session.
package viewstate

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/seasonshare/internal/catalog"
	"github.com/varoOP/seasonshare/internal/domain"
	"github.com/varoOP/seasonshare/internal/filter"
)

// Loader loads a season's list
type Loader interface {
	Load(ctx context.Context, key domain.SeasonKey) (catalog.Result, error)
}

// Preferences is the part of the preference store the coordinator uses
type Preferences interface {
	Selection(ctx context.Context) (string, domain.Season, bool, error)
	SetSelection(ctx context.Context, year string, season domain.Season) error
	Weekday(ctx context.Context) (string, error)
	SetWeekday(ctx context.Context, weekday string) error
	Scroll(ctx context.Context) (int, error)
	SetScroll(ctx context.Context, offset int) error
	ClearScroll(ctx context.Context) error
}

// Resolution describes how the initial selection was chosen
type Resolution struct {
	Key           domain.SeasonKey
	Origin        Origin
	RestoreScroll bool
}

type Coordinator struct {
	log      zerolog.Logger
	loader   Loader
	prefs    Preferences
	notifier domain.Notifier
	index    domain.SeasonIndex
	fallback domain.SeasonKey
	now      func() time.Time

	// persistMu orders selection and scroll writes so a stale load can't
	// overwrite what a newer one stored
	persistMu sync.Mutex

	mu          sync.Mutex
	state       State
	view        domain.ViewState
	resolution  Resolution
	raw         []domain.AnimeEntry
	visible     []domain.AnimeEntry
	generatedAt domain.Timestamp
	loadErr     error
	scroll      int
	generation  uint64
	loads       int
}

type Option func(*Coordinator)

// WithClock replaces time.Now, used to compute the current real-world season
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithNotifier sets where load failures are reported
func WithNotifier(n domain.Notifier) Option {
	return func(c *Coordinator) { c.notifier = n }
}

// New creates a coordinator. index is the available-seasons index supplied by
// the embedding page and fallback the server-provided default selection.
func New(log zerolog.Logger, loader Loader, prefs Preferences, index domain.SeasonIndex, fallback domain.SeasonKey, opts ...Option) *Coordinator {
	c := &Coordinator{
		log:      log.With().Str("module", "viewstate").Logger(),
		loader:   loader,
		prefs:    prefs,
		index:    index,
		fallback: fallback,
		now:      time.Now,
		view:     domain.ViewState{Weekday: domain.WeekdayAll},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init resolves the initial selection and performs the first load.
// A failed load is not returned: it leaves an empty view, is reported to the
// notifier and is available from LoadErr.
func (c *Coordinator) Init(ctx context.Context) error {
	c.mu.Lock()
	if c.state != Uninitialized {
		c.mu.Unlock()
		return errors.Errorf("coordinator already initialized (state %s)", c.state)
	}
	c.state = ResolvingPreferences
	c.mu.Unlock()

	res, err := c.resolve(ctx)
	if err != nil {
		c.setState(Uninitialized)
		return err
	}

	weekday, err := c.prefs.Weekday(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to restore weekday filter")
		weekday = domain.WeekdayAll
	}

	c.log.Info().
		Str("key", res.Key.String()).
		Stringer("origin", res.Origin).
		Bool("restore_scroll", res.RestoreScroll).
		Str("weekday", weekday).
		Msg("resolved initial selection")

	c.mu.Lock()
	c.resolution = res
	c.view.Year = res.Key.Year
	c.view.Season = res.Key.Season
	c.view.Weekday = weekday
	gen := c.beginLoadLocked()
	c.mu.Unlock()

	return c.load(ctx, res.Key, gen, res.RestoreScroll)
}

// resolve applies the priority chain: persisted selection, current real-world
// season, server default.
func (c *Coordinator) resolve(ctx context.Context) (Resolution, error) {
	year, season, ok, err := c.prefs.Selection(ctx)
	if err != nil {
		return Resolution{}, errors.Wrap(err, "failed to read persisted selection")
	}
	if ok {
		err := c.checkAvailable(year, season)
		if err == nil {
			return Resolution{Key: domain.SeasonKey{Year: year, Season: season}, Origin: FromPreference, RestoreScroll: true}, nil
		}
		c.log.Debug().Err(err).Msg("falling back from persisted selection")
	}

	now := c.now()
	current := domain.SeasonKey{Year: strconv.Itoa(now.Year()), Season: domain.SeasonForMonth(int(now.Month()))}
	if c.index.Has(current.Year, current.Season) {
		return Resolution{Key: current, Origin: FromCurrentSeason}, nil
	}

	return Resolution{Key: c.normalize(c.fallback.Year, c.fallback.Season), Origin: FromServerDefault}, nil
}

func (c *Coordinator) checkAvailable(year string, season domain.Season) error {
	if !c.index.Has(year, season) {
		return errors.Wrapf(domain.ErrPreferenceInvalid, "%s_%s", year, season)
	}
	return nil
}

// normalize keeps season if the year offers it, otherwise picks the year's first
// season, or none when the year has no data
func (c *Coordinator) normalize(year string, season domain.Season) domain.SeasonKey {
	seasons := c.index.Seasons(year)
	if len(seasons) == 0 {
		return domain.SeasonKey{Year: year}
	}
	if c.index.Has(year, season) {
		return domain.SeasonKey{Year: year, Season: season}
	}
	return domain.SeasonKey{Year: year, Season: seasons[0]}
}

// SelectSeason switches to another season. The new context always starts at
// the top; the persisted scroll offset is never consulted.
func (c *Coordinator) SelectSeason(ctx context.Context, year string, season domain.Season) error {
	key := c.normalize(year, season)

	c.mu.Lock()
	if c.state == Uninitialized || c.state == ResolvingPreferences {
		c.mu.Unlock()
		return errors.New("coordinator not initialized")
	}
	c.view.Year = key.Year
	c.view.Season = key.Season
	gen := c.beginLoadLocked()
	c.mu.Unlock()

	return c.load(ctx, key, gen, false)
}

// SelectYear switches year and selects its first available season
func (c *Coordinator) SelectYear(ctx context.Context, year string) error {
	return c.SelectSeason(ctx, year, "")
}

func (c *Coordinator) beginLoadLocked() uint64 {
	c.generation++
	c.state = Loading
	return c.generation
}

func (c *Coordinator) load(ctx context.Context, key domain.SeasonKey, gen uint64, restore bool) error {
	var (
		res     catalog.Result
		loadErr error
	)
	if key.Empty() {
		res = catalog.Result{Key: key, Entries: []domain.AnimeEntry{}}
	} else {
		res, loadErr = c.loader.Load(ctx, key)
	}

	c.mu.Lock()
	if gen != c.generation || key != c.view.Key() {
		c.mu.Unlock()
		c.log.Debug().Str("key", key.String()).Msg("discarding stale season load")
		return nil
	}

	first := c.loads == 0
	c.loads++
	c.raw = res.Entries
	if c.raw == nil {
		c.raw = []domain.AnimeEntry{}
	}
	c.generatedAt = res.GeneratedAt
	c.loadErr = loadErr
	c.state = Ready
	c.recomputeLocked()
	c.mu.Unlock()

	if loadErr != nil {
		c.notify(ctx, domain.Notice{
			Level: domain.NoticeError,
			Title: "載入失敗",
			Text:  fmt.Sprintf("無法載入資料 (%s %s)", key.Year, key.Season),
		})
	}

	if err := c.persistSelection(ctx, gen, key); err != nil {
		return err
	}

	offset := 0
	if first && restore {
		saved, err := c.prefs.Scroll(ctx)
		if err != nil {
			c.log.Warn().Err(err).Msg("failed to read scroll offset")
		}
		offset = saved
	}
	return c.applyScroll(ctx, gen, offset)
}

// persistSelection stores key unless a newer load has started since gen
func (c *Coordinator) persistSelection(ctx context.Context, gen uint64, key domain.SeasonKey) error {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	if c.stale(gen) {
		c.log.Debug().Str("key", key.String()).Msg("skipping selection write for stale load")
		return nil
	}
	return errors.Wrap(c.prefs.SetSelection(ctx, key.Year, key.Season), "failed to persist selection")
}

func (c *Coordinator) stale(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen != c.generation
}

func (c *Coordinator) applyScroll(ctx context.Context, gen uint64, offset int) error {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return nil
	}
	c.scroll = offset
	c.mu.Unlock()

	c.log.Debug().Int("offset", offset).Msg("scroll applied")
	return errors.Wrap(c.prefs.SetScroll(ctx, offset), "failed to persist scroll offset")
}

// SetWeekday changes the weekday filter. It never reloads the season.
func (c *Coordinator) SetWeekday(ctx context.Context, weekday string) error {
	if weekday == "" {
		weekday = domain.WeekdayAll
	}
	c.mu.Lock()
	c.view.Weekday = weekday
	c.recomputeLocked()
	c.mu.Unlock()

	return errors.Wrap(c.prefs.SetWeekday(ctx, weekday), "failed to persist weekday")
}

// SetKeyword changes the search keyword. Keywords are not persisted.
func (c *Coordinator) SetKeyword(keyword string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Keyword = keyword
	c.recomputeLocked()
}

// SetScroll records the user's scroll offset
func (c *Coordinator) SetScroll(ctx context.Context, offset int) error {
	if offset < 0 {
		offset = 0
	}
	c.mu.Lock()
	c.scroll = offset
	c.mu.Unlock()
	return errors.Wrap(c.prefs.SetScroll(ctx, offset), "failed to persist scroll offset")
}

// BackToTop scrolls to the top and forgets the persisted offset
func (c *Coordinator) BackToTop(ctx context.Context) error {
	c.mu.Lock()
	c.scroll = 0
	c.mu.Unlock()
	return errors.Wrap(c.prefs.ClearScroll(ctx), "failed to clear scroll offset")
}

// Recompute re-runs the filter over the loaded list and returns the view
func (c *Coordinator) Recompute() []domain.AnimeEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recomputeLocked()
	return c.visibleLocked()
}

func (c *Coordinator) recomputeLocked() {
	c.visible = filter.Apply(c.raw, c.view.Weekday, c.view.Keyword)
}

func (c *Coordinator) visibleLocked() []domain.AnimeEntry {
	out := make([]domain.AnimeEntry, len(c.visible))
	copy(out, c.visible)
	return out
}

// Visible returns the filtered view as of the last recompute
func (c *Coordinator) Visible() []domain.AnimeEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visibleLocked()
}

// Entries returns the full list of the loaded season
func (c *Coordinator) Entries() []domain.AnimeEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.AnimeEntry, len(c.raw))
	copy(out, c.raw)
	return out
}

func (c *Coordinator) View() domain.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) Resolution() Resolution {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolution
}

// Scroll returns the current scroll offset
func (c *Coordinator) Scroll() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scroll
}

// GeneratedAt returns the loaded document's timestamp, for display only
func (c *Coordinator) GeneratedAt() domain.Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generatedAt
}

// LoadErr returns the error of the last committed load, nil on success
func (c *Coordinator) LoadErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}

// Index returns the available-seasons index
func (c *Coordinator) Index() domain.SeasonIndex {
	return c.index
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Coordinator) notify(ctx context.Context, n domain.Notice) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Notify(ctx, n); err != nil {
		c.log.Warn().Err(err).Msg("failed to deliver notice")
	}
}
