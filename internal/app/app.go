package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/seasonshare/internal/catalog"
	"github.com/varoOP/seasonshare/internal/config"
	"github.com/varoOP/seasonshare/internal/database"
	"github.com/varoOP/seasonshare/internal/domain"
	"github.com/varoOP/seasonshare/internal/export"
	"github.com/varoOP/seasonshare/internal/generate"
	"github.com/varoOP/seasonshare/internal/logger"
	"github.com/varoOP/seasonshare/internal/notification"
	"github.com/varoOP/seasonshare/internal/preference"
	"github.com/varoOP/seasonshare/internal/repository"
	"github.com/varoOP/seasonshare/internal/sharelist"
	"github.com/varoOP/seasonshare/internal/viewstate"
)

// App represents one session with all dependencies initialized
type App struct {
	log      zerolog.Logger
	config   *domain.Config
	db       *database.DB
	prefs    *preference.Store
	repo     *repository.FileRepository
	loader   *catalog.Loader
	index    domain.SeasonIndex
	notifier domain.Notifier
	exporter export.Service
	now      func() time.Time

	Coordinator *viewstate.Coordinator
	ShareList   *sharelist.Manager
}

type Option func(*options)

type options struct {
	ephemeral bool
	now       func() time.Time
	client    *http.Client
}

// WithEphemeral keeps preferences in memory only
func WithEphemeral(ephemeral bool) Option {
	return func(o *options) { o.ephemeral = ephemeral }
}

// WithClock replaces the wall clock used to pick the current season
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithHTTPClient sets the client used for season documents and cover images
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// NewApp loads the configuration and creates the application
func NewApp(opts ...Option) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return New(logger.NewLoggerWithLevel(cfg.LogLevel), cfg, opts...)
}

// New wires the application from an already loaded configuration
func New(log zerolog.Logger, cfg *domain.Config, opts ...Option) (*App, error) {
	o := &options{now: time.Now, client: &http.Client{Timeout: 30 * time.Second}}
	for _, opt := range opts {
		opt(o)
	}

	a := &App{
		log:      log,
		config:   cfg,
		notifier: notification.NewService(log, cfg.DiscordWebhookURL),
		exporter: export.NewService(log, cfg, o.client),
		now:      o.now,
	}

	var kv domain.KeyValueStore
	if o.ephemeral {
		kv = preference.NewMemoryStore()
	} else {
		db, err := database.NewDB(cfg.DBDir, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.db = db
		kv = database.NewKVRepo(log, db)
	}
	a.prefs = preference.NewStore(log, kv)

	if cfg.DataDir != "" {
		a.repo = repository.NewFileRepository(log, cfg.DataDir)
	}

	var source catalog.Source
	if cfg.DataURL != "" {
		source = catalog.NewHTTPSource(cfg.DataURL,
			catalog.WithHTTPClient(o.client),
			catalog.WithCacheBust(cfg.CacheBust),
		)
	} else {
		source = catalog.NewFileSource(a.repo)
	}
	a.loader = catalog.NewLoader(log, source, nil)

	return a, nil
}

// Close releases the database
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Start constructs the session core: the share list is loaded and the
// coordinator resolves and loads the initial season
func (a *App) Start(ctx context.Context) error {
	idx, err := a.loadIndex()
	if err != nil {
		return err
	}
	a.index = idx

	a.ShareList, err = sharelist.New(ctx, a.log, a.prefs)
	if err != nil {
		return errors.Wrap(err, "failed to load share list")
	}

	a.Coordinator = viewstate.New(a.log, a.loader, a.prefs, idx, a.fallback(idx),
		viewstate.WithClock(a.now),
		viewstate.WithNotifier(a.notifier),
	)
	return a.Coordinator.Init(ctx)
}

// Index returns the available-seasons index, loading it when needed
func (a *App) Index() (domain.SeasonIndex, error) {
	if a.index != nil {
		return a.index, nil
	}
	idx, err := a.loadIndex()
	if err != nil {
		return nil, err
	}
	a.index = idx
	return idx, nil
}

// loadIndex reads the index file, or derives it from the data directory when
// there is no index file
func (a *App) loadIndex() (domain.SeasonIndex, error) {
	idx, err := catalog.LoadIndex(a.config.IndexPath)
	if err == nil {
		return idx, nil
	}
	if !errors.Is(err, os.ErrNotExist) || a.repo == nil {
		return nil, errors.Wrap(err, "failed to load season index")
	}

	a.log.Debug().Str("path", a.config.IndexPath).Msg("No index file, building from data directory")
	idx, err = catalog.BuildIndex(a.repo)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build season index")
	}
	return idx, nil
}

// fallback is the default selection: the configured one, else the latest
// season of the newest year in the index
func (a *App) fallback(idx domain.SeasonIndex) domain.SeasonKey {
	if a.config.DefaultYear != "" {
		return domain.SeasonKey{Year: a.config.DefaultYear, Season: a.config.DefaultSeason}
	}
	years := idx.Years()
	if len(years) == 0 {
		return domain.SeasonKey{}
	}
	seasons := idx.Seasons(years[0])
	if len(seasons) == 0 {
		return domain.SeasonKey{Year: years[0]}
	}
	return domain.SeasonKey{Year: years[0], Season: seasons[len(seasons)-1]}
}

// Share adds the n-th visible entry (1-based) to the share list
func (a *App) Share(ctx context.Context, n int) (domain.ShareEntry, error) {
	visible := a.Coordinator.Visible()
	if n < 1 || n > len(visible) {
		return domain.ShareEntry{}, fmt.Errorf("no entry #%d in the current view (%d visible)", n, len(visible))
	}

	entry := domain.NewShareEntry(visible[n-1])
	if err := a.ShareList.Add(ctx, entry); err != nil {
		if errors.Is(err, domain.ErrDuplicateEntry) {
			a.notify(ctx, domain.Notice{Level: domain.NoticeInfo, Title: "已存在", Text: "此動畫已在清單中！"})
		}
		return entry, err
	}

	a.notify(ctx, domain.Notice{Level: domain.NoticeSuccess, Title: "成功", Text: fmt.Sprintf("%s 已加入分享清單！", entry.Name)})
	return entry, nil
}

// Unshare removes an entry from the share list
func (a *App) Unshare(ctx context.Context, t sharelist.Target) (bool, error) {
	removed, err := a.ShareList.Remove(ctx, t)
	if err != nil {
		return removed, err
	}
	if removed {
		a.notify(ctx, domain.Notice{Level: domain.NoticeInfo, Title: "已移除", Text: "動畫已從清單移除！"})
	}
	return removed, nil
}

// Export renders the share list to an image. The list is cleared only when
// the image was written; a degraded export returns the text fallback.
func (a *App) Export(ctx context.Context) (export.Outcome, error) {
	list := a.ShareList.List()
	if len(list) == 0 {
		a.notify(ctx, domain.Notice{Level: domain.NoticeWarning, Title: "無內容", Text: "分享清單為空，請先添加動畫！"})
		return export.Outcome{}, export.ErrEmptyList
	}

	out, err := a.exporter.Export(ctx, list)
	if err != nil {
		if errors.Is(err, domain.ErrExportFailure) {
			a.notify(ctx, domain.Notice{Level: domain.NoticeError, Title: "生成失敗", Text: "無法生成圖片，已改為文字清單。"})
			a.notify(ctx, domain.Notice{Level: domain.NoticeInfo, Title: "文字備份", Text: fmt.Sprintf("已輸出文字清單（%d 項）", len(list))})
		}
		return out, err
	}

	if err := a.ShareList.Clear(ctx); err != nil {
		a.log.Warn().Err(err).Msg("Failed to clear share list after export")
	}
	a.notify(ctx, domain.Notice{Level: domain.NoticeSuccess, Title: "已匯出", Text: fmt.Sprintf("分享清單（%d 項）已匯出為圖片", out.Count)})
	return out, nil
}

// Generate runs the season document generator and refreshes the index
func (a *App) Generate(ctx context.Context) (*generate.Report, error) {
	if a.repo == nil {
		return nil, errors.New("generate requires data_dir")
	}

	scraper := generate.NewScraper(a.log, a.config.SourceURL)
	g := generate.NewGenerator(a.log, scraper, a.repo, a.config.IndexPath,
		generate.WithClock(a.now),
		generate.WithBuildOnly(a.config.BuildOnly),
	)

	report, err := g.Run(ctx)
	if err != nil {
		a.notify(ctx, domain.Notice{Level: domain.NoticeError, Title: "生成失敗", Text: err.Error()})
		return report, err
	}
	a.index = report.Index

	a.notify(ctx, domain.Notice{
		Level: domain.NoticeSuccess,
		Title: "資料已更新",
		Text:  fmt.Sprintf("寫入 %d 季，略過 %d 季，失敗 %d 季", len(report.Written), len(report.Skipped), len(report.Failed)),
	})
	return report, nil
}

func (a *App) notify(ctx context.Context, n domain.Notice) {
	if err := a.notifier.Notify(ctx, n); err != nil {
		a.log.Warn().Err(err).Msg("Failed to send notification")
	}
}
