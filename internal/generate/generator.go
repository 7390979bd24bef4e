package generate

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/seasonshare/internal/catalog"
	"github.com/varoOP/seasonshare/internal/domain"
)

// FirstYear is where a full crawl starts when the data directory is empty
const FirstYear = 2018

// Repository is the document store the generator writes into
type Repository interface {
	domain.SeasonRepository
	catalog.KeyLister
}

// Report summarizes one generator run
type Report struct {
	Written []domain.SeasonKey
	Skipped []domain.SeasonKey
	Failed  []domain.SeasonKey
	Index   domain.SeasonIndex
}

type Generator struct {
	log       zerolog.Logger
	scraper   Scraper
	repo      Repository
	indexPath string
	buildOnly bool
	now       func() time.Time
}

type Option func(*Generator)

// WithClock overrides the clock deciding the crawl range
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithBuildOnly disables scraping; only the index is rebuilt from existing documents
func WithBuildOnly(buildOnly bool) Option {
	return func(g *Generator) { g.buildOnly = buildOnly }
}

func NewGenerator(log zerolog.Logger, scraper Scraper, repo Repository, indexPath string, opts ...Option) *Generator {
	g := &Generator{
		log:       log.With().Str("module", "generate").Logger(),
		scraper:   scraper,
		repo:      repo,
		indexPath: indexPath,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Years returns the crawl range: the two previous years through next year,
// or everything since FirstYear when nothing has been generated yet
func (g *Generator) Years() ([]int, error) {
	now := g.now()
	keys, err := g.repo.Keys()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list existing documents")
	}

	from := now.Year() - 2
	if len(keys) == 0 && !g.buildOnly {
		g.log.Warn().Int("from", FirstYear).Msg("Data directory is empty, running full crawl")
		from = FirstYear
	}

	years := make([]int, 0, now.Year()+2-from)
	for y := from; y <= now.Year()+1; y++ {
		years = append(years, y)
	}
	return years, nil
}

// Run scrapes every season in range and writes its document. Seasons that
// have started and already have a document are skipped. A failing season is logged and
// left out; the index is rebuilt from whatever documents exist afterwards.
func (g *Generator) Run(ctx context.Context) (*Report, error) {
	if g.buildOnly {
		g.log.Info().Msg("Build only mode, skipping scraper")
	}

	years, err := g.Years()
	if err != nil {
		return nil, err
	}

	now := g.now()
	report := &Report{}

	for _, y := range years {
		for _, season := range domain.Seasons {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			key := domain.SeasonKey{Year: strconv.Itoa(y), Season: season}
			started := y < now.Year() || (y == now.Year() && int(now.Month()) >= season.StartMonth())
			exists := g.repo.Exists(key)

			if g.buildOnly {
				if exists {
					g.log.Debug().Str("season", key.String()).Msg("Using existing document")
				} else {
					g.log.Warn().Str("season", key.String()).Msg("Missing document, not scraping in build only mode")
				}
				continue
			}

			if started && exists {
				g.log.Debug().Str("season", key.String()).Msg("Skipping historical season, document exists")
				report.Skipped = append(report.Skipped, key)
				continue
			}

			if err := g.generate(ctx, key); err != nil {
				g.log.Error().Err(err).Str("season", key.String()).Msg("Failed to generate season")
				report.Failed = append(report.Failed, key)
				continue
			}
			report.Written = append(report.Written, key)
		}
	}

	idx, err := catalog.BuildIndex(g.repo)
	if err != nil {
		return report, errors.Wrap(err, "failed to build index")
	}
	report.Index = idx

	if g.indexPath != "" {
		if err := catalog.StoreIndex(g.indexPath, idx); err != nil {
			return report, errors.Wrap(err, "failed to store index")
		}
		g.log.Info().Str("path", g.indexPath).Int("years", len(idx)).Msg("Index written")
	}

	return report, nil
}

func (g *Generator) generate(ctx context.Context, key domain.SeasonKey) error {
	list, err := g.scraper.Scrape(ctx, key)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return errors.Errorf("no entries for %s", key)
	}

	doc := &domain.SeasonDocument{
		AnimeList:   list,
		GeneratedAt: domain.Timestamp{Time: g.now()},
	}
	if err := g.repo.Store(ctx, key, doc); err != nil {
		return errors.Wrap(err, "failed to store season document")
	}

	g.log.Info().Str("season", key.String()).Int("count", len(list)).Msg("Season document written")
	return nil
}
