// Package generate builds the season documents and the season index from the
// public listing pages.
package generate

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gocolly/colly"
	"github.com/gocolly/colly/extensions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/seasonshare/internal/domain"
	"github.com/varoOP/seasonshare/internal/filter"
)

type Scraper interface {
	Scrape(ctx context.Context, key domain.SeasonKey) ([]domain.AnimeEntry, error)
}

type scraper struct {
	log     zerolog.Logger
	baseURL string
	delay   time.Duration
}

type ScraperOption func(*scraper)

// WithDelay sets the politeness delay after each request, zero disables it
func WithDelay(d time.Duration) ScraperOption {
	return func(s *scraper) { s.delay = d }
}

// NewScraper creates a scraper for listing pages under baseURL
func NewScraper(log zerolog.Logger, baseURL string, opts ...ScraperOption) Scraper {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	s := &scraper{
		log:     log.With().Str("module", "generate").Logger(),
		baseURL: baseURL,
		delay:   time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SeasonURL returns the listing page of a season, e.g. {base}202504/
func (s *scraper) SeasonURL(key domain.SeasonKey) string {
	return fmt.Sprintf("%s%s%02d/", s.baseURL, key.Year, key.Season.StartMonth())
}

var (
	weekRe = regexp.MustCompile(`每週([一二三四五六日天])`)
	timeRe = regexp.MustCompile(`(\d{1,2})時(\d{1,2})分`)
)

func (s *scraper) Scrape(ctx context.Context, key domain.SeasonKey) ([]domain.AnimeEntry, error) {
	if !key.Season.Valid() {
		return nil, fmt.Errorf("invalid season %q", key.Season)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cc := colly.NewCollector()
	extensions.RandomUserAgent(cc)

	if s.delay > 0 {
		if err := cc.Limit(&colly.LimitRule{
			DomainGlob:  "*",
			Delay:       s.delay,
			Parallelism: 1,
		}); err != nil {
			return nil, errors.Wrap(err, "failed to set limit rule")
		}
	}

	var list []domain.AnimeEntry
	found := false

	cc.OnHTML("#acgs-anime-list", func(e *colly.HTMLElement) {
		found = true
		e.ForEach("div.CV-search", func(_ int, item *colly.HTMLElement) {
			list = append(list, parseItem(item))
		})
	})

	cc.OnRequest(func(r *colly.Request) {
		s.log.Debug().Str("url", r.URL.String()).Msg("visiting")
	})

	url := s.SeasonURL(key)
	if err := cc.Visit(url); err != nil {
		return nil, errors.Wrapf(err, "failed to scrape %s", url)
	}

	if !found {
		s.log.Warn().Str("season", key.String()).Msg("No anime list found on page")
		return []domain.AnimeEntry{}, nil
	}

	filter.Sort(list)
	s.log.Info().Str("season", key.String()).Int("count", len(list)).Msg("Scraped season")
	return list, nil
}

func parseItem(item *colly.HTMLElement) domain.AnimeEntry {
	a := domain.AnimeEntry{
		BangumiID:    item.Attr("acgs-bangumi-data-id"),
		PremiereDate: domain.NoPremiereDate,
		PremiereTime: domain.NoPremiereTime,
		ImageURL:     item.ChildAttr("div.overflow-hidden.anime_cover_image img", "src"),
		Name:         strippedText(item.DOM.Find("h3.entity_localized_name").First().Nodes),
		Story:        strippedText(item.DOM.Find("div.anime_story").First().Nodes),
	}

	when := strippedText(item.DOM.Find("div.time_today.main_time").First().Nodes)
	if m := weekRe.FindStringSubmatch(when); m != nil {
		a.PremiereDate = m[1]
	}
	if m := timeRe.FindStringSubmatch(when); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		a.PremiereTime = fmt.Sprintf("%02d:%02d", h, min)
	}

	if a.BangumiID == "" {
		a.BangumiID = domain.UnknownID
	}
	if a.ImageURL == "" {
		a.ImageURL = domain.NoImage
	}
	if a.Name == "" {
		a.Name = domain.NoName
	}
	if a.Story == "" {
		a.Story = domain.NoStory
	}
	return a
}
