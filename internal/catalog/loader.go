package catalog

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/seasonshare/internal/domain"
)

// Result is the outcome of one Load
type Result struct {
	Key         domain.SeasonKey
	Entries     []domain.AnimeEntry
	GeneratedAt domain.Timestamp
	Cached      bool
}

// Loader fetches season documents through the session cache
type Loader struct {
	log    zerolog.Logger
	source Source
	cache  *Cache
}

func NewLoader(log zerolog.Logger, source Source, cache *Cache) *Loader {
	if cache == nil {
		cache = NewCache()
	}
	return &Loader{
		log:    log.With().Str("module", "catalog").Logger(),
		source: source,
		cache:  cache,
	}
}

// Load returns the season's list, from cache when possible. On failure the
// error wraps domain.ErrDataUnavailable, the result is empty and the cache is
// left untouched so a later call retries the fetch.
func (l *Loader) Load(ctx context.Context, key domain.SeasonKey) (Result, error) {
	res := Result{Key: key, Entries: []domain.AnimeEntry{}}

	if key.Empty() {
		return res, errors.Wrapf(domain.ErrDataUnavailable, "no season selected (%q)", key.String())
	}

	if list, generatedAt, ok := l.cache.Get(key); ok {
		l.log.Debug().Str("key", key.String()).Msg("cache hit")
		res.Entries = list
		res.GeneratedAt = generatedAt
		res.Cached = true
		return res, nil
	}

	l.log.Debug().Str("key", key.String()).Msg("fetching season")
	doc, err := l.source.Fetch(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrDataUnavailable) {
			err = errors.Wrapf(domain.ErrDataUnavailable, "%v", err)
		}
		l.log.Warn().Err(err).Str("key", key.String()).Msg("failed to load season")
		return res, err
	}

	list := make([]domain.AnimeEntry, len(doc.AnimeList))
	for i, a := range doc.AnimeList {
		list[i] = a.Normalize()
	}

	l.cache.Put(key, list, doc.GeneratedAt)
	l.log.Info().Str("key", key.String()).Int("count", len(list)).Msg("loaded season")

	res.Entries = copyList(list)
	res.GeneratedAt = doc.GeneratedAt
	return res, nil
}

// Cache exposes the session cache
func (l *Loader) Cache() *Cache {
	return l.cache
}
