// Package preference persists the user's view state between sessions.
package preference

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/seasonshare/internal/domain"
)

// Storage keys. They match the keys the web front end used, so exported
// browser storage can be imported as-is.
const (
	KeyYear      = "anime_user_year"
	KeySeason    = "anime_user_season"
	KeyWeekday   = "anime_user_filter_day"
	KeyScroll    = "anime_user_scroll_pos"
	KeyShareList = "anime_share_list"
)

// Store is a typed view over a domain.KeyValueStore
type Store struct {
	log zerolog.Logger
	kv  domain.KeyValueStore
}

// NewStore wraps kv
func NewStore(log zerolog.Logger, kv domain.KeyValueStore) *Store {
	return &Store{
		log: log.With().Str("module", "preference").Logger(),
		kv:  kv,
	}
}

// Selection returns the last persisted (year, season). ok is false unless both are set.
func (s *Store) Selection(ctx context.Context) (string, domain.Season, bool, error) {
	year, okYear, err := s.kv.Get(ctx, KeyYear)
	if err != nil {
		return "", "", false, errors.Wrap(err, "failed to read year")
	}
	season, okSeason, err := s.kv.Get(ctx, KeySeason)
	if err != nil {
		return "", "", false, errors.Wrap(err, "failed to read season")
	}
	if !okYear || !okSeason || year == "" || season == "" {
		return "", "", false, nil
	}
	return year, domain.Season(season), true, nil
}

// SetSelection persists the viewed (year, season)
func (s *Store) SetSelection(ctx context.Context, year string, season domain.Season) error {
	if err := s.kv.Set(ctx, KeyYear, year); err != nil {
		return errors.Wrap(err, "failed to write year")
	}
	if err := s.kv.Set(ctx, KeySeason, string(season)); err != nil {
		return errors.Wrap(err, "failed to write season")
	}
	return nil
}

// Weekday returns the persisted weekday filter, domain.WeekdayAll if none
func (s *Store) Weekday(ctx context.Context) (string, error) {
	v, ok, err := s.kv.Get(ctx, KeyWeekday)
	if err != nil {
		return domain.WeekdayAll, errors.Wrap(err, "failed to read weekday")
	}
	if !ok || v == "" {
		return domain.WeekdayAll, nil
	}
	return v, nil
}

func (s *Store) SetWeekday(ctx context.Context, weekday string) error {
	return errors.Wrap(s.kv.Set(ctx, KeyWeekday, weekday), "failed to write weekday")
}

// Scroll returns the persisted scroll offset. Missing, unparseable and
// non-positive values all read as 0.
func (s *Store) Scroll(ctx context.Context) (int, error) {
	v, ok, err := s.kv.Get(ctx, KeyScroll)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read scroll offset")
	}
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		s.log.Debug().Str("value", v).Msg("ignoring invalid scroll offset")
		return 0, nil
	}
	return n, nil
}

func (s *Store) SetScroll(ctx context.Context, offset int) error {
	return errors.Wrap(s.kv.Set(ctx, KeyScroll, strconv.Itoa(offset)), "failed to write scroll offset")
}

// ClearScroll forgets the scroll offset so the next session starts at the top
func (s *Store) ClearScroll(ctx context.Context) error {
	return errors.Wrap(s.kv.Delete(ctx, KeyScroll), "failed to clear scroll offset")
}

// ShareList returns the persisted share list. A corrupt value reads as empty.
func (s *Store) ShareList(ctx context.Context) ([]domain.ShareEntry, error) {
	v, ok, err := s.kv.Get(ctx, KeyShareList)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read share list")
	}
	if !ok || v == "" {
		return nil, nil
	}

	var list []domain.ShareEntry
	if err := json.Unmarshal([]byte(v), &list); err != nil {
		s.log.Warn().Err(err).Msg("discarding unreadable share list")
		return nil, nil
	}
	return list, nil
}

// SetShareList rewrites the whole persisted share list
func (s *Store) SetShareList(ctx context.Context, list []domain.ShareEntry) error {
	if list == nil {
		list = []domain.ShareEntry{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return errors.Wrap(err, "failed to marshal share list")
	}
	return errors.Wrap(s.kv.Set(ctx, KeyShareList, string(b)), "failed to write share list")
}
