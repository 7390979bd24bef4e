package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Season is one of the four seasonal labels partitioning a year
type Season string

const (
	SeasonWinter Season = "冬"
	SeasonSpring Season = "春"
	SeasonSummer Season = "夏"
	SeasonAutumn Season = "秋"
)

// Seasons lists the labels in calendar order
var Seasons = []Season{SeasonWinter, SeasonSpring, SeasonSummer, SeasonAutumn}

// Valid reports whether s is one of the known labels
func (s Season) Valid() bool {
	for _, v := range Seasons {
		if s == v {
			return true
		}
	}
	return false
}

// StartMonth returns the first month of the season, 0 for unknown labels
func (s Season) StartMonth() int {
	for i, v := range Seasons {
		if s == v {
			return i*3 + 1
		}
	}
	return 0
}

// SeasonForMonth maps a calendar month (1-12) to its season label
func SeasonForMonth(month int) Season {
	switch {
	case month >= 1 && month <= 3:
		return SeasonWinter
	case month >= 4 && month <= 6:
		return SeasonSpring
	case month >= 7 && month <= 9:
		return SeasonSummer
	default:
		return SeasonAutumn
	}
}

// SeasonKey addresses one season document
type SeasonKey struct {
	Year   string
	Season Season
}

func (k SeasonKey) String() string {
	return fmt.Sprintf("%s_%s", k.Year, k.Season)
}

// Empty reports whether either half of the key is missing
func (k SeasonKey) Empty() bool {
	return k.Year == "" || k.Season == ""
}

// ParseSeasonKey parses "{year}_{season}", as used in document file names
func ParseSeasonKey(s string) (SeasonKey, error) {
	year, season, ok := strings.Cut(s, "_")
	if !ok || year == "" || season == "" {
		return SeasonKey{}, fmt.Errorf("invalid season key %q", s)
	}
	if _, err := strconv.Atoi(year); err != nil {
		return SeasonKey{}, fmt.Errorf("invalid year in season key %q", s)
	}
	return SeasonKey{Year: year, Season: Season(season)}, nil
}

// SeasonIndex maps a year to the ordered seasons that have data
type SeasonIndex map[string][]Season

// Has reports whether the (year, season) pair is available
func (idx SeasonIndex) Has(year string, season Season) bool {
	for _, s := range idx[year] {
		if s == season {
			return true
		}
	}
	return false
}

// Seasons returns the seasons of a year, nil if the year is unknown
func (idx SeasonIndex) Seasons(year string) []Season {
	return idx[year]
}

// Years returns the indexed years, newest first
func (idx SeasonIndex) Years() []string {
	years := make([]string, 0, len(idx))
	for y := range idx {
		years = append(years, y)
	}
	sort.SliceStable(years, func(i, j int) bool {
		a, errA := strconv.Atoi(years[i])
		b, errB := strconv.Atoi(years[j])
		if errA != nil || errB != nil {
			return years[i] > years[j]
		}
		return a > b
	})
	return years
}

// Add inserts a season for a year keeping calendar order and no duplicates
func (idx SeasonIndex) Add(year string, season Season) {
	if idx.Has(year, season) {
		return
	}
	seasons := append(idx[year], season)
	sort.SliceStable(seasons, func(i, j int) bool {
		return seasons[i].StartMonth() < seasons[j].StartMonth()
	})
	idx[year] = seasons
}
