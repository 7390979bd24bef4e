// Package filter derives the visible view of a season from the weekday and keyword inputs.
package filter

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/varoOP/seasonshare/internal/domain"
	"golang.org/x/text/cases"
)

// Apply returns the entries of list matching weekday and keyword, in input order.
//
// weekday equal to domain.WeekdayAll (or empty) disables weekday filtering,
// otherwise entries are kept only on exact equality with their weekday token.
// A keyword is trimmed and case-folded, and an entry matches when its folded
// name or story contains it. Both conditions must hold. list is never modified.
func Apply(list []domain.AnimeEntry, weekday, keyword string) []domain.AnimeEntry {
	keyword = fold(strings.TrimSpace(keyword))
	byDay := weekday != "" && weekday != domain.WeekdayAll

	out := make([]domain.AnimeEntry, 0, len(list))
	for _, a := range list {
		if byDay && a.Weekday() != weekday {
			continue
		}
		if keyword != "" && !matches(a, keyword) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func matches(a domain.AnimeEntry, folded string) bool {
	if a.Name != "" && strings.Contains(fold(a.Name), folded) {
		return true
	}
	return a.Story != "" && strings.Contains(fold(a.Story), folded)
}

// fold uses a fresh Caser each call; cases.Caser keeps state and isn't safe for concurrent use
func fold(s string) string {
	if s == "" {
		return s
	}
	return cases.Fold().String(s)
}

var timeRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})`)

// Sort orders list by weekday then premiere time, stable for ties.
// Entries without a premiere date go last. Within a day an entry without a
// premiere time sorts first; a time that can't be parsed sorts after Sunday.
func Sort(list []domain.AnimeEntry) {
	sort.SliceStable(list, func(i, j int) bool {
		di, ti := sortKey(list[i])
		dj, tj := sortKey(list[j])
		if di != dj {
			return di < dj
		}
		return ti < tj
	})
}

func sortKey(a domain.AnimeEntry) (int, int) {
	day := domain.WeekdayOrder(a.PremiereDate)
	if a.PremiereDate == domain.NoPremiereDate || a.PremiereDate == "" {
		return 8, 1 << 30
	}
	if a.PremiereTime == domain.NoPremiereTime || a.PremiereTime == "" {
		return day, 0
	}
	m := timeRe.FindStringSubmatch(a.PremiereTime)
	if m == nil {
		return 7, 1 << 30
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	return day, h*60 + min
}
