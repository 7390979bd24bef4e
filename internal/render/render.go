// Package render draws the catalog and the share list for the terminal.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/varoOP/seasonshare/internal/domain"
)

// storyWidth caps the story excerpt on a card, in runes
const storyWidth = 60

// Header renders the selection line above the catalog
func Header(v domain.ViewState, visible, total int, generatedAt time.Time) string {
	line := header.Render(fmt.Sprintf("%s 年 %s 季", v.Year, v.Season))

	parts := []string{fmt.Sprintf("星期：%s", v.Weekday)}
	if v.Keyword != "" {
		parts = append(parts, fmt.Sprintf("搜尋：%s", v.Keyword))
	}
	parts = append(parts, fmt.Sprintf("%d / %d", visible, total))
	if !generatedAt.IsZero() {
		parts = append(parts, "更新於 "+generatedAt.Format("2006-01-02 15:04"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, line, meta.Render(strings.Join(parts, " · ")))
}

// Cards renders up to limit entries of list starting at offset. Numbers are
// 1-based positions in list; shared reports entries already in the share list.
func Cards(list []domain.AnimeEntry, offset, limit int, shared func(name string) bool) string {
	if len(list) == 0 {
		return empty.Render("沒有符合條件的動畫")
	}
	if offset < 0 || offset >= len(list) {
		offset = 0
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	cards := make([]string, 0, end-offset)
	for i := offset; i < end; i++ {
		a := list[i]
		style := card
		mark := ""
		if shared != nil && shared(a.Name) {
			style = cardShared
			mark = " ✓"
		}

		body := lipgloss.JoinVertical(lipgloss.Left,
			badge.Render(fmt.Sprintf("#%d", i+1))+title.Render(a.Name+mark),
			meta.Render(fmt.Sprintf("首播：%s %s", a.PremiereDate, a.PremiereTime)),
		)
		if a.Story != "" {
			body = lipgloss.JoinVertical(lipgloss.Left, body, story.Render(excerpt(a.Story, storyWidth)))
		}
		cards = append(cards, style.Render(body))
	}
	return strings.Join(cards, "\n")
}

// ShareList renders the share list with 1-based positions
func ShareList(list []domain.ShareEntry) string {
	if len(list) == 0 {
		return empty.Render("分享清單是空的")
	}

	rows := make([]string, 0, len(list)+1)
	rows = append(rows, header.Render(fmt.Sprintf("分享清單（%d 項）", len(list))))
	for i, e := range list {
		rows = append(rows, card.Render(
			badge.Render(fmt.Sprintf("%d.", i+1))+title.Render(e.Name)+" "+meta.Render(fmt.Sprintf("%s %s", e.PremiereDate, e.PremiereTime)),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// Index renders the available years and seasons, newest year first
func Index(idx domain.SeasonIndex) string {
	if len(idx) == 0 {
		return empty.Render("沒有可用的季度")
	}

	rows := make([]string, 0, len(idx))
	for _, y := range idx.Years() {
		labels := make([]string, 0, len(idx[y]))
		for _, s := range idx[y] {
			labels = append(labels, string(s))
		}
		rows = append(rows, header.Render(y)+" "+meta.Render(strings.Join(labels, " ")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func excerpt(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "…"
}
