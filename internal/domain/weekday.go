package domain

// WeekdayAll disables weekday filtering
const WeekdayAll = "全部"

// Weekdays lists the weekday tokens in display order, Monday first
var Weekdays = []string{"一", "二", "三", "四", "五", "六", "日"}

// WeekdayOrder returns the sort position of a weekday token.
// Unknown tokens sort after Sunday, entries without a premiere date sort last.
func WeekdayOrder(token string) int {
	if token == NoPremiereDate {
		return 8
	}
	if token == "天" {
		return 6
	}
	for i, w := range Weekdays {
		if token == w {
			return i
		}
	}
	return 7
}
