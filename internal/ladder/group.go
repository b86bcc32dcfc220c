package ladder

import (
	"fmt"
	"time"
)

// GroupMatchesByDate buckets matches by their date, keeping the incoming order of
// both the days and the matches within each day.
func GroupMatchesByDate(matches []Match) []MatchDay {
	days := []MatchDay{}
	index := make(map[string]int)
	for _, m := range matches {
		i, ok := index[m.Date]
		if !ok {
			i = len(days)
			index[m.Date] = i
			days = append(days, MatchDay{Date: m.Date, Label: DateLabel(m.Date)})
		}
		days[i].Matches = append(days[i].Matches, m)
	}
	return days
}

// DateLabel formats a match date as e.g. "Thursday, 12th Jan 2024".
// Unparseable dates are returned unchanged.
func DateLabel(date string) string {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s, %d%s %s", d.Weekday(), d.Day(), ordinalSuffix(d.Day()), d.Format("Jan 2006"))
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
