package cli

import (
	"slices"
	"strings"
	"time"

	"github.com/dori/leadboard/internal/model"
)

type quickAdd struct {
	Title    string
	Priority model.Priority
	Labels   []string
	DueDate  *time.Time
}

// parseQuickAdd splits "Call Marina !high #AFD9FF due:friday" into a title
// and task attributes. Unrecognised markers stay in the title.
func parseQuickAdd(text string, now time.Time) quickAdd {
	task := quickAdd{Priority: model.PriorityMedium}

	var titleParts []string
	for _, word := range strings.Fields(text) {
		switch {
		// Color labels (#AFD9FF, #f00)
		case model.IsColorLabel(word):
			label := model.NormalizeLabel(word)
			if !slices.Contains(task.Labels, label) {
				task.Labels = append(task.Labels, label)
			}

		// Priority (!low, !high, etc.)
		case strings.HasPrefix(word, "!"):
			switch strings.ToLower(strings.TrimPrefix(word, "!")) {
			case "low", "l", "baixa":
				task.Priority = model.PriorityLow
			case "medium", "med", "m", "media", "média":
				task.Priority = model.PriorityMedium
			case "high", "hi", "h", "alta":
				task.Priority = model.PriorityHigh
			default:
				titleParts = append(titleParts, word)
			}

		// Due date (due:tomorrow, due:friday, due:2025-01-15)
		case strings.HasPrefix(strings.ToLower(word), "due:"):
			if parsed := parseNaturalDate(word[len("due:"):], now); parsed != nil {
				task.DueDate = parsed
			} else {
				titleParts = append(titleParts, word)
			}

		default:
			titleParts = append(titleParts, word)
		}
	}

	task.Title = strings.Join(titleParts, " ")
	return task
}

// parseNaturalDate understands relative days, weekday names and a few
// absolute formats. Dates resolve to the end of the day in now's location.
func parseNaturalDate(s string, now time.Time) *time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())

	switch strings.ToLower(s) {
	case "today", "hoje":
		return &today
	case "tomorrow", "tom", "amanha", "amanhã":
		t := today.AddDate(0, 0, 1)
		return &t
	case "monday", "mon":
		return nextWeekday(now, time.Monday)
	case "tuesday", "tue":
		return nextWeekday(now, time.Tuesday)
	case "wednesday", "wed":
		return nextWeekday(now, time.Wednesday)
	case "thursday", "thu":
		return nextWeekday(now, time.Thursday)
	case "friday", "fri":
		return nextWeekday(now, time.Friday)
	case "saturday", "sat":
		return nextWeekday(now, time.Saturday)
	case "sunday", "sun":
		return nextWeekday(now, time.Sunday)
	case "nextweek":
		t := today.AddDate(0, 0, 7)
		return &t
	}

	formats := []string{
		"2006-01-02",
		"02/01/2006",
		"Jan 2",
		"Jan 2, 2006",
	}
	for _, format := range formats {
		t, err := time.ParseInLocation(format, s, now.Location())
		if err != nil {
			continue
		}
		year := t.Year()
		// If no year, use current year
		if year == 0 {
			year = now.Year()
		}
		t = time.Date(year, t.Month(), t.Day(), 23, 59, 59, 0, now.Location())
		return &t
	}

	return nil
}

// nextWeekday returns the next occurrence of day after today
func nextWeekday(now time.Time, day time.Weekday) *time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())

	daysUntil := int(day - now.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}

	t := today.AddDate(0, 0, daysUntil)
	return &t
}

func formatDueDate(t, now time.Time) string {
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return "today"
	}

	tomorrow := now.AddDate(0, 0, 1)
	if t.Year() == tomorrow.Year() && t.YearDay() == tomorrow.YearDay() {
		return "tomorrow"
	}

	if t.Year() == now.Year() {
		return t.Format("Mon, Jan 2")
	}

	return t.Format("Jan 2, 2006")
}
