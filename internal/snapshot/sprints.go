package snapshot

import (
	"regexp"
	"slices"
	"strconv"
	"time"

	"sprintwatch/internal/sprint"
)

// sprintNamePattern matches dates embedded in sprint labels like
// "Sprint.2026.Aug.25", anywhere in the value.
var sprintNamePattern = regexp.MustCompile(`Sprint\.(\d{4})\.([A-Za-z]+)\.(\d+)`)

// DetectSprintEnd scans the sprint labels of a snapshot for embedded dates
// and picks the sprint end date. Sprints close on Tuesdays, so only Tuesday
// dates count: the earliest one on or after today wins, otherwise the latest
// past one. With no usable dates at all the next Tuesday from today is
// assumed. The result is a pure date at midnight UTC.
func DetectSprintEnd(items []sprint.WorkItem, today time.Time) time.Time {
	today = dateOnly(today)

	found := make(map[time.Time]bool)
	for _, item := range items {
		for _, label := range item.Sprints {
			m := sprintNamePattern.FindStringSubmatch(label)
			if m == nil {
				continue
			}
			year, _ := strconv.Atoi(m[1])
			day, _ := strconv.Atoi(m[3])
			month, err := time.Parse("Jan", m[2])
			if err != nil {
				continue
			}
			d := time.Date(year, month.Month(), day, 0, 0, 0, 0, time.UTC)
			// Reject labels like Feb.31 that time.Date would roll over.
			if d.Day() != day || d.Month() != month.Month() {
				continue
			}
			found[d] = true
		}
	}

	var tuesdays []time.Time
	for d := range found {
		if d.Weekday() == time.Tuesday {
			tuesdays = append(tuesdays, d)
		}
	}
	if len(tuesdays) == 0 {
		return nextTuesday(today)
	}

	slices.SortFunc(tuesdays, func(a, b time.Time) int { return a.Compare(b) })
	for _, d := range tuesdays {
		if !d.Before(today) {
			return d
		}
	}
	return tuesdays[len(tuesdays)-1]
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// nextTuesday returns the first Tuesday strictly after from.
func nextTuesday(from time.Time) time.Time {
	offset := (int(time.Tuesday) - int(from.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return from.AddDate(0, 0, offset)
}
