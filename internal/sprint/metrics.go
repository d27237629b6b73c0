package sprint

import "strconv"

// Metrics are the sprint-level aggregates shown on the dashboard header.
type Metrics struct {
	TotalStories    int     `json:"totalStories"`
	TotalPoints     float64 `json:"totalPoints"`
	CompletedPoints float64 `json:"completedPoints"`
	CarryOverPoints float64 `json:"carryOverPoints"`
}

// metricsDoneStatuses is the completion set for velocity metrics. It is
// deliberately narrower than the normalizer's done-set: Cancelled work does
// not count toward completed points, and matching is exact rather than
// case-insensitive.
var metricsDoneStatuses = map[string]bool{
	"Done":     true,
	"Resolved": true,
	"Closed":   true,
}

// Aggregate reduces a table to sprint-level scalars. Epics and Sub-tasks are
// excluded from both the story count and the point sums; when the snapshot
// has no issue-type column every row counts.
func Aggregate(t Table) Metrics {
	var m Metrics
	for _, item := range t.Items {
		if t.Columns.IssueType && (item.IssueType == "Epic" || item.IssueType == "Sub-task") {
			continue
		}
		m.TotalStories++
		m.TotalPoints += item.StoryPoints
		if t.Columns.Status && metricsDoneStatuses[item.Status] {
			m.CompletedPoints += item.StoryPoints
		}
	}
	m.CarryOverPoints = m.TotalPoints - m.CompletedPoints
	return m
}

// FormatPoints renders a point total without a trailing fractional zero:
// 22.0 prints as "22", 21.5 stays "21.5".
func FormatPoints(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
