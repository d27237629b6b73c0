package snapshot

import (
	"testing"
	"time"

	"sprintwatch/internal/sprint"
)

func itemsWithSprints(labels ...string) []sprint.WorkItem {
	items := make([]sprint.WorkItem, len(labels))
	for i, l := range labels {
		items[i] = sprint.WorkItem{Sprints: []string{l}}
	}
	return items
}

func TestDetectSprintEnd_PicksEarliestFutureTuesday(t *testing.T) {
	today := time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC) // Thursday
	items := itemsWithSprints(
		"Sprint.2026.Aug.11", // past Tuesday
		"Sprint.2026.Aug.25", // next Tuesday
		"Sprint.2026.Sep.8",  // Tuesday after
	)

	got := DetectSprintEnd(items, today)
	want := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("sprint end = %v, want %v", got, want)
	}
}

func TestDetectSprintEnd_TodayCounts(t *testing.T) {
	// A sprint ending today is still the current sprint.
	today := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC) // Tuesday
	items := itemsWithSprints("Sprint.2026.Aug.25", "Sprint.2026.Sep.8")

	got := DetectSprintEnd(items, today)
	want := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("sprint end = %v, want %v", got, want)
	}
}

func TestDetectSprintEnd_FallsBackToLatestPast(t *testing.T) {
	today := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	items := itemsWithSprints("Sprint.2026.Aug.11", "Sprint.2026.Aug.25")

	got := DetectSprintEnd(items, today)
	want := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("sprint end = %v, want latest past Tuesday %v", got, want)
	}
}

func TestDetectSprintEnd_IgnoresNonTuesdays(t *testing.T) {
	today := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC) // Thursday
	items := itemsWithSprints(
		"Sprint.2026.Aug.24", // Monday
		"Sprint.2026.Aug.26", // Wednesday
	)

	got := DetectSprintEnd(items, today)
	want := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC) // next Tuesday fallback
	if !got.Equal(want) {
		t.Errorf("sprint end = %v, want %v", got, want)
	}
}

func TestDetectSprintEnd_NoData(t *testing.T) {
	cases := []struct {
		name  string
		today time.Time
		want  time.Time
	}{
		{
			name:  "midweek",
			today: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), // Thursday
			want:  time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "on a Tuesday the following one is assumed",
			today: time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectSprintEnd(nil, tc.today)
			if !got.Equal(tc.want) {
				t.Errorf("sprint end = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDetectSprintEnd_SkipsUnparsableLabels(t *testing.T) {
	today := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	items := itemsWithSprints(
		"Backlog",
		"Sprint.2026.Agosto.25", // month not an English abbreviation
		"Sprint.2026.Feb.31",    // no such date
		"Team Alpha Sprint.2026.Sep.8 (carry)",
	)

	got := DetectSprintEnd(items, today)
	want := time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("sprint end = %v, want %v from the embedded label", got, want)
	}
}
