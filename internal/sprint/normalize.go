package sprint

import "strings"

// Normalize reconciles one item's raw effort fields into a canonical
// (remaining, spent) pair in effort-days. Precedence, first match wins:
//
//  1. Status "to do": the item has not started, so remaining equals the
//     estimate and spent is zero. Any stray logged time is disregarded.
//  2. Status in the done-set: remaining is zero and spent equals the
//     estimate, so completed work always accounts for exactly its points.
//  3. Anything else is in progress: spent is the logged time as given; if
//     the source carried a remaining estimate it is taken as-is (it may
//     exceed the points, which is exactly what some rules look for),
//     otherwise remaining is inferred as max(0, points-spent).
//
// The input item is not mutated.
func Normalize(item WorkItem) (remainingDays, spentDays float64) {
	status := strings.ToLower(strings.TrimSpace(item.Status))

	if status == "to do" {
		return item.StoryPoints, 0
	}

	if doneStatuses[status] {
		return 0, item.StoryPoints
	}

	spentDays = item.SpentSecs / SecondsPerDay
	if item.RemainingSecs == nil {
		remainingDays = item.StoryPoints - spentDays
		if remainingDays < 0 {
			remainingDays = 0
		}
		return remainingDays, spentDays
	}
	return *item.RemainingSecs / SecondsPerDay, spentDays
}

// NormalizeTable stamps RemainingDays/SpentDays on every item in place.
func NormalizeTable(t *Table) {
	for i := range t.Items {
		t.Items[i].RemainingDays, t.Items[i].SpentDays = Normalize(t.Items[i])
	}
}
