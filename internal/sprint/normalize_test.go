package sprint

import (
	"math"
	"testing"
)

func secs(v float64) *float64 {
	return &v
}

func TestNormalize_Precedence(t *testing.T) {
	tests := []struct {
		name          string
		item          WorkItem
		wantRemaining float64
		wantSpent     float64
	}{
		{
			name:          "to do takes points and zero spent",
			item:          WorkItem{Status: "To Do", StoryPoints: 5, RemainingSecs: secs(2 * SecondsPerDay), SpentSecs: 1 * SecondsPerDay},
			wantRemaining: 5,
			wantSpent:     0,
		},
		{
			name:          "to do is case and whitespace insensitive",
			item:          WorkItem{Status: "  tO dO ", StoryPoints: 3},
			wantRemaining: 3,
			wantSpent:     0,
		},
		{
			name:          "done forces zero remaining and spent equals points",
			item:          WorkItem{Status: "Done", StoryPoints: 4, RemainingSecs: secs(3 * SecondsPerDay), SpentSecs: 9 * SecondsPerDay},
			wantRemaining: 0,
			wantSpent:     4,
		},
		{
			name:          "cancelled counts as done",
			item:          WorkItem{Status: "cancelled", StoryPoints: 2, RemainingSecs: secs(SecondsPerDay)},
			wantRemaining: 0,
			wantSpent:     2,
		},
		{
			name:          "resolved counts as done",
			item:          WorkItem{Status: "RESOLVED", StoryPoints: 1.5},
			wantRemaining: 0,
			wantSpent:     1.5,
		},
		{
			name:          "in progress keeps explicit remaining as-is",
			item:          WorkItem{Status: "In Progress", StoryPoints: 3, RemainingSecs: secs(4 * SecondsPerDay), SpentSecs: 2 * SecondsPerDay},
			wantRemaining: 4,
			wantSpent:     2,
		},
		{
			name:          "in progress infers remaining from points minus spent",
			item:          WorkItem{Status: "In Progress", StoryPoints: 5, SpentSecs: 2 * SecondsPerDay},
			wantRemaining: 3,
			wantSpent:     2,
		},
		{
			name:          "inferred remaining never goes negative",
			item:          WorkItem{Status: "In Review", StoryPoints: 1, SpentSecs: 3 * SecondsPerDay},
			wantRemaining: 0,
			wantSpent:     3,
		},
		{
			name:          "unknown status with no effort data",
			item:          WorkItem{Status: "Blocked", StoryPoints: 0},
			wantRemaining: 0,
			wantSpent:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rem, spent := Normalize(tt.item)
			if math.Abs(rem-tt.wantRemaining) > 1e-9 {
				t.Errorf("Normalize() remaining = %v, want %v", rem, tt.wantRemaining)
			}
			if math.Abs(spent-tt.wantSpent) > 1e-9 {
				t.Errorf("Normalize() spent = %v, want %v", spent, tt.wantSpent)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	// A row whose raw fields are already consistent with its status must
	// come out unchanged, so re-running the pass is safe.
	items := []WorkItem{
		{Status: "To Do", StoryPoints: 5, RemainingSecs: secs(5 * SecondsPerDay)},
		{Status: "Done", StoryPoints: 4, RemainingSecs: secs(0), SpentSecs: 4 * SecondsPerDay},
		{Status: "In Progress", StoryPoints: 3, RemainingSecs: secs(2 * SecondsPerDay), SpentSecs: 1 * SecondsPerDay},
	}

	for _, item := range items {
		rem1, spent1 := Normalize(item)
		item.RemainingDays, item.SpentDays = rem1, spent1
		rem2, spent2 := Normalize(item)
		if rem1 != rem2 || spent1 != spent2 {
			t.Errorf("Normalize(%q) not idempotent: first (%v, %v), second (%v, %v)",
				item.Status, rem1, spent1, rem2, spent2)
		}
	}
}

func TestNormalizeTable_DoneInvariant(t *testing.T) {
	table := Table{
		Items: []WorkItem{
			{Key: "A-1", Status: "Done", StoryPoints: 3, RemainingSecs: secs(2 * SecondsPerDay)},
			{Key: "A-2", Status: "resolved", StoryPoints: 1, RemainingSecs: secs(8 * SecondsPerDay)},
			{Key: "A-3", Status: "Closed", StoryPoints: 2},
			{Key: "A-4", Status: "Cancelled", StoryPoints: 5, SpentSecs: SecondsPerDay},
			{Key: "A-5", Status: "In Progress", StoryPoints: 2, SpentSecs: SecondsPerDay},
		},
	}

	NormalizeTable(&table)

	for _, item := range table.Items {
		if item.RemainingDays < 0 {
			t.Errorf("%s: remaining %v < 0", item.Key, item.RemainingDays)
		}
		if item.SpentDays < 0 {
			t.Errorf("%s: spent %v < 0", item.Key, item.SpentDays)
		}
		if IsDone(item.Status) && item.RemainingDays != 0 {
			t.Errorf("%s: done item has remaining %v, want 0", item.Key, item.RemainingDays)
		}
	}

	// The raw fields survive normalization; DoneWithRemaining depends on it.
	if table.Items[0].RemainingSecs == nil || *table.Items[0].RemainingSecs != 2*SecondsPerDay {
		t.Errorf("raw remaining was overwritten by normalization")
	}
}
