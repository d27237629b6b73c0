package alerts

import "sprintwatch/internal/sprint"

// RecurringAlert is a dismissed alert that reappeared in a later snapshot,
// carrying the original dismissal for context.
type RecurringAlert struct {
	sprint.Alert
	Dismissal Dismissal `json:"dismissal"`
}

// Triage is the presentation-level split of evaluator findings.
type Triage struct {
	Active    []sprint.Alert   `json:"active"`
	Recurring []RecurringAlert `json:"recurring"`
}

// Classify splits findings into active alerts and dismissed-but-recurring
// ones. The evaluator itself stays unaware of dismissals; a dismissed pair
// that shows up again is excluded from the active count but listed
// separately so it is not silently lost.
func Classify(found []sprint.Alert, ledger *Ledger) Triage {
	var t Triage
	for _, a := range found {
		if d, ok := ledger.Get(a.IssueKey, a.Type); ok {
			t.Recurring = append(t.Recurring, RecurringAlert{Alert: a, Dismissal: d})
			continue
		}
		t.Active = append(t.Active, a)
	}
	return t
}
