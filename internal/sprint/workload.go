package sprint

import (
	"math"
	"slices"
)

// WorkloadFlag marks an assignee whose summed remaining effort approaches or
// exceeds their capacity for the sprint.
type WorkloadFlag struct {
	Assignee      string  `json:"assignee"`
	RemainingDays float64 `json:"remainingDays"`
	Limit         float64 `json:"limit"`
	Status        string  `json:"status"`
	Severity      string  `json:"severity"`
}

// RemainingRisk marks a single item whose remaining effort alone exceeds the
// configured risk threshold.
type RemainingRisk struct {
	IssueKey      string  `json:"issueKey"`
	Summary       string  `json:"summary,omitempty"`
	Assignee      string  `json:"assignee,omitempty"`
	RemainingDays float64 `json:"remainingDays"`
}

// CheckWorkload sums normalized remaining days per assignee and flags anyone
// over capacity. Sub-tasks are excluded so parent estimates are not counted
// twice. Assignees on the low-capacity list get half the standard limit;
// crossing 80% of the applicable limit yields a warning flag, crossing the
// limit itself an overload flag.
func CheckWorkload(t Table, cfg RuleConfig) []WorkloadFlag {
	if !t.Columns.Assignee {
		return nil
	}

	totals := make(map[string]float64)
	for _, item := range t.Items {
		if t.Columns.IssueType && item.IssueType == "Sub-task" {
			continue
		}
		totals[item.Assignee] += item.RemainingDays
	}

	assignees := make([]string, 0, len(totals))
	for name := range totals {
		assignees = append(assignees, name)
	}
	slices.Sort(assignees)

	var flags []WorkloadFlag
	for _, name := range assignees {
		days := totals[name]
		limit := cfg.WorkloadLimitDays
		if slices.Contains(cfg.LowCapacityAssignees, name) {
			limit = limit / 2
		}
		warningLimit := limit * 0.8

		switch {
		case days > limit:
			flags = append(flags, WorkloadFlag{
				Assignee:      name,
				RemainingDays: round2(days),
				Limit:         limit,
				Status:        "Overloaded",
				Severity:      "red",
			})
		case days > warningLimit:
			flags = append(flags, WorkloadFlag{
				Assignee:      name,
				RemainingDays: round2(days),
				Limit:         limit,
				Status:        "High Load",
				Severity:      "yellow",
			})
		}
	}
	return flags
}

// FlagHighRemaining lists items whose remaining effort exceeds the
// configured threshold, expressed in hours of an 8-hour day.
func FlagHighRemaining(t Table, cfg RuleConfig) []RemainingRisk {
	if !t.Columns.Summary {
		return nil
	}

	thresholdDays := cfg.RiskThresholdHours / 8
	var risks []RemainingRisk
	for _, item := range t.Items {
		if item.RemainingDays > thresholdDays {
			risks = append(risks, RemainingRisk{
				IssueKey:      item.Key,
				Summary:       item.Summary,
				Assignee:      item.Assignee,
				RemainingDays: round2(item.RemainingDays),
			})
		}
	}
	return risks
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
