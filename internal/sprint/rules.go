package sprint

import (
	"fmt"
	"slices"
	"strings"
)

// Evaluate runs every rule over the table and unions the findings. Rules are
// independent: an item can appear under several alert types at once, and a
// rule that cannot run (missing columns, empty config) contributes nothing
// rather than failing the pass. The evaluator knows nothing about
// dismissals; filtering acknowledged alerts is the caller's concern.
func Evaluate(t Table, cfg RuleConfig) []Alert {
	var alerts []Alert
	alerts = append(alerts, CheckEstimates(t)...)
	alerts = append(alerts, CheckDoneRemaining(t)...)
	alerts = append(alerts, CheckSubtaskPoints(t)...)
	alerts = append(alerts, CheckHighPriority(t, cfg)...)
	alerts = append(alerts, CheckBlowout(t)...)
	alerts = append(alerts, CheckCategorization(t, cfg)...)
	return alerts
}

// SortAlerts orders findings by assignee, then issue key, the order the
// dashboard and the scan log present them in.
func SortAlerts(alerts []Alert) {
	slices.SortFunc(alerts, func(a, b Alert) int {
		if c := strings.Compare(a.Assignee, b.Assignee); c != 0 {
			return c
		}
		return strings.Compare(a.IssueKey, b.IssueKey)
	})
}

// CheckEstimates flags items whose normalized remaining or spent effort
// exceeds the story-point estimate.
func CheckEstimates(t Table) []Alert {
	if !t.Columns.Assignee {
		return nil
	}

	var alerts []Alert
	for _, item := range t.Items {
		if item.RemainingDays > item.StoryPoints+pointsEpsilon {
			alerts = append(alerts, Alert{
				IssueKey: item.Key,
				Assignee: item.Assignee,
				Summary:  item.Summary,
				Type:     RemExceedsPoints,
				Details:  fmt.Sprintf("Rem: %.1fd > SP: %.1fd", item.RemainingDays, item.StoryPoints),
			})
		}
		if item.SpentDays > item.StoryPoints+pointsEpsilon {
			alerts = append(alerts, Alert{
				IssueKey: item.Key,
				Assignee: item.Assignee,
				Summary:  item.Summary,
				Type:     SpentExceedsPoints,
				Details:  fmt.Sprintf("Spent: %.1fd > SP: %.1fd", item.SpentDays, item.StoryPoints),
			})
		}
	}
	return alerts
}

// CheckDoneRemaining flags done items whose source row still carried a
// remaining estimate. It reads the raw field on purpose: normalization
// forces remaining to zero for done items, which would silently hide the
// data-entry error this rule exists to catch.
func CheckDoneRemaining(t Table) []Alert {
	if !t.Columns.Key || !t.Columns.Status || !t.Columns.Remaining {
		return nil
	}

	var alerts []Alert
	for _, item := range t.Items {
		if !IsDone(item.Status) || item.RemainingSecs == nil || *item.RemainingSecs <= 0 {
			continue
		}
		alerts = append(alerts, Alert{
			IssueKey: item.Key,
			Assignee: item.Assignee,
			Summary:  item.Summary,
			Type:     DoneWithRemaining,
			Details: fmt.Sprintf("%s ticket has %.2fd remaining estimate",
				item.Status, *item.RemainingSecs/SecondsPerDay),
		})
	}
	return alerts
}

// CheckSubtaskPoints verifies that the Sub-task points under each Story
// parent sum to the parent's own estimate. When the snapshot lacks the
// columns the rule needs, it returns a single diagnostic alert instead of
// findings.
func CheckSubtaskPoints(t Table) []Alert {
	var missing []string
	if !t.Columns.Key {
		missing = append(missing, "Issue key")
	}
	if !t.Columns.IssueType {
		missing = append(missing, "Issue Type")
	}
	if !t.Columns.Parent {
		missing = append(missing, "Parent")
	}
	if !t.Columns.StoryPoints {
		missing = append(missing, "Story Points")
	}
	if len(missing) > 0 {
		return []Alert{{
			Type:    SubtaskPointMismatch,
			Details: "missing columns: " + strings.Join(missing, ", "),
		}}
	}

	parentPoints := make(map[string]float64)
	for _, item := range t.Items {
		if item.IssueType == "Story" {
			parentPoints[item.Key] = item.StoryPoints
		}
	}

	childSums := make(map[string]float64)
	for _, item := range t.Items {
		if item.IssueType == "Sub-task" && item.ParentKey != "" {
			childSums[item.ParentKey] += item.StoryPoints
		}
	}

	parents := make([]string, 0, len(childSums))
	for key := range childSums {
		parents = append(parents, key)
	}
	slices.Sort(parents)

	var alerts []Alert
	for _, key := range parents {
		points, ok := parentPoints[key]
		if !ok {
			continue
		}
		if sum := childSums[key]; sum != points {
			alerts = append(alerts, Alert{
				IssueKey: key,
				Type:     SubtaskPointMismatch,
				Details: fmt.Sprintf("parent has %s points, sub-tasks sum to %s",
					FormatPoints(points), FormatPoints(sum)),
			})
		}
	}
	return alerts
}

// CheckHighPriority flags critical/blocker items that still carry more
// remaining effort than the configured threshold.
func CheckHighPriority(t Table, cfg RuleConfig) []Alert {
	if !t.Columns.Priority {
		return nil
	}

	var alerts []Alert
	for _, item := range t.Items {
		if IsDone(item.Status) {
			continue
		}
		priority := strings.ToLower(item.Priority)
		if !strings.Contains(priority, "critical") && !strings.Contains(priority, "blocker") {
			continue
		}
		if item.RemainingDays > cfg.CriticalDaysRemaining {
			alerts = append(alerts, Alert{
				IssueKey: item.Key,
				Assignee: item.Assignee,
				Summary:  item.Summary,
				Type:     HighPriorityRisk,
				Details:  fmt.Sprintf("%s priority with %.2fd remaining", item.Priority, item.RemainingDays),
			})
		}
	}
	return alerts
}

// CheckBlowout flags open items whose spent plus remaining effort already
// exceeds the estimate, the earliest signal that an item will not land
// inside its points.
func CheckBlowout(t Table) []Alert {
	var alerts []Alert
	for _, item := range t.Items {
		if IsDone(item.Status) {
			continue
		}
		total := item.SpentDays + item.RemainingDays
		if total > item.StoryPoints+pointsEpsilon {
			alerts = append(alerts, Alert{
				IssueKey: item.Key,
				Assignee: item.Assignee,
				Summary:  item.Summary,
				Type:     EstimateBlowoutRisk,
				Details:  fmt.Sprintf("Spent+Rem: %.1fd > SP: %.1fd", total, item.StoryPoints),
			})
		}
	}
	return alerts
}

// CheckCategorization flags items whose summary mentions a configured
// keyword while the item's epic lacks the substring that keyword requires.
// Keywords are checked in sorted order and only the first match per item is
// reported. No configuration means no findings.
func CheckCategorization(t Table, cfg RuleConfig) []Alert {
	if len(cfg.CategorizationRules) == 0 || !t.Columns.Summary || !t.Columns.Epic {
		return nil
	}

	keywords := make([]string, 0, len(cfg.CategorizationRules))
	for kw := range cfg.CategorizationRules {
		keywords = append(keywords, kw)
	}
	slices.Sort(keywords)

	var alerts []Alert
	for _, item := range t.Items {
		summary := strings.ToLower(item.Summary)
		epic := strings.ToLower(item.Epic)
		for _, kw := range keywords {
			required := cfg.CategorizationRules[kw]
			if strings.Contains(summary, strings.ToLower(kw)) && !strings.Contains(epic, strings.ToLower(required)) {
				alerts = append(alerts, Alert{
					IssueKey: item.Key,
					Assignee: item.Assignee,
					Summary:  item.Summary,
					Type:     CategorizationMismatch,
					Details:  fmt.Sprintf("summary contains %q, expected epic %q (current: %q)", kw, required, item.Epic),
				})
				break
			}
		}
	}
	return alerts
}

// RiskItem is one open work item considered at risk, with the reason it
// made the list.
type RiskItem struct {
	IssueKey      string  `json:"issueKey"`
	Summary       string  `json:"summary,omitempty"`
	Assignee      string  `json:"assignee,omitempty"`
	Priority      string  `json:"priority,omitempty"`
	Status        string  `json:"status"`
	RemainingDays float64 `json:"remainingDays"`
	Reason        string  `json:"reason"`
}

// AtRisk scans open items for the dashboard's risk table: critical or
// blocker priority puts an item at risk outright, as does spent plus
// remaining effort already exceeding the estimate. An item matching both
// reads "Multiple". The result length is the at-risk count.
func AtRisk(t Table) []RiskItem {
	var items []RiskItem
	for _, item := range t.Items {
		if IsDone(item.Status) {
			continue
		}

		var reasons []string
		priority := strings.ToLower(item.Priority)
		if strings.Contains(priority, "critical") || strings.Contains(priority, "blocker") {
			reasons = append(reasons, "High Priority")
		}
		if item.SpentDays+item.RemainingDays > item.StoryPoints+pointsEpsilon {
			reasons = append(reasons, "Est. Exceeded")
		}
		if len(reasons) == 0 {
			continue
		}

		reason := reasons[0]
		if len(reasons) > 1 {
			reason = "Multiple"
		}
		items = append(items, RiskItem{
			IssueKey:      item.Key,
			Summary:       item.Summary,
			Assignee:      item.Assignee,
			Priority:      item.Priority,
			Status:        item.Status,
			RemainingDays: round2(item.RemainingDays),
			Reason:        reason,
		})
	}
	return items
}
