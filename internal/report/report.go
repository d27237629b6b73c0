package report

import (
	"time"

	"sprintwatch/internal/alerts"
	"sprintwatch/internal/history"
	"sprintwatch/internal/sprint"
)

// Report is the result of one full recomputation pass over a snapshot:
// everything the dashboard shows about the current sprint, in one
// JSON-serializable value.
type Report struct {
	GeneratedAt     time.Time              `json:"generatedAt"`
	SprintEnd       time.Time              `json:"sprintEnd"`
	WorkingDaysLeft int                    `json:"workingDaysLeft"`
	Metrics         sprint.Metrics         `json:"metrics"`
	Alerts          alerts.Triage          `json:"alerts"`
	AtRisk          []sprint.RiskItem      `json:"atRisk"`
	AtRiskCount     int                    `json:"atRiskCount"`
	Workload        []sprint.WorkloadFlag  `json:"workload"`
	HighRemaining   []sprint.RemainingRisk `json:"highRemaining"`
	Items           []sprint.WorkItem      `json:"items"`
}

// Build runs the whole pipeline over an ingested table: normalization, rule
// evaluation, dismissal triage and every aggregate. The pass is idempotent
// and mutates nothing outside the table's derived fields; the ledger is
// only read.
func Build(table sprint.Table, cfg sprint.RuleConfig, ledger *alerts.Ledger, now, sprintEnd time.Time) Report {
	sprint.NormalizeTable(&table)

	found := sprint.Evaluate(table, cfg)
	sprint.SortAlerts(found)
	atRisk := sprint.AtRisk(table)

	return Report{
		GeneratedAt:     now,
		SprintEnd:       sprintEnd,
		WorkingDaysLeft: history.WorkingDaysLeft(now, sprintEnd),
		Metrics:         sprint.Aggregate(table),
		Alerts:          alerts.Classify(found, ledger),
		AtRisk:          atRisk,
		AtRiskCount:     len(atRisk),
		Workload:        sprint.CheckWorkload(table, cfg),
		HighRemaining:   sprint.FlagHighRemaining(table, cfg),
		Items:           table.Items,
	}
}
