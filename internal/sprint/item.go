package sprint

import "strings"

// SecondsPerDay is the number of seconds in one effort-day (8 working hours).
// Tracker exports carry remaining-estimate and time-spent in seconds while
// story points are already effort-days.
const SecondsPerDay = 28800.0

// pointsEpsilon absorbs float noise when comparing effort values against
// story-point estimates.
const pointsEpsilon = 0.01

// WorkItem is one row of an ingested snapshot after schema mapping.
// Raw effort fields keep their native unit (seconds); the derived
// RemainingDays/SpentDays pair is stamped by Normalize.
type WorkItem struct {
	Key       string   `json:"key"`
	IssueType string   `json:"issueType,omitempty"`
	Status    string   `json:"status"`
	Priority  string   `json:"priority,omitempty"`
	Assignee  string   `json:"assignee,omitempty"`
	Summary   string   `json:"summary,omitempty"`
	ParentKey string   `json:"parentKey,omitempty"`
	Epic      string   `json:"epic,omitempty"`
	Sprints   []string `json:"sprints,omitempty"`

	// StoryPoints is already denominated in effort-days.
	StoryPoints float64 `json:"storyPoints"`
	// RemainingSecs is the raw remaining estimate. nil means the source cell
	// was absent or non-numeric, which the normalizer treats as "infer".
	RemainingSecs *float64 `json:"remainingSecs,omitempty"`
	// SpentSecs is the raw logged time; absent cells are 0.
	SpentSecs float64 `json:"spentSecs"`

	RemainingDays float64 `json:"remainingDays"`
	SpentDays     float64 `json:"spentDays"`
}

// Columns records which canonical fields the ingested snapshot actually
// carried. Header resolution happens once at ingestion; every downstream
// rule consults these flags instead of re-inspecting raw headers.
type Columns struct {
	Key         bool
	IssueType   bool
	Status      bool
	Priority    bool
	Assignee    bool
	Summary     bool
	Parent      bool
	Epic        bool
	Sprint      bool
	StoryPoints bool
	Remaining   bool
	Spent       bool
}

// Table is one snapshot's worth of work items plus the column presence map.
type Table struct {
	Items   []WorkItem
	Columns Columns
}

// doneStatuses is the canonical done-set: statuses whose remaining work is
// forced to zero. Compared case-insensitively.
var doneStatuses = map[string]bool{
	"done":      true,
	"resolved":  true,
	"closed":    true,
	"cancelled": true,
}

// IsDone reports whether a status string belongs to the done-set.
func IsDone(status string) bool {
	return doneStatuses[strings.ToLower(strings.TrimSpace(status))]
}

// AlertType identifies the rule that produced an anomaly record.
type AlertType string

const (
	RemExceedsPoints       AlertType = "RemExceedsPoints"
	SpentExceedsPoints     AlertType = "SpentExceedsPoints"
	DoneWithRemaining      AlertType = "DoneWithRemaining"
	SubtaskPointMismatch   AlertType = "SubtaskPointMismatch"
	CategorizationMismatch AlertType = "CategorizationMismatch"
	HighPriorityRisk       AlertType = "HighPriorityRisk"
	EstimateBlowoutRisk    AlertType = "EstimateBlowoutRisk"
)

// Alert is a single rule finding. Alerts are derived fresh on every
// evaluation pass and never persisted as primary state.
type Alert struct {
	IssueKey string    `json:"issueKey"`
	Assignee string    `json:"assignee,omitempty"`
	Summary  string    `json:"summary,omitempty"`
	Type     AlertType `json:"type"`
	Details  string    `json:"details"`
}

// RuleConfig carries the externally supplied evaluation thresholds. It is
// passed explicitly into every rule call; there is no package-level config.
type RuleConfig struct {
	// CriticalDaysRemaining is the remaining-effort threshold (days) above
	// which a critical/blocker item is flagged.
	CriticalDaysRemaining float64 `yaml:"critical_days_remaining"`
	// RiskThresholdHours flags items whose remaining effort exceeds this
	// many hours.
	RiskThresholdHours float64 `yaml:"risk_threshold_hours"`
	// WorkloadLimitDays is the per-assignee remaining-effort capacity.
	WorkloadLimitDays float64 `yaml:"workload_limit_days"`
	// CategorizationRules maps a summary keyword to the epic substring the
	// item is expected to live under. Empty map disables the rule.
	CategorizationRules map[string]string `yaml:"categorization_rules"`
	// LowCapacityAssignees get half the standard workload limit.
	LowCapacityAssignees []string `yaml:"low_capacity_assignees"`
}

// DefaultRuleConfig returns the stated defaults for every threshold.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		CriticalDaysRemaining: 1,
		RiskThresholdHours:    10,
		WorkloadLimitDays:     10,
		CategorizationRules:   map[string]string{},
	}
}
