package engine

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"sprintwatch/internal/snapshot"
	"sprintwatch/internal/sprint"
)

// GeneratorConfig controls the synthetic export.
type GeneratorConfig struct {
	Scenario  string // "healthy", "overrun" or "blocked"
	Count     int
	SprintEnd time.Time
	Seed      int64
}

// Header is the canonical tracker export schema the generator emits.
var Header = []string{
	"Issue key", "Issue Type", "Status", "Priority", "Assignee", "Summary",
	"Parent key", "Parent Epic", "Custom field (Story Points)",
	"Remaining Estimate", "Time Spent", "Sprint",
}

var (
	assignees = []string{"Priya Nair", "Marcus Webb", "Elena Costa", "Tom Becker", "Aisha Khan"}
	epics     = []string{"Platform Hardening", "Checkout Revamp"}
	verbs     = []string{"Implement", "Refactor", "Fix", "Migrate", "Document"}
	nouns     = []string{"ingestion retry", "burndown widget", "CSV mapper", "alert triage", "capacity view"}
	scale     = []float64{0.5, 1, 2, 3, 5}
)

// Generate produces header plus Count data rows. The first rows are shaped
// deterministically so each scenario is guaranteed to show its anomalies:
// healthy exports evaluate clean, overrun trips the estimate rules, blocked
// carries an open blocker over the critical threshold.
func Generate(cfg GeneratorConfig) [][]string {
	if cfg.Count < 8 {
		cfg.Count = 8
	}
	if cfg.SprintEnd.IsZero() {
		cfg.SprintEnd = snapshot.DetectSprintEnd(nil, time.Now())
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	label := sprintLabel(cfg.SprintEnd)

	rows := [][]string{append([]string(nil), Header...)}
	add := func(r row) { rows = append(rows, r.record(label)) }

	// Fixed slots first. One epic, one parent story with two sub-tasks, then
	// the per-scenario anomaly carriers.
	add(row{key: key(1), typ: "Epic", status: "In Progress", priority: "Medium",
		assignee: pick(rng, assignees), summary: epics[0]})

	subPoints := []float64{2, 3}
	if cfg.Scenario == "overrun" {
		// sub-task points no longer cover the parent estimate
		subPoints = []float64{2, 2}
	}
	add(row{key: key(2), typ: "Story", status: "In Progress", priority: "High",
		assignee: assignees[0], summary: "Implement snapshot archive rotation",
		epic: epics[0], points: 5, spentDays: 2, remainingDays: 3})
	for i, p := range subPoints {
		add(row{key: key(3 + i), typ: "Sub-task", status: "To Do", priority: "Medium",
			assignee: assignees[1], summary: fmt.Sprintf("Subtask %d of archive rotation", i+1),
			parent: key(2), points: p, remainingBlank: true})
	}

	switch cfg.Scenario {
	case "overrun":
		add(row{key: key(5), typ: "Story", status: "In Progress", priority: "High",
			assignee: assignees[2], summary: "Fix estimate drift in mapper",
			epic: epics[1], points: 2, spentDays: 1, remainingDays: 4})
		add(row{key: key(6), typ: "Bug", status: "Done", priority: "Medium",
			assignee: assignees[3], summary: "Fix stale cache reload",
			epic: epics[1], points: 2, spentDays: 2, remainingDays: 1})
	case "blocked":
		add(row{key: key(5), typ: "Story", status: "In Progress", priority: "Blocker (P0)",
			assignee: assignees[2], summary: "Unblock payment provider cutover",
			epic: epics[1], points: 3, spentDays: 0, remainingDays: 3})
		add(row{key: key(6), typ: "Bug", status: "To Do", priority: "Critical (P1)",
			assignee: assignees[3], summary: "Critical login regression",
			epic: epics[1], points: 2, remainingBlank: true})
	default:
		add(row{key: key(5), typ: "Story", status: "In Progress", priority: "High",
			assignee: assignees[2], summary: "Implement mapper fallbacks",
			epic: epics[1], points: 2, spentDays: 0.5, remainingDays: 1.5})
		add(row{key: key(6), typ: "Bug", status: "Done", priority: "Medium",
			assignee: assignees[3], summary: "Fix stale cache reload",
			epic: epics[1], points: 2, spentDays: 2})
	}

	for i := 7; i <= cfg.Count; i++ {
		add(randomRow(rng, i))
	}
	return rows
}

// randomRow emits a coherent filler item: whatever the status, its effort
// fields never violate an evaluation rule.
func randomRow(rng *rand.Rand, i int) row {
	r := row{
		key:      key(i),
		typ:      "Story",
		priority: "Medium",
		assignee: pick(rng, assignees),
		summary:  fmt.Sprintf("%s %s", pick(rng, verbs), pick(rng, nouns)),
		epic:     pick(rng, epics),
		points:   pick(rng, scale),
	}
	if rng.Float64() < 0.3 {
		r.typ = "Bug"
	}
	if rng.Float64() < 0.3 {
		r.priority = "High"
	}

	switch roll := rng.Float64(); {
	case roll < 0.3:
		r.status = "To Do"
		r.remainingBlank = true
	case roll < 0.7:
		r.status = "In Progress"
		frac := pick(rng, []float64{0.25, 0.5, 0.75})
		r.spentDays = r.points * frac
		r.remainingDays = r.points - r.spentDays
	case roll < 0.9:
		r.status = "Done"
		r.spentDays = r.points
	default:
		r.status = "Resolved"
		r.spentDays = r.points
	}
	return r
}

type row struct {
	key, typ, status, priority string
	assignee, summary          string
	parent, epic               string
	points                     float64
	remainingDays, spentDays   float64
	remainingBlank             bool
}

func (r row) record(label string) []string {
	remaining := seconds(r.remainingDays)
	if r.remainingBlank {
		remaining = ""
	}
	return []string{
		r.key, r.typ, r.status, r.priority, r.assignee, r.summary,
		r.parent, r.epic, sprint.FormatPoints(r.points),
		remaining, seconds(r.spentDays), label,
	}
}

func key(i int) string {
	return fmt.Sprintf("PLAT-%d", 100+i)
}

func seconds(days float64) string {
	return strconv.FormatFloat(days*sprint.SecondsPerDay, 'f', -1, 64)
}

func sprintLabel(end time.Time) string {
	return fmt.Sprintf("Sprint.%d.%s.%d", end.Year(), end.Format("Jan"), end.Day())
}

func pick[T any](rng *rand.Rand, from []T) T {
	return from[rng.Intn(len(from))]
}

// Save writes the rows as CSV to path, or to stdout when path is "-".
func Save(path string, rows [][]string) error {
	out := os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}
