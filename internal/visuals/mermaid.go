package visuals

import (
	"fmt"
	"math"
	"strings"

	"sprintwatch/internal/report"
	"sprintwatch/internal/sprint"
)

// BurndownChart creates a Mermaid xychart-beta of the recorded burndown:
// actual remaining effort per snapshot date with the ideal line interpolated
// at the same dates.
func BurndownChart(bd report.Burndown) string {
	if len(bd.Series) == 0 {
		return ""
	}

	start, end := bd.Ideal[0], bd.Ideal[1]
	span := end.Date.Sub(start.Date).Hours() / 24

	var labels []string
	var actuals []string
	var ideals []string
	maxY := start.Days

	for _, s := range bd.Series {
		labels = append(labels, fmt.Sprintf("\"%s\"", s.Date.Format("01-02")))
		actuals = append(actuals, fmt.Sprintf("%.1f", s.RemainingDays))

		ideal := 0.0
		if span > 0 {
			// Linear from the sprint's ideal start down to zero at the end,
			// clamped for samples recorded outside the sprint window.
			ideal = start.Days * end.Date.Sub(s.Date).Hours() / 24 / span
			ideal = math.Max(0, math.Min(start.Days, ideal))
		}
		ideals = append(ideals, fmt.Sprintf("%.1f", ideal))

		if s.RemainingDays > maxY {
			maxY = s.RemainingDays
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"Burndown (Sprint to %s)\"\n", bd.SprintEnd.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Remaining (Days)\" 0 --> %d\n", int(math.Ceil(maxY*1.1))))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(actuals, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(ideals, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// WorkloadChart creates a Mermaid bar chart of flagged assignee load against
// each assignee's own capacity line.
func WorkloadChart(flags []sprint.WorkloadFlag) string {
	if len(flags) == 0 {
		return ""
	}

	var labels []string
	var loads []string
	var limits []string
	maxY := 0.0

	for _, f := range flags {
		labels = append(labels, fmt.Sprintf("\"%s\"", f.Assignee))
		loads = append(loads, fmt.Sprintf("%.1f", f.RemainingDays))
		limits = append(limits, fmt.Sprintf("%.1f", f.Limit))
		if f.RemainingDays > maxY {
			maxY = f.RemainingDays
		}
		if f.Limit > maxY {
			maxY = f.Limit
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Assignee Load (Remaining Days)\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Remaining (Days)\" 0 --> %d\n", int(math.Ceil(maxY*1.2))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(loads, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(limits, ", ")))
	sb.WriteString("```")
	return sb.String()
}
