package snapshot

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"sprintwatch/internal/sprint"
)

// Options control snapshot ingestion.
type Options struct {
	// ExcludedAssignee drops every row whose assignee contains this name,
	// matched case-insensitively. Empty disables the filter.
	ExcludedAssignee string
}

// ReadFile ingests a CSV snapshot from disk.
func ReadFile(path string, opts Options) (sprint.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return sprint.Table{}, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	t, err := Read(f, opts)
	if err != nil {
		return sprint.Table{}, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	return t, nil
}

// Read ingests a CSV snapshot: it resolves the schema from the header row,
// maps each record to a typed WorkItem, applies the assignee filter and
// first-name truncation, and parses the effort fields with per-cell
// recovery. Unparseable rows are logged and skipped; only a missing header
// is an error.
func Read(r io.Reader, opts Options) (sprint.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return sprint.Table{}, fmt.Errorf("snapshot has no header row")
		}
		return sprint.Table{}, fmt.Errorf("failed to read header: %w", err)
	}

	schema := ResolveSchema(header)
	table := sprint.Table{Columns: schema.Columns()}

	excluded := strings.ToLower(opts.ExcludedAssignee)
	line := 1
	for {
		record, err := cr.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn().Err(err).Int("line", line).Msg("Skipping malformed CSV record")
			continue
		}

		assignee := cell(record, schema.Assignee)
		if schema.Assignee >= 0 {
			if excluded != "" && strings.Contains(strings.ToLower(assignee), excluded) {
				continue
			}
			assignee = firstName(assignee)
		}

		item := sprint.WorkItem{
			Key:       cell(record, schema.Key),
			IssueType: cell(record, schema.IssueType),
			Status:    cell(record, schema.Status),
			Priority:  cell(record, schema.Priority),
			Assignee:  assignee,
			Summary:   cell(record, schema.Summary),
			ParentKey: cell(record, schema.Parent),
			Epic:      cell(record, schema.Epic),
		}
		for _, idx := range schema.Sprints {
			if v := cell(record, idx); v != "" {
				item.Sprints = append(item.Sprints, v)
			}
		}

		item.StoryPoints = numericOrZero(cell(record, schema.StoryPoints))
		item.SpentSecs = numericOrZero(cell(record, schema.Spent))
		if schema.Remaining < 0 {
			// Exports without the column behave as if every cell read 0,
			// which is distinct from an empty cell in a present column.
			zero := 0.0
			item.RemainingSecs = &zero
		} else if v, ok := numeric(cell(record, schema.Remaining)); ok {
			rem := v
			item.RemainingSecs = &rem
		}

		table.Items = append(table.Items, item)
	}
	return table, nil
}

// cell returns the trimmed value at idx, or "" when the column is absent or
// the record is short.
func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// firstName truncates a display name to its first whitespace token.
func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func numeric(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func numericOrZero(s string) float64 {
	v, ok := numeric(s)
	if !ok {
		return 0
	}
	return v
}
