package snapshot

import (
	"strings"
	"testing"

	"sprintwatch/internal/sprint"
)

const sampleCSV = `Issue key,Issue Type,Status,Priority,Assignee,Summary,Parent key,Parent Epic,Sprint,Custom field (Story Points),Remaining Estimate,Time Spent
ABC-1,Story,In Progress,Major,Dana Scully,Fix login,ABC-10,Identity,Sprint.2026.Aug.25,3,57600,28800
ABC-2,Story,To Do,Major,Lee Jones,Add export,,Reporting,Sprint.2026.Aug.25,5,,
ABC-3,Bug,Done,Critical,Mori Tanaka,Crash on save,,Stability,Sprint.2026.Aug.25,2,abc,14400
`

func TestRead(t *testing.T) {
	table, err := Read(strings.NewReader(sampleCSV), Options{})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(table.Items) != 3 {
		t.Fatalf("item count = %d, want 3", len(table.Items))
	}

	first := table.Items[0]
	if first.Key != "ABC-1" || first.Status != "In Progress" {
		t.Errorf("first item = %+v", first)
	}
	if first.Assignee != "Dana" {
		t.Errorf("assignee = %q, want first name only", first.Assignee)
	}
	if first.RemainingSecs == nil || *first.RemainingSecs != 57600 {
		t.Errorf("remaining = %v, want 57600", first.RemainingSecs)
	}
	if first.SpentSecs != 28800 || first.StoryPoints != 3 {
		t.Errorf("spent = %v points = %v", first.SpentSecs, first.StoryPoints)
	}
	if len(first.Sprints) != 1 || first.Sprints[0] != "Sprint.2026.Aug.25" {
		t.Errorf("sprints = %v", first.Sprints)
	}

	// Empty and non-numeric remaining cells both mean "absent".
	if table.Items[1].RemainingSecs != nil {
		t.Errorf("empty remaining cell should be nil, got %v", *table.Items[1].RemainingSecs)
	}
	if table.Items[2].RemainingSecs != nil {
		t.Errorf("non-numeric remaining cell should be nil, got %v", *table.Items[2].RemainingSecs)
	}
}

func TestRead_ExcludedAssignee(t *testing.T) {
	csvData := `Issue key,Status,Assignee,Custom field (Story Points),Remaining Estimate,Time Spent
ABC-1,In Progress,Dana Scully,3,230400,0
ABC-2,In Progress,calvinthio jr,5,288000,0
ABC-3,In Progress,CALVINTHIO,2,288000,0
`
	table, err := Read(strings.NewReader(csvData), Options{ExcludedAssignee: "Calvinthio"})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(table.Items) != 1 {
		t.Fatalf("item count = %d, want 1 after filtering", len(table.Items))
	}
	if table.Items[0].Key != "ABC-1" {
		t.Errorf("surviving item = %s, want ABC-1", table.Items[0].Key)
	}

	// Filtered rows must be invisible downstream too.
	sprint.NormalizeTable(&table)
	m := sprint.Aggregate(table)
	if m.TotalStories != 1 || m.TotalPoints != 3 {
		t.Errorf("metrics = %+v, want the filtered rows excluded", m)
	}
	for _, a := range sprint.Evaluate(table, sprint.DefaultRuleConfig()) {
		if a.IssueKey == "ABC-2" || a.IssueKey == "ABC-3" {
			t.Errorf("filtered row surfaced in alert %+v", a)
		}
	}
}

func TestRead_MissingRemainingColumn(t *testing.T) {
	csvData := `Issue key,Status,Custom field (Story Points)
ABC-1,In Progress,3
`
	table, err := Read(strings.NewReader(csvData), Options{})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if table.Columns.Remaining {
		t.Errorf("Remaining presence flag should be false")
	}
	// A missing column reads as zero for every row, unlike an empty cell in
	// a present column.
	rem := table.Items[0].RemainingSecs
	if rem == nil || *rem != 0 {
		t.Errorf("remaining = %v, want explicit 0", rem)
	}

	sprint.NormalizeTable(&table)
	if table.Items[0].RemainingDays != 0 {
		t.Errorf("remaining days = %v, want 0 (not inferred)", table.Items[0].RemainingDays)
	}
}

func TestRead_ShortRecord(t *testing.T) {
	csvData := "Issue key,Status,Assignee\nABC-1,In Progress\n"
	table, err := Read(strings.NewReader(csvData), Options{})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(table.Items) != 1 {
		t.Fatalf("item count = %d, want 1", len(table.Items))
	}
	if table.Items[0].Assignee != "" {
		t.Errorf("assignee = %q, want empty for short record", table.Items[0].Assignee)
	}
}

func TestRead_EmptyInput(t *testing.T) {
	if _, err := Read(strings.NewReader(""), Options{}); err == nil {
		t.Fatal("expected an error for input without a header row")
	}
}
