package alerts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sprintwatch/internal/sprint"
)

func TestLedger_DismissAndQuery(t *testing.T) {
	ledger := NewLedger()
	ledger.Dismiss("ABC-1", sprint.RemExceedsPoints, "dana", "estimate agreed with PO")

	if !ledger.IsDismissed("ABC-1", sprint.RemExceedsPoints) {
		t.Error("IsDismissed = false after dismissal")
	}
	if ledger.IsDismissed("ABC-1", sprint.SpentExceedsPoints) {
		t.Error("dismissal must be scoped to the alert type")
	}
	if ledger.IsDismissed("ABC-2", sprint.RemExceedsPoints) {
		t.Error("dismissal must be scoped to the issue key")
	}

	d, ok := ledger.Get("ABC-1", sprint.RemExceedsPoints)
	if !ok {
		t.Fatal("Get returned no record")
	}
	if d.DismissedBy != "dana" || d.Remarks != "estimate agreed with PO" {
		t.Errorf("record = %+v", d)
	}
	if d.DismissedAt.IsZero() {
		t.Error("DismissedAt not stamped")
	}
}

func TestLedger_RedismissOverwrites(t *testing.T) {
	ledger := NewLedger()
	ledger.Dismiss("ABC-1", sprint.RemExceedsPoints, "dana", "first")
	ledger.Dismiss("ABC-1", sprint.RemExceedsPoints, "lee", "second look")

	if ledger.Count() != 1 {
		t.Fatalf("count = %d, want 1", ledger.Count())
	}
	d, _ := ledger.Get("ABC-1", sprint.RemExceedsPoints)
	if d.DismissedBy != "lee" || d.Remarks != "second look" {
		t.Errorf("record = %+v, want the latest dismissal", d)
	}
}

func TestLedger_AllOrderedByTime(t *testing.T) {
	ledger := NewLedger()
	ledger.Dismiss("ABC-2", sprint.HighPriorityRisk, "dana", "")
	ledger.Dismiss("ABC-1", sprint.RemExceedsPoints, "dana", "")

	all := ledger.All()
	if len(all) != 2 {
		t.Fatalf("All length = %d, want 2", len(all))
	}
	if all[0].IssueKey != "ABC-2" || all[1].IssueKey != "ABC-1" {
		t.Errorf("order = %s, %s, want dismissal order", all[0].IssueKey, all[1].IssueKey)
	}
}

func TestLedger_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alert_dismissals.json")

	ledger := NewLedger()
	ledger.Dismiss("ABC-1", sprint.RemExceedsPoints, "dana", "agreed")
	ledger.Dismiss("ABC-2", sprint.DoneWithRemaining, "lee", "")
	if err := ledger.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// File keys follow the issueKey|alertType convention.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"ABC-1|RemExceedsPoints"`) {
		t.Errorf("file missing composite key: %s", raw)
	}
	if !strings.Contains(string(raw), `"dismissed_by": "dana"`) {
		t.Errorf("file missing snake_case fields: %s", raw)
	}

	loaded := NewLedger()
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !loaded.IsDismissed("ABC-1", sprint.RemExceedsPoints) || !loaded.IsDismissed("ABC-2", sprint.DoneWithRemaining) {
		t.Error("loaded ledger missing dismissals")
	}
}

func TestLedger_LoadMissingFile(t *testing.T) {
	ledger := NewLedger()
	if err := ledger.Load(filepath.Join(t.TempDir(), "absent.json")); err != nil {
		t.Errorf("missing file should be a clean start, got %v", err)
	}
}

func TestLedger_LoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alert_dismissals.json")
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := NewLedger().Load(path); err == nil {
		t.Error("expected an error for a malformed dismissals file")
	}
}

// A dismissal suppresses display, not evaluation: the rule keeps firing,
// the triage moves it out of the active set.
func TestDismissalSuppression(t *testing.T) {
	table := sprint.Table{
		Columns: sprint.Columns{Key: true, Status: true, Assignee: true, StoryPoints: true, Remaining: true},
		Items: []sprint.WorkItem{
			{Key: "ABC-1", Assignee: "Dana", Status: "In Progress", StoryPoints: 3, RemainingDays: 4},
		},
	}

	cfg := sprint.DefaultRuleConfig()
	ledger := NewLedger()
	ledger.Dismiss("ABC-1", sprint.RemExceedsPoints, "dana", "known")

	found := sprint.Evaluate(table, cfg)
	var hasRem bool
	for _, a := range found {
		if a.IssueKey == "ABC-1" && a.Type == sprint.RemExceedsPoints {
			hasRem = true
		}
	}
	if !hasRem {
		t.Fatal("evaluator must still produce the dismissed anomaly")
	}

	triage := Classify(found, ledger)
	for _, a := range triage.Active {
		if a.Type == sprint.RemExceedsPoints {
			t.Errorf("dismissed alert still active: %+v", a)
		}
	}
	if len(triage.Recurring) != 1 {
		t.Fatalf("recurring count = %d, want 1", len(triage.Recurring))
	}
	rec := triage.Recurring[0]
	if rec.IssueKey != "ABC-1" || rec.Dismissal.DismissedBy != "dana" {
		t.Errorf("recurring record = %+v", rec)
	}
}

func TestScanLog_Append(t *testing.T) {
	dir := t.TempDir()
	scanLog, err := NewScanLog(dir)
	if err != nil {
		t.Fatalf("NewScanLog failed: %v", err)
	}

	now := time.Date(2026, 8, 25, 14, 30, 5, 0, time.UTC)
	found := []sprint.Alert{
		{IssueKey: "ABC-1", Assignee: "Dana", Type: sprint.RemExceedsPoints, Details: "Rem: 4.0d > SP: 3.0d"},
		{IssueKey: "ABC-2", Assignee: "Lee", Type: sprint.HighPriorityRisk, Details: "Critical priority with 2.00d remaining"},
	}
	if err := scanLog.Append(found, now); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	// A second scan the same day appends to the same file.
	if err := scanLog.Append(found[:1], now.Add(time.Hour)); err != nil {
		t.Fatalf("second Append failed: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "alerts_2026-08-25.log"))
	if err != nil {
		t.Fatalf("log file missing: %v", err)
	}
	content := string(raw)
	if !strings.Contains(content, "--- Alert Scan: 2026-08-25 14:30:05 ---") {
		t.Errorf("missing scan header:\n%s", content)
	}
	if !strings.Contains(content, "[ABC-1] Dana - RemExceedsPoints: Rem: 4.0d > SP: 3.0d") {
		t.Errorf("missing alert line:\n%s", content)
	}
	if got := strings.Count(content, "--- Alert Scan:"); got != 2 {
		t.Errorf("scan headers = %d, want 2", got)
	}
}

func TestScanLog_EmptyScanWritesNothing(t *testing.T) {
	dir := t.TempDir()
	scanLog, err := NewScanLog(dir)
	if err != nil {
		t.Fatalf("NewScanLog failed: %v", err)
	}
	if err := scanLog.Append(nil, time.Now()); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("log directory should stay empty, found %d entries", len(entries))
	}
}
