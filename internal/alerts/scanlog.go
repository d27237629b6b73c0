package alerts

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sprintwatch/internal/sprint"
)

// ScanLog appends evaluator findings to a per-day plain-text log, one file
// per calendar date, for audit outside the dashboard.
type ScanLog struct {
	dir string
}

// NewScanLog creates a scan log writing into dir, creating it if needed.
func NewScanLog(dir string) (ScanLog, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ScanLog{}, fmt.Errorf("failed to create scan log directory: %w", err)
	}
	return ScanLog{dir: dir}, nil
}

// Append writes one scan block: a timestamp header followed by one line per
// alert. An empty scan writes nothing.
func (l ScanLog) Append(found []sprint.Alert, now time.Time) error {
	if len(found) == 0 {
		return nil
	}

	path := filepath.Join(l.dir, fmt.Sprintf("alerts_%s.log", now.Format("2006-01-02")))
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open scan log: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "\n--- Alert Scan: %s ---\n", now.Format("2006-01-02 15:04:05"))
	for _, a := range found {
		fmt.Fprintf(w, "[%s] %s - %s: %s\n", a.IssueKey, a.Assignee, a.Type, a.Details)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write scan log: %w", err)
	}
	return nil
}
