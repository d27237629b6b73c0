package alerts

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"sprintwatch/internal/sprint"
)

// Dismissal is one durable acknowledgment of a (issue, alert type) pair.
// Field names match the dismissals file on disk.
type Dismissal struct {
	IssueKey    string           `json:"issue_key"`
	AlertType   sprint.AlertType `json:"alert_type"`
	DismissedAt time.Time        `json:"dismissed_at"`
	DismissedBy string           `json:"dismissed_by"`
	Remarks     string           `json:"remarks"`
}

// Ledger is the durable store of dismissed alerts. Dismissals never expire
// and are never auto-removed; re-dismissing a key overwrites the previous
// record. Safe for concurrent use.
type Ledger struct {
	mu        sync.RWMutex
	dismissed map[string]Dismissal
}

// NewLedger creates an empty dismissal ledger.
func NewLedger() *Ledger {
	return &Ledger{dismissed: make(map[string]Dismissal)}
}

func ledgerKey(issueKey string, alertType sprint.AlertType) string {
	return issueKey + "|" + string(alertType)
}

// Dismiss records an acknowledgment. The latest actor and remarks win.
func (l *Ledger) Dismiss(issueKey string, alertType sprint.AlertType, by, remarks string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dismissed[ledgerKey(issueKey, alertType)] = Dismissal{
		IssueKey:    issueKey,
		AlertType:   alertType,
		DismissedAt: time.Now(),
		DismissedBy: by,
		Remarks:     remarks,
	}
}

// IsDismissed reports whether the pair has been acknowledged.
func (l *Ledger) IsDismissed(issueKey string, alertType sprint.AlertType) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.dismissed[ledgerKey(issueKey, alertType)]
	return ok
}

// Get returns the dismissal record for the pair, if any.
func (l *Ledger) Get(issueKey string, alertType sprint.AlertType) (Dismissal, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	d, ok := l.dismissed[ledgerKey(issueKey, alertType)]
	return d, ok
}

// All returns every dismissal ordered by dismissal time.
func (l *Ledger) All() []Dismissal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	all := make([]Dismissal, 0, len(l.dismissed))
	for _, d := range l.dismissed {
		all = append(all, d)
	}
	slices.SortFunc(all, func(a, b Dismissal) int { return a.DismissedAt.Compare(b.DismissedAt) })
	return all
}

// Count returns the number of dismissed pairs.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.dismissed)
}

// Load reads the dismissals file. A missing file is a clean start; a file
// that exists but cannot be read or parsed is surfaced so the caller can
// warn rather than silently losing acknowledgments.
func (l *Ledger) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read dismissals: %w", err)
	}

	var dismissed map[string]Dismissal
	if err := json.Unmarshal(data, &dismissed); err != nil {
		return fmt.Errorf("failed to parse dismissals: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for k, d := range dismissed {
		l.dismissed[k] = d
	}
	return nil
}

// Save writes the ledger to disk via a temp file and atomic rename. The
// in-memory ledger keeps its state on failure, so a save can be retried.
func (l *Ledger) Save(path string) error {
	l.mu.RLock()
	data, err := json.MarshalIndent(l.dismissed, "", "  ")
	l.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode dismissals: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write dismissals: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename dismissals file: %w", err)
	}
	return nil
}
