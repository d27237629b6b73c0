package server

import (
	"bytes"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"sprintwatch/internal/alerts"
	"sprintwatch/internal/config"
	"sprintwatch/internal/history"
	"sprintwatch/internal/report"
	"sprintwatch/internal/snapshot"
	"sprintwatch/internal/sprint"
)

// State is everything the HTTP surface serves. The latest snapshot lives in
// memory as a fully built Report; the burndown history and the dismissal
// ledger are the durable stores behind it. Handlers read, the upload
// endpoint and the periodic rescan write.
type State struct {
	cfg   *config.AppConfig
	rules sprint.RuleConfig

	snapshots *snapshot.Store
	scanLog   alerts.ScanLog
	history   *history.Store
	ledger    *alerts.Ledger

	mu      sync.RWMutex
	table   sprint.Table
	current report.Report
	asOf    time.Time
	loaded  bool
}

// NewState wires the stores and loads durable state from disk. Missing files
// are a clean first run. A dismissals file that exists but cannot be parsed
// aborts startup: continuing with an empty ledger would resurface every
// recorded acknowledgment and overwrite them all on the next save.
func NewState(cfg *config.AppConfig, rules sprint.RuleConfig) (*State, error) {
	scanLog, err := alerts.NewScanLog(cfg.LogDir)
	if err != nil {
		return nil, err
	}

	s := &State{
		cfg:       cfg,
		rules:     rules,
		snapshots: snapshot.NewStore(cfg.CacheDir, cfg.SprintDir),
		scanLog:   scanLog,
		history:   history.NewStore(),
		ledger:    alerts.NewLedger(),
	}
	if err := s.history.Load(cfg.HistoryFile); err != nil {
		return nil, err
	}
	if err := s.ledger.Load(cfg.DismissalsFile); err != nil {
		return nil, err
	}
	return s, nil
}

// Refresh rebuilds the served report from the newest stored snapshot.
// Returns snapshot.ErrNoSnapshot when nothing has ever been ingested.
func (s *State) Refresh(now time.Time) error {
	path, err := s.snapshots.Latest()
	if err != nil {
		return err
	}
	table, err := snapshot.ReadFile(path, snapshot.Options{ExcludedAssignee: s.cfg.ExcludedAssignee})
	if err != nil {
		return err
	}
	s.install(table, now, snapshot.DetectSprintEnd(table.Items, now))
	return nil
}

// Ingest takes one raw CSV export through the full pipeline: parse, archive,
// fold into the burndown history, append findings to the scan log, and swap
// the served report over to the new snapshot. History and scan log write
// failures are logged but do not fail the ingest; the snapshot archive
// write does, because losing the snapshot itself leaves nothing to rescan.
func (s *State) Ingest(data []byte, filename string, now time.Time) (report.Report, error) {
	table, err := snapshot.Read(bytes.NewReader(data), snapshot.Options{ExcludedAssignee: s.cfg.ExcludedAssignee})
	if err != nil {
		return report.Report{}, err
	}
	sprint.NormalizeTable(&table)

	if err := s.snapshots.Save(data, filename, now); err != nil {
		return report.Report{}, err
	}

	sprintEnd := snapshot.DetectSprintEnd(table.Items, now)
	s.history.Upsert(history.NewSample(table, now, sprintEnd))
	if err := s.history.Save(s.cfg.HistoryFile); err != nil {
		log.Warn().Err(err).Str("path", s.cfg.HistoryFile).Msg("Failed to persist burndown history")
	}

	found := sprint.Evaluate(table, s.rules)
	sprint.SortAlerts(found)
	if err := s.scanLog.Append(found, now); err != nil {
		log.Warn().Err(err).Msg("Failed to append to alert scan log")
	}

	return s.install(table, now, sprintEnd), nil
}

// install swaps the served snapshot. The report is rebuilt here and again on
// every dismissal, always against the same asOf instant so the generated
// timestamp keeps describing the scan rather than the re-triage.
func (s *State) install(table sprint.Table, now, sprintEnd time.Time) report.Report {
	rep := report.Build(table, s.rules, s.ledger, now, sprintEnd)

	s.mu.Lock()
	s.table = table
	s.current = rep
	s.asOf = now
	s.loaded = true
	s.mu.Unlock()
	return rep
}

// Report returns the currently served report. ok is false until a snapshot
// has been ingested or refreshed.
func (s *State) Report() (report.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.loaded
}

// Dismiss records an acknowledgment, persists the ledger and re-triages the
// served report. The in-memory ledger keeps the dismissal even when the
// write fails; the error is surfaced after the state has moved so the
// caller can retry the save without losing the acknowledgment.
func (s *State) Dismiss(issueKey string, alertType sprint.AlertType, by, remarks string) error {
	s.ledger.Dismiss(issueKey, alertType, by, remarks)
	err := s.ledger.Save(s.cfg.DismissalsFile)

	s.mu.Lock()
	if s.loaded {
		s.current = report.Build(s.table, s.rules, s.ledger, s.asOf, s.current.SprintEnd)
	}
	s.mu.Unlock()
	return err
}

// Dismissals lists every recorded acknowledgment, oldest first.
func (s *State) Dismissals() []alerts.Dismissal {
	return s.ledger.All()
}

// SnapshotInfo returns the stored metadata for the last saved snapshot, or
// nil when nothing has been saved yet.
func (s *State) SnapshotInfo() (*snapshot.Metadata, error) {
	return s.snapshots.Metadata()
}

// Burndown assembles series and trend for one sprint. A zero sprintEnd
// selects the most recent sprint on record.
func (s *State) Burndown(sprintEnd time.Time) (report.Burndown, error) {
	return report.BuildBurndown(s.history, sprintEnd)
}
