package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"sprintwatch/internal/alerts"
	"sprintwatch/internal/history"
	"sprintwatch/internal/snapshot"
	"sprintwatch/internal/sprint"
)

var (
	ingestDate      string
	ingestSprintEnd string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <export.csv>",
	Short: "Ingest a tracker CSV export into the archive and burndown history",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDate, "date", "", "snapshot date as YYYY-MM-DD (default today)")
	ingestCmd.Flags().StringVar(&ingestSprintEnd, "sprint-end", "", "override the detected sprint end (YYYY-MM-DD)")
	rootCmd.AddCommand(ingestCmd)
}

// ingestSummary is what the command prints after a successful run.
type ingestSummary struct {
	File          string    `json:"file"`
	Date          time.Time `json:"date"`
	SprintEnd     time.Time `json:"sprintEnd"`
	Items         int       `json:"items"`
	OpenItems     int       `json:"openItems"`
	RemainingDays float64   `json:"remainingDays"`
	Alerts        int       `json:"alerts"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]

	date := time.Now()
	if ingestDate != "" {
		parsed, err := time.Parse("2006-01-02", ingestDate)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", ingestDate, err)
		}
		date = parsed
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read export: %w", err)
	}
	table, err := snapshot.Read(bytes.NewReader(data), snapshot.Options{ExcludedAssignee: cfg.ExcludedAssignee})
	if err != nil {
		return err
	}
	sprint.NormalizeTable(&table)

	sprintEnd := snapshot.DetectSprintEnd(table.Items, date)
	if ingestSprintEnd != "" {
		parsed, err := time.Parse("2006-01-02", ingestSprintEnd)
		if err != nil {
			return fmt.Errorf("invalid --sprint-end %q: %w", ingestSprintEnd, err)
		}
		sprintEnd = parsed
	}

	store := snapshot.NewStore(cfg.CacheDir, cfg.SprintDir)
	if err := store.Save(data, filepath.Base(path), date); err != nil {
		return err
	}

	hist := history.NewStore()
	if err := hist.Load(cfg.HistoryFile); err != nil {
		return err
	}
	sample := history.NewSample(table, date, sprintEnd)
	hist.Upsert(sample)
	if err := hist.Save(cfg.HistoryFile); err != nil {
		return err
	}

	found := sprint.Evaluate(table, rules)
	sprint.SortAlerts(found)
	scanLog, err := alerts.NewScanLog(cfg.LogDir)
	if err != nil {
		return err
	}
	if err := scanLog.Append(found, date); err != nil {
		log.Warn().Err(err).Msg("Failed to append to alert scan log")
	}

	out, err := json.MarshalIndent(ingestSummary{
		File:          filepath.Base(path),
		Date:          sample.Date,
		SprintEnd:     sprintEnd,
		Items:         len(table.Items),
		OpenItems:     sample.OpenItems,
		RemainingDays: sample.RemainingDays,
		Alerts:        len(found),
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
