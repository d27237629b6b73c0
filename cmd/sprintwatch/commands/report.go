package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"sprintwatch/internal/alerts"
	"sprintwatch/internal/report"
	"sprintwatch/internal/snapshot"
	"sprintwatch/internal/sprint"
	"sprintwatch/internal/visuals"
)

var (
	reportSnapshotPath string
	reportChart        bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the full sprint report and print it as JSON",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportSnapshotPath, "snapshot", "", "report on a specific CSV export instead of the latest archived snapshot")
	reportCmd.Flags().BoolVar(&reportChart, "chart", false, "render a Mermaid workload chart instead of JSON")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	path := reportSnapshotPath
	if path == "" {
		store := snapshot.NewStore(cfg.CacheDir, cfg.SprintDir)
		latest, err := store.Latest()
		if err != nil {
			return err
		}
		path = latest
	}

	table, err := snapshot.ReadFile(path, snapshot.Options{ExcludedAssignee: cfg.ExcludedAssignee})
	if err != nil {
		return err
	}

	ledger := alerts.NewLedger()
	if err := ledger.Load(cfg.DismissalsFile); err != nil {
		return err
	}

	now := time.Now()
	rep := report.Build(table, rules, ledger, now, snapshot.DetectSprintEnd(table.Items, now))

	log.Info().
		Str("sprintEnd", rep.SprintEnd.Format("2006-01-02")).
		Str("totalPoints", sprint.FormatPoints(rep.Metrics.TotalPoints)).
		Str("completedPoints", sprint.FormatPoints(rep.Metrics.CompletedPoints)).
		Int("activeAlerts", len(rep.Alerts.Active)).
		Int("atRisk", rep.AtRiskCount).
		Msg("Report built")

	if reportChart {
		fmt.Println(visuals.WorkloadChart(rep.Workload))
		return nil
	}

	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
