package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sprintwatch/internal/history"
	"sprintwatch/internal/report"
	"sprintwatch/internal/visuals"
)

var (
	historySprintEnd string
	historyChart     bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the burndown series and trend for a sprint",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historySprintEnd, "sprint-end", "", "sprint end date as YYYY-MM-DD (default latest on record)")
	historyCmd.Flags().BoolVar(&historyChart, "chart", false, "render a Mermaid burndown chart instead of JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	hist := history.NewStore()
	if err := hist.Load(cfg.HistoryFile); err != nil {
		return err
	}

	var sprintEnd time.Time
	if historySprintEnd != "" {
		parsed, err := time.Parse("2006-01-02", historySprintEnd)
		if err != nil {
			return fmt.Errorf("invalid --sprint-end %q: %w", historySprintEnd, err)
		}
		sprintEnd = parsed
	}

	bd, err := report.BuildBurndown(hist, sprintEnd)
	if err != nil {
		return err
	}

	if historyChart {
		fmt.Println(visuals.BurndownChart(bd))
		return nil
	}

	out, err := json.MarshalIndent(bd, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
