package commands

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"sprintwatch/internal/alerts"
	"sprintwatch/internal/sprint"
)

var (
	dismissBy      string
	dismissRemarks string
	dismissList    bool
)

var dismissCmd = &cobra.Command{
	Use:   "dismiss <issue-key> <alert-type>",
	Short: "Acknowledge an alert so it stops counting as active",
	Args:  cobra.MaximumNArgs(2),
	RunE:  runDismiss,
}

func init() {
	dismissCmd.Flags().StringVar(&dismissBy, "by", "cli", "who is acknowledging the alert")
	dismissCmd.Flags().StringVar(&dismissRemarks, "remarks", "", "why the alert is acknowledged")
	dismissCmd.Flags().BoolVar(&dismissList, "list", false, "list recorded dismissals instead of adding one")
	rootCmd.AddCommand(dismissCmd)
}

func runDismiss(cmd *cobra.Command, args []string) error {
	ledger := alerts.NewLedger()
	if err := ledger.Load(cfg.DismissalsFile); err != nil {
		return err
	}

	if dismissList {
		out, err := json.MarshalIndent(ledger.All(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	if len(args) != 2 {
		return fmt.Errorf("expected <issue-key> <alert-type>, got %d arguments", len(args))
	}

	ledger.Dismiss(args[0], sprint.AlertType(args[1]), dismissBy, dismissRemarks)
	if err := ledger.Save(cfg.DismissalsFile); err != nil {
		return err
	}
	log.Info().Str("issueKey", args[0]).Str("alertType", args[1]).Msg("Alert dismissed")
	return nil
}
