package commands

import (
	"sprintwatch/internal/config"
	"sprintwatch/internal/logging"
	"sprintwatch/internal/sprint"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
	rules   sprint.RuleConfig
)

var rootCmd = &cobra.Command{
	Use:   "sprintwatch",
	Short: "Sprintwatch turns tracker CSV exports into sprint reports",
	Long: `Sprintwatch ingests issue-tracker CSV snapshots, normalizes effort fields
into 8-hour days, evaluates estimation-hygiene rules and serves sprint
metrics, burndown trends and alerts over a local dashboard API.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		// Load configuration
		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		// Rule thresholds are optional overrides; evaluation runs on
		// defaults when the file is absent or broken.
		rules, err = config.LoadRules(cfg.RulesFile)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.RulesFile).Msg("Falling back to default rule thresholds")
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("sprintwatch starting")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
