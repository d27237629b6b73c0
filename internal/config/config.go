package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"sprintwatch/internal/sprint"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DataPath  string
	LogDir    string
	CacheDir  string
	SprintDir string

	// HistoryFile and DismissalsFile are the two durable stores.
	HistoryFile    string
	DismissalsFile string

	// RulesFile points at the YAML rule thresholds, loaded separately via
	// LoadRules.
	RulesFile string

	HTTPAddr         string
	RescanSchedule   string
	ExcludedAssignee string
	DevMode          bool
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve Data Paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	cacheDir := filepath.Join(dataPath, "cache")
	sprintDir := filepath.Join(dataPath, "sprints")

	for _, dir := range []string{logDir, cacheDir, sprintDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Warn().Err(err).Str("path", dir).Msg("Failed to create data directory")
		}
	}

	cfg := &AppConfig{
		DataPath:         dataPath,
		LogDir:           logDir,
		CacheDir:         cacheDir,
		SprintDir:        sprintDir,
		HistoryFile:      filepath.Join(dataPath, "burndown_history.jsonl"),
		DismissalsFile:   filepath.Join(dataPath, "alert_dismissals.json"),
		RulesFile:        getEnv("RULES_FILE", filepath.Join(dataPath, "rules.yaml")),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8787"),
		RescanSchedule:   getEnv("RESCAN_CRON", "*/5 * * * *"),
		ExcludedAssignee: getEnv("EXCLUDED_ASSIGNEE", "Calvinthio"),
		DevMode:          getEnvBool("DEV_MODE", false),
	}

	return cfg, nil
}

// LoadRules reads rule thresholds from a YAML file, merging the values the
// file carries over the defaults. A missing file yields plain defaults. A
// malformed file also yields plain defaults, plus the parse error so the
// caller can warn; evaluation proceeds either way.
func LoadRules(path string) (sprint.RuleConfig, error) {
	cfg := sprint.DefaultRuleConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return sprint.DefaultRuleConfig(), fmt.Errorf("failed to read rules file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return sprint.DefaultRuleConfig(), fmt.Errorf("failed to parse rules file: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
