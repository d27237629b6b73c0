package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"sprintwatch/cmd/csvgen/engine"
)

func main() {
	scenario := flag.String("scenario", "healthy", "Scenario to generate: healthy, overrun, blocked")
	count := flag.Int("count", 40, "Number of issues to generate")
	out := flag.String("out", "sprint_export.csv", "Output file, or - for stdout")
	end := flag.String("sprint-end", "", "Sprint end date as YYYY-MM-DD (default next Tuesday)")
	seed := flag.Int64("seed", 0, "Random seed (0 derives one from the current time)")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario: *scenario,
		Count:    *count,
		Seed:     *seed,
	}
	if *end != "" {
		parsed, err := time.Parse("2006-01-02", *end)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid --sprint-end: %v\n", err)
			os.Exit(1)
		}
		cfg.SprintEnd = parsed
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	rows := engine.Generate(cfg)
	if err := engine.Save(*out, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save export: %v\n", err)
		os.Exit(1)
	}
	if *out != "-" {
		fmt.Printf("Generated %d issues (scenario '%s') to %s\n", len(rows)-1, *scenario, *out)
	}
}
