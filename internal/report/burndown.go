package report

import (
	"errors"
	"time"

	"sprintwatch/internal/history"
)

// ErrNoHistory is returned when a burndown is requested for a sprint with no
// recorded samples.
var ErrNoHistory = errors.New("no burndown history for sprint")

// Burndown is the burndown view for one sprint: the recorded series plus
// everything derived from it.
type Burndown struct {
	SprintEnd       time.Time        `json:"sprintEnd"`
	Series          []history.Sample `json:"series"`
	BurnRate        float64          `json:"burnRate"`
	Forecast        *time.Time       `json:"forecast,omitempty"`
	Ideal           [2]history.Point `json:"ideal"`
	CompletedDeltas []int            `json:"completedDeltas"`
}

// BuildBurndown assembles the series and trend for one sprint. A zero
// sprintEnd selects the most recent sprint on record.
func BuildBurndown(hist *history.Store, sprintEnd time.Time) (Burndown, error) {
	if sprintEnd.IsZero() {
		latest, ok := hist.Latest()
		if !ok {
			return Burndown{}, ErrNoHistory
		}
		sprintEnd = latest
	}
	series := hist.Series(sprintEnd)
	if len(series) == 0 {
		return Burndown{}, ErrNoHistory
	}

	rate, forecast := history.Trend(series)
	return Burndown{
		SprintEnd:       sprintEnd,
		Series:          series,
		BurnRate:        rate,
		Forecast:        forecast,
		Ideal:           history.IdealLine(series, sprintEnd),
		CompletedDeltas: history.CompletedDeltas(series),
	}, nil
}
