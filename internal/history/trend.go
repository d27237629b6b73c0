package history

import "time"

// sprintLengthDays is the span of a two-week sprint: the start date sits 13
// days before the end date.
const sprintLengthDays = 13

// Point is one (date, effort) coordinate of a burndown line.
type Point struct {
	Date time.Time `json:"date"`
	Days float64   `json:"days"`
}

// Trend derives the average daily burn rate from an ordered series and,
// when work is actually burning down, the projected completion date. Fewer
// than two samples, a stalled burn or scope creep (rate <= 0) yield no
// forecast; that is insufficient signal, not an error.
func Trend(series []Sample) (burnRate float64, forecast *time.Time) {
	if len(series) < 2 {
		return 0, nil
	}

	first, last := series[0], series[len(series)-1]
	daysElapsed := last.Date.Sub(first.Date).Hours() / 24
	if daysElapsed <= 0 {
		return 0, nil
	}

	burnRate = (first.RemainingDays - last.RemainingDays) / daysElapsed
	if burnRate <= 0 {
		return burnRate, nil
	}

	daysToFinish := last.RemainingDays / burnRate
	projected := last.Date.Add(time.Duration(daysToFinish * 24 * float64(time.Hour)))
	return burnRate, &projected
}

// IdealLine is the straight reference line from sprint start at the maximum
// observed remaining effort down to zero at sprint end. It is a rendering
// aid only and plays no part in the forecast.
func IdealLine(series []Sample, sprintEnd time.Time) [2]Point {
	var maxRemaining float64
	for _, s := range series {
		if s.RemainingDays > maxRemaining {
			maxRemaining = s.RemainingDays
		}
	}
	start := dateOnly(sprintEnd).AddDate(0, 0, -sprintLengthDays)
	return [2]Point{
		{Date: start, Days: maxRemaining},
		{Date: dateOnly(sprintEnd), Days: 0},
	}
}

// CompletedDeltas returns the day-over-day drop in open items for each
// sample, clamped at zero. The first sample has no predecessor and reads 0.
func CompletedDeltas(series []Sample) []int {
	deltas := make([]int, len(series))
	for i := 1; i < len(series); i++ {
		if d := series[i-1].OpenItems - series[i].OpenItems; d > 0 {
			deltas[i] = d
		}
	}
	return deltas
}

// WorkingDaysLeft counts the Monday-Friday days between from and until,
// both inclusive. A target already in the past counts zero.
func WorkingDaysLeft(from, until time.Time) int {
	from = dateOnly(from)
	until = dateOnly(until)
	if until.Before(from) {
		return 0
	}

	days := 0
	for d := from; !d.After(until); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}
