package report

import (
	"errors"
	"testing"
	"time"

	"sprintwatch/internal/history"
)

func TestBuildBurndown(t *testing.T) {
	end := time.Date(2026, time.September, 8, 0, 0, 0, 0, time.UTC)
	older := time.Date(2026, time.August, 25, 0, 0, 0, 0, time.UTC)

	hist := history.NewStore()
	hist.Upsert(history.Sample{Date: older.AddDate(0, 0, -2), SprintEnd: older, RemainingDays: 4, OpenItems: 2})
	hist.Upsert(history.Sample{Date: end.AddDate(0, 0, -3), SprintEnd: end, RemainingDays: 10, OpenItems: 5})
	hist.Upsert(history.Sample{Date: end.AddDate(0, 0, -1), SprintEnd: end, RemainingDays: 6, OpenItems: 3})

	bd, err := BuildBurndown(hist, time.Time{})
	if err != nil {
		t.Fatalf("BuildBurndown() error = %v", err)
	}
	if !bd.SprintEnd.Equal(end) {
		t.Errorf("zero sprintEnd resolved to %v, want latest %v", bd.SprintEnd, end)
	}
	if len(bd.Series) != 2 {
		t.Fatalf("series has %d samples, want 2", len(bd.Series))
	}
	if bd.BurnRate != 2 {
		t.Errorf("BurnRate = %v, want 2", bd.BurnRate)
	}
	if want := end.AddDate(0, 0, 2); bd.Forecast == nil || !bd.Forecast.Equal(want) {
		t.Errorf("Forecast = %v, want %v", bd.Forecast, want)
	}
	if bd.Ideal[0].Days != 10 || bd.Ideal[1].Days != 0 {
		t.Errorf("ideal line = %+v, want 10 days down to 0", bd.Ideal)
	}
	if len(bd.CompletedDeltas) != 2 || bd.CompletedDeltas[1] != 2 {
		t.Errorf("CompletedDeltas = %v, want [0 2]", bd.CompletedDeltas)
	}

	bd, err = BuildBurndown(hist, older)
	if err != nil || len(bd.Series) != 1 {
		t.Errorf("explicit sprintEnd: err %v, %d samples, want the older series", err, len(bd.Series))
	}

	if _, err := BuildBurndown(hist, time.Date(2031, time.January, 1, 0, 0, 0, 0, time.UTC)); !errors.Is(err, ErrNoHistory) {
		t.Errorf("unknown sprint error = %v, want ErrNoHistory", err)
	}
	if _, err := BuildBurndown(history.NewStore(), time.Time{}); !errors.Is(err, ErrNoHistory) {
		t.Errorf("empty store error = %v, want ErrNoHistory", err)
	}
}
