package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"sprintwatch/internal/sprint"
)

// Sample is one burndown observation: the state of a sprint as of one
// snapshot date. The (Date, SprintEnd) pair is the unique key.
type Sample struct {
	Date          time.Time `json:"date"`
	SprintEnd     time.Time `json:"sprintEnd"`
	RemainingDays float64   `json:"remainingDays"`
	OpenItems     int       `json:"openItems"`
}

// NewSample aggregates a normalized table into one observation: the summed
// remaining effort over every row and the count of items still open.
func NewSample(t sprint.Table, date, sprintEnd time.Time) Sample {
	var remaining float64
	open := 0
	for _, item := range t.Items {
		remaining += item.RemainingDays
		if !sprint.IsDone(item.Status) {
			open++
		}
	}
	return Sample{
		Date:          dateOnly(date),
		SprintEnd:     dateOnly(sprintEnd),
		RemainingDays: remaining,
		OpenItems:     open,
	}
}

// Store holds burndown samples partitioned by sprint end date. It is safe
// for concurrent use; persistence is explicit via Load and Save.
type Store struct {
	mu     sync.RWMutex
	series map[time.Time][]Sample
}

// NewStore creates an empty history store.
func NewStore() *Store {
	return &Store{series: make(map[time.Time][]Sample)}
}

// Upsert records a sample. A sample with the same (Date, SprintEnd) key
// replaces the stored one, so re-ingesting a corrected snapshot for a date
// updates that day instead of duplicating it. Series stay ordered by date.
func (s *Store) Upsert(sample Sample) {
	sample.Date = dateOnly(sample.Date)
	sample.SprintEnd = dateOnly(sample.SprintEnd)

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.series[sample.SprintEnd]
	for i := range list {
		if list[i].Date.Equal(sample.Date) {
			list[i] = sample
			return
		}
	}
	list = append(list, sample)
	slices.SortFunc(list, func(a, b Sample) int { return a.Date.Compare(b.Date) })
	s.series[sample.SprintEnd] = list
}

// Series returns the samples for one sprint, ordered by date.
func (s *Store) Series(sprintEnd time.Time) []Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.series[dateOnly(sprintEnd)])
}

// SprintEnds returns every sprint end date with recorded samples, ascending.
func (s *Store) SprintEnds() []time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ends := make([]time.Time, 0, len(s.series))
	for end := range s.series {
		ends = append(ends, end)
	}
	slices.SortFunc(ends, func(a, b time.Time) int { return a.Compare(b) })
	return ends
}

// Latest returns the most recent sprint end date on record.
func (s *Store) Latest() (time.Time, bool) {
	ends := s.SprintEnds()
	if len(ends) == 0 {
		return time.Time{}, false
	}
	return ends[len(ends)-1], true
}

// Count returns the total number of stored samples.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, list := range s.series {
		n += len(list)
	}
	return n
}

// Load reads samples from a JSONL history file. A missing file is a clean
// start; individual bad lines are skipped with a warning.
func (s *Store) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer file.Close()

	count := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var sample Sample
		if err := json.Unmarshal(scanner.Bytes(), &sample); err != nil {
			log.Warn().Err(err).Msg("Skipping invalid line in history file")
			continue
		}
		s.Upsert(sample)
		count++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading history: %w", err)
	}

	log.Info().Int("count", count).Msg("Loaded burndown history")
	return nil
}

// Save persists every sample to a JSONL file via a temp file and atomic
// rename. In-memory state is untouched on failure, so a save can be retried.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	var samples []Sample
	for _, list := range s.series {
		samples = append(samples, list...)
	}
	s.mu.RUnlock()

	if len(samples) == 0 {
		return nil
	}
	slices.SortFunc(samples, func(a, b Sample) int {
		if c := a.SprintEnd.Compare(b.SprintEnd); c != 0 {
			return c
		}
		return a.Date.Compare(b.Date)
	})

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp history file: %w", err)
	}

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	for _, sample := range samples {
		if err := encoder.Encode(sample); err != nil {
			file.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to encode sample: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush history: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close history file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename history file: %w", err)
	}

	log.Info().Int("count", len(samples)).Msg("Burndown history saved")
	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
