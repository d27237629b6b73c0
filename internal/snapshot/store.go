package snapshot

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrNoSnapshot is returned by Latest when neither the cache nor the
// permanent archive holds a snapshot. Callers treat it as "nothing ingested
// yet", distinct from an I/O failure.
var ErrNoSnapshot = errors.New("no saved snapshot")

const (
	cacheFileName    = "last_sprint.csv"
	metadataFileName = "metadata.json"
)

// Metadata describes the most recently saved snapshot.
type Metadata struct {
	LastUploadTime time.Time `json:"last_upload_time"`
	Filename       string    `json:"filename"`
	RowCount       int       `json:"row_count"`
	Columns        []string  `json:"columns"`
}

// Store persists snapshots twice: a cache copy for fast reload of the most
// recent upload, and a permanent per-date archive that survives cache
// clears. The archive keeps one file per snapshot date; re-saving the same
// date overwrites it.
type Store struct {
	cacheDir  string
	sprintDir string
}

// NewStore creates a snapshot store over the given cache and archive
// directories, creating them if needed.
func NewStore(cacheDir, sprintDir string) *Store {
	for _, dir := range []string{cacheDir, sprintDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("Could not create snapshot directory")
		}
	}
	return &Store{cacheDir: cacheDir, sprintDir: sprintDir}
}

// Save writes the raw snapshot bytes to the permanent archive for the given
// date, refreshes the cache copy, and records metadata about the upload.
// Any failure is surfaced; previously computed in-memory state is never
// touched, so callers can retry the save independently.
func (s *Store) Save(data []byte, filename string, date time.Time) error {
	archivePath := filepath.Join(s.sprintDir, fmt.Sprintf("sprint_%s.csv", date.Format("2006-01-02")))
	if err := writeFileAtomic(archivePath, data); err != nil {
		return fmt.Errorf("failed to archive snapshot: %w", err)
	}

	cachePath := filepath.Join(s.cacheDir, cacheFileName)
	if err := writeFileAtomic(cachePath, data); err != nil {
		return fmt.Errorf("failed to cache snapshot: %w", err)
	}

	meta := Metadata{
		LastUploadTime: time.Now(),
		Filename:       filename,
	}
	meta.RowCount, meta.Columns = describeCSV(data)
	if err := writeJSONAtomic(filepath.Join(s.cacheDir, metadataFileName), meta); err != nil {
		return fmt.Errorf("failed to write snapshot metadata: %w", err)
	}

	log.Info().Str("file", filename).Int("rows", meta.RowCount).
		Str("archive", archivePath).Msg("Snapshot saved")
	return nil
}

// Latest returns the path of the most recent snapshot. The cache copy wins
// when present; otherwise the newest archive file by modification time is
// promoted back into the cache. ErrNoSnapshot means nothing has been saved.
func (s *Store) Latest() (string, error) {
	cachePath := filepath.Join(s.cacheDir, cacheFileName)
	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to stat snapshot cache: %w", err)
	}

	newest, err := s.newestArchive()
	if err != nil {
		return "", err
	}
	if newest == "" {
		return "", ErrNoSnapshot
	}

	data, err := os.ReadFile(newest)
	if err != nil {
		return "", fmt.Errorf("failed to read archived snapshot: %w", err)
	}
	if err := writeFileAtomic(cachePath, data); err != nil {
		log.Warn().Err(err).Msg("Could not re-cache archived snapshot")
		return newest, nil
	}
	return cachePath, nil
}

// Metadata returns the record written by the last Save, or nil when no
// snapshot has been saved yet.
func (s *Store) Metadata() (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(s.cacheDir, metadataFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot metadata: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot metadata: %w", err)
	}
	return &meta, nil
}

func (s *Store) newestArchive() (string, error) {
	matches, err := filepath.Glob(filepath.Join(s.sprintDir, "sprint_*.csv"))
	if err != nil {
		return "", fmt.Errorf("failed to list snapshot archive: %w", err)
	}
	var newest string
	var newestMod time.Time
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = path
			newestMod = info.ModTime()
		}
	}
	return newest, nil
}

// describeCSV extracts the header and row count for the metadata record.
func describeCSV(data []byte) (rows int, columns []string) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return 0, nil
	}
	columns = header
	for {
		if _, err := cr.Read(); err != nil {
			if err == io.EOF {
				break
			}
			continue
		}
		rows++
	}
	return rows, columns
}

func writeFileAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}
