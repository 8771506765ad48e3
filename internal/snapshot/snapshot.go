// Package snapshot loads and saves the frequency table as a JSON file.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/verte-zerg/tcounter/internal/counter"
	"github.com/verte-zerg/tcounter/internal/model"
	"github.com/verte-zerg/tcounter/internal/report"
)

// DefaultPath is used when no snapshot path is configured.
const DefaultPath = "./dump.json"

// ErrNoSnapshot is returned by ReadFile when the snapshot file does not exist.
var ErrNoSnapshot = errors.New("no snapshot file")

// Store persists the table according to a persistence mode and reports
// the top entries on every save.
type Store struct {
	path   string
	mode   model.PersistenceMode
	top    int
	out    io.Writer
	logger *slog.Logger

	written      bool
	savedVersion uint64
}

// NewStore creates a Store. out receives the top-N report; a nil logger
// discards log output.
func NewStore(path string, mode model.PersistenceMode, top int, out io.Writer, logger *slog.Logger) *Store {
	if path == "" {
		path = DefaultPath
	}
	if top <= 0 {
		top = 10
	}
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{path: path, mode: mode, top: top, out: out, logger: logger}
}

// Path returns the snapshot file location.
func (s *Store) Path() string {
	return s.path
}

// Mode returns the persistence mode.
func (s *Store) Mode() model.PersistenceMode {
	return s.mode
}

// Load reads the snapshot. Any failure is logged and yields an empty table.
func (s *Store) Load() *counter.Table {
	s.logger.Info("attempting to load from dump file", "tag", "loading-dump", "path", s.path)
	counts, err := ReadFile(s.path)
	if err != nil {
		if errors.Is(err, ErrNoSnapshot) {
			s.logger.Info("there is no file to load from", "tag", "loading-dump", "path", s.path)
		} else {
			s.logger.Warn("dump could not be loaded, starting empty", "tag", "loading-dump", "path", s.path, "err", err)
		}
		t := counter.New()
		s.savedVersion = t.Version()
		return t
	}
	t := counter.FromSnapshot(counts)
	s.savedVersion = t.Version()
	s.written = true
	s.logger.Info("dump loaded successfully", "tag", "loading-dump", "words", t.Len())
	return t
}

// Save writes the snapshot when the mode allows it, then prints the top
// entries. The report is printed even when the write fails.
func (s *Store) Save(t *counter.Table) error {
	var saveErr error
	switch {
	case s.mode == model.PersistNone:
	case s.mode == model.PersistLazy && s.written && t.Version() == s.savedVersion:
		s.logger.Debug("table unchanged, skipping write", "tag", "saving-data", "path", s.path)
	default:
		s.logger.Info("please wait...", "tag", "saving-data", "path", s.path, "words", t.Len())
		if err := WriteFile(s.path, t.Snapshot()); err != nil {
			s.logger.Error("failed to save dump", "tag", "saving-data", "path", s.path, "err", err)
			saveErr = err
		} else {
			s.written = true
			s.savedVersion = t.Version()
		}
	}

	if err := report.WriteTop(s.out, s.top, t.TopK(s.top)); err != nil {
		s.logger.Error("failed to print report", "tag", "displaying-data", "err", err)
	}
	return saveErr
}

// ReadFile decodes a snapshot file.
func ReadFile(path string) (map[string]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var counts map[string]int
	if err := json.Unmarshal(data, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if counts == nil {
		return nil, fmt.Errorf("failed to decode snapshot: not an object")
	}
	return counts, nil
}

// WriteFile replaces the snapshot at path through a temp file and rename.
func WriteFile(path string, counts map[string]int) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	data, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "dump-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
