// Package model defines shared data structures.
package model

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// PersistenceMode controls whether and how snapshots are written.
type PersistenceMode int

const (
	// PersistNone never writes a snapshot.
	PersistNone PersistenceMode = iota
	// PersistFile writes the whole snapshot on every save.
	PersistFile
	// PersistLazy writes the snapshot only when the table changed since the last write.
	PersistLazy
)

// String returns the configuration name of the mode.
func (m PersistenceMode) String() string {
	switch m {
	case PersistNone:
		return "none"
	case PersistFile:
		return "file"
	case PersistLazy:
		return "lazy"
	default:
		return "unknown"
	}
}

// ParsePersistenceMode maps a configuration name to a mode.
func ParsePersistenceMode(s string) (PersistenceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return PersistNone, nil
	case "file", "":
		return PersistFile, nil
	case "lazy":
		return PersistLazy, nil
	default:
		return PersistNone, fmt.Errorf("unknown persistence mode %q (expected none, file or lazy)", s)
	}
}

// Config defines counting session settings. It is built once before the
// session starts and never mutated afterwards.
type Config struct {
	Duration        time.Duration
	Persistence     PersistenceMode
	SnapshotPath    string
	Top             int
	StopWords       map[string]struct{}
	Language        string
	ShutdownSignals []os.Signal
	IdleDeadline    bool
}

// WordCount is a single entry of a top-K report.
type WordCount struct {
	Word  string
	Count int
}

// SessionRecord captures a finished counting session for the history store.
type SessionRecord struct {
	ID            int64
	StartedAt     time.Time
	EndedAt       time.Time
	Reason        string
	Persistence   string
	Messages      int
	Tokens        int
	DistinctWords int
	SaveError     string
	TopWords      []WordCount
}
