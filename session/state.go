package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spektr-org/wrangle/table"
)

// ============================================================================
// STATE: original, working and the transformation log
// ============================================================================
// Lifecycle:
//   Empty  -(Load)->  Ready  -(Reset)->  Ready, log empty
//   Ready  -(Load, other file)->  Ready, full reinit
//
// original is set by Load and never written again. working is replaced
// wholesale after each successful statement. The log only grows, one
// entry per replacement, until Reset clears it.
// ============================================================================

var (
	// ErrNoDataset is returned by every operation before a file is loaded.
	ErrNoDataset = errors.New("no dataset loaded")
	// ErrStepOutOfOrder is returned when a log entry skips or repeats a step.
	ErrStepOutOfOrder = errors.New("log step out of order")
)

// LogEntry records one applied transformation.
type LogEntry struct {
	Step         int       `json:"step" yaml:"step"`
	Description  string    `json:"description" yaml:"description"`
	RowsAffected int       `json:"rows_affected" yaml:"rows_affected"`
	Code         string    `json:"code" yaml:"code"`
	AppliedAt    time.Time `json:"applied_at" yaml:"applied_at"`
}

// State holds one session's data. The zero value is an empty session.
// State is not safe for concurrent use; Orchestrator serializes access.
type State struct {
	ID           string
	FileIdentity string

	original *table.Table
	working  *table.Table
	log      []LogEntry
}

// NewState returns an empty state with a fresh ID.
func NewState() *State {
	return &State{ID: uuid.NewString()}
}

// Ready reports whether a dataset has been loaded.
func (s *State) Ready() bool {
	return s.original != nil
}

// Load parses data and makes it the session's dataset. Loading the file that
// is already loaded changes nothing and returns false. A different file
// reinitializes everything and returns true. On a parse error the state is
// left as it was.
func (s *State) Load(name string, data []byte) (bool, error) {
	if s.Ready() && name == s.FileIdentity {
		return false, nil
	}
	t, err := table.Load(name, data)
	if err != nil {
		return false, err
	}
	s.init(name, t)
	return true, nil
}

func (s *State) init(name string, t *table.Table) {
	s.FileIdentity = name
	s.original = t
	s.working = t.Clone()
	s.log = nil
}

// Reset restores working to a deep copy of original and clears the log.
func (s *State) Reset() error {
	if !s.Ready() {
		return ErrNoDataset
	}
	s.working = s.original.Clone()
	s.log = nil
	return nil
}

// ReplaceWorking swaps in a new working table.
func (s *State) ReplaceWorking(t *table.Table) error {
	if !s.Ready() {
		return ErrNoDataset
	}
	if t == nil {
		return errors.New("replace working: nil table")
	}
	s.working = t
	return nil
}

// AppendLog adds an entry whose Step must be len(log)+1.
func (s *State) AppendLog(e LogEntry) error {
	if !s.Ready() {
		return ErrNoDataset
	}
	if want := len(s.log) + 1; e.Step != want {
		return fmt.Errorf("%w: got step %d, want %d", ErrStepOutOfOrder, e.Step, want)
	}
	s.log = append(s.log, e)
	return nil
}

// NextStep is the step number the next log entry must carry.
func (s *State) NextStep() int {
	return len(s.log) + 1
}

// Original returns a copy of the loaded table.
func (s *State) Original() *table.Table {
	return s.original.Clone()
}

// Working returns a copy of the current working table.
func (s *State) Working() *table.Table {
	return s.working.Clone()
}

// Log returns a copy of the transformation log.
func (s *State) Log() []LogEntry {
	out := make([]LogEntry, len(s.log))
	copy(out, s.log)
	return out
}
