package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spektr-org/wrangle/executor"
	"github.com/spektr-org/wrangle/table"
	"github.com/spektr-org/wrangle/translator"
)

// ============================================================================
// ORCHESTRATOR: instruction → translator → executor → state
// ============================================================================
// Entry point: ApplyCommand(ctx, instruction)
//
// Pipeline:
//   1. Reject a blank instruction
//   2. Sample the ORIGINAL table so prompts stay stable across steps
//   3. Translate; any translator error means "no command"
//   4. Execute against working; failure leaves state untouched
//   5. Replace working and append the log entry
//
// The mutex is held across all five steps, so two concurrent applies on
// one session cannot interleave between reading and replacing working.
// ============================================================================

var (
	// ErrEmptyInstruction is returned for a blank instruction.
	ErrEmptyInstruction = errors.New("empty instruction")
	// ErrNoCommand wraps a translator failure.
	ErrNoCommand = errors.New("could not generate a command")
)

// Outcome describes a successfully applied transformation.
type Outcome struct {
	Entry      LogEntry `json:"entry"`
	Code       string   `json:"code"`
	RowsBefore int      `json:"rows_before"`
	RowsAfter  int      `json:"rows_after"`
}

// Summary is the session's headline numbers plus its log.
type Summary struct {
	FileIdentity        string     `json:"file"`
	TransformationCount int        `json:"transformation_count"`
	OriginalRowCount    int        `json:"original_row_count"`
	WorkingRowCount     int        `json:"working_row_count"`
	RowDelta            int        `json:"row_delta"`
	Log                 []LogEntry `json:"log"`
}

// Orchestrator drives one session. It is safe for concurrent use.
type Orchestrator struct {
	mu         sync.Mutex
	state      *State
	translator translator.Translator
	cfg        *config
	log        *slog.Logger
}

// NewOrchestrator creates an empty session. tr may be nil when statements
// only come from ApplyCode, for example during recipe replay.
func NewOrchestrator(tr translator.Translator, opts ...Option) *Orchestrator {
	cfg := applyOptions(opts)
	state := NewState()
	return &Orchestrator{
		state:      state,
		translator: tr,
		cfg:        cfg,
		log:        cfg.Logger.With("component", "session", "session_id", state.ID),
	}
}

// ID returns the session identifier.
func (o *Orchestrator) ID() string {
	return o.state.ID
}

// Load makes the uploaded file the session's dataset. See State.Load.
func (o *Orchestrator) Load(name string, data []byte) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	reinit, err := o.state.Load(name, data)
	if err != nil {
		o.log.Warn("load failed", "file", name, "error", err)
		return false, err
	}
	if reinit {
		o.log.Info("dataset loaded", "file", name,
			"rows", o.state.original.RowCount(), "columns", len(o.state.original.Columns))
	}
	return reinit, nil
}

// ApplyCommand translates an instruction and applies the resulting statement.
func (o *Orchestrator) ApplyCommand(ctx context.Context, instruction string) (*Outcome, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.state.Ready() {
		return nil, ErrNoDataset
	}
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return nil, ErrEmptyInstruction
	}
	if o.translator == nil {
		return nil, fmt.Errorf("%w: no translator configured", ErrNoCommand)
	}

	sample := translator.BuildSample(o.state.original, o.cfg.SampleRows)
	code, err := o.translator.Translate(ctx, instruction, sample)
	if err != nil {
		o.log.Warn("translation failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrNoCommand, err)
	}
	return o.apply(instruction, code)
}

// ApplyCode applies a known statement without calling the translator.
// An empty description falls back to the statement itself.
func (o *Orchestrator) ApplyCode(description, code string) (*Outcome, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.state.Ready() {
		return nil, ErrNoDataset
	}
	if strings.TrimSpace(code) == "" {
		return nil, ErrEmptyInstruction
	}
	if strings.TrimSpace(description) == "" {
		description = strings.TrimSpace(code)
	}
	return o.apply(description, code)
}

// apply runs code against working. Callers hold o.mu.
func (o *Orchestrator) apply(description, code string) (*Outcome, error) {
	res, err := executor.Execute(code, o.state.working, o.cfg.ExecOptions...)
	if err != nil {
		o.log.Warn("statement failed", "code", code, "error", err)
		return nil, err
	}

	entry := LogEntry{
		Step:         o.state.NextStep(),
		Description:  description,
		RowsAffected: res.RowsAffected,
		Code:         res.Code,
		AppliedAt:    o.cfg.Now(),
	}
	if err := o.state.ReplaceWorking(res.Table); err != nil {
		return nil, err
	}
	if err := o.state.AppendLog(entry); err != nil {
		return nil, err
	}

	o.log.Info("transformation applied", "step", entry.Step,
		"rows_before", res.RowsBefore, "rows_after", res.RowsAfter)

	return &Outcome{
		Entry:      entry,
		Code:       res.Code,
		RowsBefore: res.RowsBefore,
		RowsAfter:  res.RowsAfter,
	}, nil
}

// Reset restores the original dataset and clears the log.
func (o *Orchestrator) Reset() (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.state.Reset(); err != nil {
		return "", err
	}
	o.log.Info("session reset")
	return MsgReset, nil
}

// Summary reports counts and the log.
func (o *Orchestrator) Summary() (Summary, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.state.Ready() {
		return Summary{}, ErrNoDataset
	}
	orig, work := o.state.original.RowCount(), o.state.working.RowCount()
	return Summary{
		FileIdentity:        o.state.FileIdentity,
		TransformationCount: len(o.state.log),
		OriginalRowCount:    orig,
		WorkingRowCount:     work,
		RowDelta:            work - orig,
		Log:                 o.state.Log(),
	}, nil
}

// Original returns a copy of the loaded table.
func (o *Orchestrator) Original() (*table.Table, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.state.Ready() {
		return nil, ErrNoDataset
	}
	return o.state.Original(), nil
}

// Working returns a copy of the current working table.
func (o *Orchestrator) Working() (*table.Table, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.state.Ready() {
		return nil, ErrNoDataset
	}
	return o.state.Working(), nil
}

// Log returns a copy of the transformation log.
func (o *Orchestrator) Log() ([]LogEntry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.state.Ready() {
		return nil, ErrNoDataset
	}
	return o.state.Log(), nil
}
