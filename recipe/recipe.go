// Package recipe saves a session's transformation log as YAML and replays
// it against a fresh dataset without calling the model again.
package recipe

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spektr-org/wrangle/session"
)

// Version is the recipe format written by Marshal.
const Version = 1

// ErrInvalidRecipe is wrapped by every decoding or validation failure.
var ErrInvalidRecipe = errors.New("invalid recipe")

// Step is one replayable transformation.
type Step struct {
	Description string `yaml:"description"`
	Code        string `yaml:"code"`
	// RowsAffected is what the step did when it was recorded. Replay
	// reports it next to the new value, it is not enforced.
	RowsAffected int `yaml:"rows_affected"`
}

// Recipe is an ordered list of statements with where they came from.
type Recipe struct {
	Version   int       `yaml:"version"`
	Source    string    `yaml:"source,omitempty"`
	CreatedAt time.Time `yaml:"created_at"`
	Steps     []Step    `yaml:"steps"`
}

// FromLog builds a recipe from a transformation log.
func FromLog(source string, log []session.LogEntry, now time.Time) *Recipe {
	r := &Recipe{Version: Version, Source: source, CreatedAt: now.UTC()}
	for _, e := range log {
		r.Steps = append(r.Steps, Step{
			Description:  e.Description,
			Code:         e.Code,
			RowsAffected: e.RowsAffected,
		})
	}
	return r
}

// Validate checks the version and that every step has code.
func (r *Recipe) Validate() error {
	if r.Version != Version {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidRecipe, r.Version)
	}
	for i, s := range r.Steps {
		if strings.TrimSpace(s.Code) == "" {
			return fmt.Errorf("%w: step %d has no code", ErrInvalidRecipe, i+1)
		}
	}
	return nil
}

// Marshal encodes the recipe as YAML.
func Marshal(r *Recipe) ([]byte, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recipe: %w", err)
	}
	return data, nil
}

// Unmarshal decodes and validates a YAML recipe.
func Unmarshal(data []byte) (*Recipe, error) {
	var r Recipe
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecipe, err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Save writes the recipe to path.
func Save(path string, r *Recipe) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write recipe: %w", err)
	}
	return nil
}

// Load reads a recipe from path.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe: %w", err)
	}
	return Unmarshal(data)
}

// StepError reports which step of a replay failed.
type StepError struct {
	Step int
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("recipe step %d: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Replay applies every step to o in order and stops at the first failure.
// Steps applied before the failure stay applied, like a user issuing them
// one by one.
func Replay(o *session.Orchestrator, r *Recipe) ([]*session.Outcome, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	outcomes := make([]*session.Outcome, 0, len(r.Steps))
	for i, s := range r.Steps {
		out, err := o.ApplyCode(s.Description, s.Code)
		if err != nil {
			return outcomes, &StepError{Step: i + 1, Err: err}
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}
