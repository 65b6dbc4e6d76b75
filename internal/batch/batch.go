package batch

import (
	"context"
	"errors"

	"github.com/Nomadcxx/namesink/internal/store"
)

var (
	ErrNothingToRename  = errors.New("no files have been modified")
	ErrValidationErrors = errors.New("some filenames are invalid")
	ErrInvalidState     = errors.New("operation not allowed in current state")
)

// State of the confirm/execute flow
type State int

const (
	Idle State = iota
	Confirming
	Executing
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Confirming:
		return "confirming"
	case Executing:
		return "executing"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Renamer performs the real rename of one file.
// A nil error means success; any error is reported as that item's failure reason.
type Renamer interface {
	Rename(ctx context.Context, src store.SourceFile, candidate string) error
}

// RenamerFunc adapts a function to Renamer
type RenamerFunc func(ctx context.Context, src store.SourceFile, candidate string) error

// Rename calls f
func (f RenamerFunc) Rename(ctx context.Context, src store.SourceFile, candidate string) error {
	return f(ctx, src, candidate)
}

// Outcome of one item in a batch
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeFailed
	OutcomeSkipped // never started because the batch was cancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// ItemResult is the outcome for one renamed item
type ItemResult struct {
	ID        string
	Source    store.SourceFile
	Candidate string
	Outcome   Outcome
	Err       error
}

// Result aggregates a whole batch. Items keep the store order.
type Result struct {
	Items     []ItemResult
	Succeeded int
	Failed    int
	Skipped   int
}

// OK reports whether every item succeeded
func (r *Result) OK() bool {
	return r.Failed == 0 && r.Skipped == 0
}

// Failures returns the items that did not succeed
func (r *Result) Failures() []ItemResult {
	var out []ItemResult
	for _, it := range r.Items {
		if it.Outcome != OutcomeSucceeded {
			out = append(out, it)
		}
	}
	return out
}

// SucceededIDs returns the ids of items that were renamed
func (r *Result) SucceededIDs() []string {
	var out []string
	for _, it := range r.Items {
		if it.Outcome == OutcomeSucceeded {
			out = append(out, it.ID)
		}
	}
	return out
}
