package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Nomadcxx/namesink/internal/notify"
	"github.com/Nomadcxx/namesink/internal/store"
)

// DefaultWorkers is the number of renames run at once when Config.Workers is unset
const DefaultWorkers = 4

// Config holds coordinator settings
type Config struct {
	Workers int // concurrent renames, 1 runs the batch sequentially
}

// DefaultConfig returns the default coordinator settings
func DefaultConfig() Config {
	return Config{Workers: DefaultWorkers}
}

// Coordinator drives Idle -> Confirming -> Executing -> Completed|Failed.
// Like the store it belongs to a single goroutine; only Run may be called elsewhere.
type Coordinator struct {
	store   *store.Store
	renamer Renamer
	sink    notify.Sink
	config  Config

	state State
	last  *Result
}

// New creates a coordinator over s. sink may be nil.
func New(s *store.Store, r Renamer, sink notify.Sink, cfg Config) *Coordinator {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	return &Coordinator{
		store:   s,
		renamer: r,
		sink:    sink,
		config:  cfg,
		state:   Idle,
	}
}

// State returns the current state
func (c *Coordinator) State() State {
	return c.state
}

// LastResult returns the result of the most recent batch, or nil
func (c *Coordinator) LastResult() *Result {
	return c.last
}

// CanRequest reports why a rename request would be refused, or nil
func (c *Coordinator) CanRequest() error {
	if c.store.HasValidationErrors() {
		return ErrValidationErrors
	}
	if c.store.ModifiedCount() == 0 {
		return ErrNothingToRename
	}
	return nil
}

// RequestRename moves Idle to Confirming when the list is valid and has changes
func (c *Coordinator) RequestRename() error {
	if c.state != Idle {
		return fmt.Errorf("request rename while %s: %w", c.state, ErrInvalidState)
	}
	if err := c.CanRequest(); err != nil {
		return err
	}
	c.state = Confirming
	return nil
}

// Cancel returns from Confirming to Idle without touching the store
func (c *Coordinator) Cancel() error {
	if c.state != Confirming {
		return fmt.Errorf("cancel while %s: %w", c.state, ErrInvalidState)
	}
	c.state = Idle
	return nil
}

// Plan returns the items that a confirmation would rename
func (c *Coordinator) Plan() []store.Item {
	return c.store.Modified()
}

// Confirm executes the batch and applies the outcome to the store
func (c *Coordinator) Confirm(ctx context.Context) (*Result, error) {
	items, err := c.Begin()
	if err != nil {
		return nil, err
	}
	result := c.Run(ctx, items)
	if err := c.Finish(result); err != nil {
		return result, err
	}
	return result, nil
}

// Begin moves Confirming to Executing and returns the modified items to rename.
// The list is re-checked so a batch never starts on invalid names.
func (c *Coordinator) Begin() ([]store.Item, error) {
	if c.state != Confirming {
		return nil, fmt.Errorf("confirm while %s: %w", c.state, ErrInvalidState)
	}
	if err := c.CanRequest(); err != nil {
		c.state = Idle
		return nil, err
	}
	c.state = Executing
	return c.Plan(), nil
}

// Run renames items with bounded parallelism and waits for all of them.
// It never touches the store. Items not started before ctx is cancelled are skipped.
func (c *Coordinator) Run(ctx context.Context, items []store.Item) *Result {
	result := &Result{Items: make([]ItemResult, len(items))}
	for i, it := range items {
		result.Items[i] = ItemResult{
			ID:        it.ID,
			Source:    it.Source,
			Candidate: it.Candidate,
			Outcome:   OutcomeSkipped,
		}
	}

	workers := c.config.Workers
	if workers > len(items) {
		workers = len(items)
	}

	indexChan := make(chan int)
	var wg sync.WaitGroup

	// Each worker writes only to its own slots, so no lock is needed on result.Items
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexChan {
				c.renameOne(ctx, &result.Items[i])
			}
		}()
	}

feed:
	for i := range items {
		select {
		case <-ctx.Done():
			break feed
		case indexChan <- i:
		}
	}
	close(indexChan)
	wg.Wait()

	for i := range result.Items {
		it := &result.Items[i]
		switch it.Outcome {
		case OutcomeSucceeded:
			result.Succeeded++
		case OutcomeFailed:
			result.Failed++
		case OutcomeSkipped:
			if it.Err == nil {
				it.Err = context.Cause(ctx)
			}
			result.Skipped++
		}
	}

	return result
}

func (c *Coordinator) renameOne(ctx context.Context, it *ItemResult) {
	// A worker may pick up an index just as ctx is cancelled
	if ctx.Err() != nil {
		it.Err = context.Cause(ctx)
		return
	}

	if err := c.renamer.Rename(ctx, it.Source, it.Candidate); err != nil {
		it.Outcome = OutcomeFailed
		it.Err = err
		log.Error().Err(err).Str("id", it.ID).Str("from", it.Source.Name).Str("to", it.Candidate).Msg("rename failed")
		return
	}

	it.Outcome = OutcomeSucceeded
	log.Debug().Str("id", it.ID).Str("from", it.Source.Name).Str("to", it.Candidate).Msg("renamed")
}

// Finish applies a batch result from Executing.
// A fully successful batch clears the store and returns to Idle. Otherwise the
// renamed items are removed, the failed ones stay, and the coordinator returns
// to Confirming so they can be retried or cancelled.
func (c *Coordinator) Finish(result *Result) error {
	if c.state != Executing {
		return fmt.Errorf("finish while %s: %w", c.state, ErrInvalidState)
	}
	c.last = result

	if result.OK() {
		c.state = Completed
		log.Info().Int("renamed", result.Succeeded).Msg("batch rename completed")
		c.store.Reset()
		notify.Send(c.sink, notify.RenameCompleted(result.Succeeded))
		c.state = Idle
		return nil
	}

	c.state = Failed
	log.Warn().Int("renamed", result.Succeeded).Int("failed", result.Failed).Int("skipped", result.Skipped).Msg("batch rename finished with failures")

	c.store.Remove(result.SucceededIDs()...)

	failures := make([]notify.Failure, 0, result.Failed+result.Skipped)
	for _, f := range result.Failures() {
		reason := "unknown error"
		if f.Err != nil {
			reason = f.Err.Error()
		}
		failures = append(failures, notify.Failure{
			ID:        f.ID,
			Name:      f.Source.Name,
			Candidate: f.Candidate,
			Reason:    reason,
		})
	}
	notify.Send(c.sink, notify.RenameFailed(result.Succeeded, failures))

	c.state = Confirming
	return nil
}
