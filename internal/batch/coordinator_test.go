package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Nomadcxx/namesink/internal/notify"
	"github.com/Nomadcxx/namesink/internal/store"
)

// recordingRenamer records every call and fails the names listed in fail
type recordingRenamer struct {
	mu    sync.Mutex
	calls map[string]string
	fail  map[string]error
}

func newRecordingRenamer() *recordingRenamer {
	return &recordingRenamer{calls: map[string]string{}, fail: map[string]error{}}
}

func (r *recordingRenamer) Rename(ctx context.Context, src store.SourceFile, candidate string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[src.Name] = candidate
	if err, ok := r.fail[src.Name]; ok {
		return err
	}
	return nil
}

func setup(t *testing.T, r Renamer, fileNames ...string) (*store.Store, *Coordinator, *[]notify.Event) {
	t.Helper()
	events := &[]notify.Event{}
	sink := notify.FuncSink(func(e notify.Event) { *events = append(*events, e) })

	files := make([]store.SourceFile, len(fileNames))
	for i, n := range fileNames {
		files[i] = store.SourceFile{Name: n}
	}

	s := store.New(sink)
	s.Initialize(files)
	return s, New(s, r, sink, Config{Workers: 2}), events
}

func TestRequestRenameRefusals(t *testing.T) {
	r := newRecordingRenamer()
	s, c, _ := setup(t, r, "a.txt", "b.txt")

	if err := c.RequestRename(); !errors.Is(err, ErrNothingToRename) {
		t.Errorf("expected ErrNothingToRename, got %v", err)
	}
	if c.State() != Idle {
		t.Errorf("refused request should stay idle, got %s", c.State())
	}

	snap := s.Snapshot()
	s.Rename(snap.Items[0].ID, "x")
	s.Rename(snap.Items[1].ID, "bad?")
	if err := c.RequestRename(); !errors.Is(err, ErrValidationErrors) {
		t.Errorf("expected ErrValidationErrors, got %v", err)
	}

	s.Rename(snap.Items[1].ID, "b.txt")
	if err := c.RequestRename(); err != nil {
		t.Fatalf("expected request to be accepted, got %v", err)
	}
	if c.State() != Confirming {
		t.Errorf("expected confirming, got %s", c.State())
	}

	if err := c.RequestRename(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second request should fail with ErrInvalidState, got %v", err)
	}
}

func TestCancel(t *testing.T) {
	r := newRecordingRenamer()
	s, c, _ := setup(t, r, "a.txt")
	s.Rename(s.Snapshot().Items[0].ID, "z")
	version := s.Snapshot().Version

	if err := c.Cancel(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("cancel from idle should fail, got %v", err)
	}

	if err := c.RequestRename(); err != nil {
		t.Fatal(err)
	}
	if err := c.Cancel(); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if c.State() != Idle {
		t.Errorf("expected idle after cancel, got %s", c.State())
	}
	if s.Snapshot().Version != version {
		t.Error("cancel must not mutate the store")
	}
	if len(r.calls) != 0 {
		t.Error("cancel must not invoke the renamer")
	}
}

func TestConfirmWithoutRequest(t *testing.T) {
	_, c, _ := setup(t, newRecordingRenamer(), "a.txt")
	if _, err := c.Confirm(context.Background()); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestConfirmOnlyRenamesModified(t *testing.T) {
	r := newRecordingRenamer()
	s, c, events := setup(t, r, "a.txt", "b.png", "c.md")
	snap := s.Snapshot()
	s.Rename(snap.Items[0].ID, "x")
	s.Rename(snap.Items[2].ID, "notes.txt")

	if err := c.RequestRename(); err != nil {
		t.Fatal(err)
	}
	*events = nil
	result, err := c.Confirm(context.Background())
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}

	if !result.OK() || result.Succeeded != 2 {
		t.Errorf("expected 2 successes, got %+v", result)
	}
	if len(r.calls) != 2 {
		t.Errorf("expected 2 rename calls, got %v", r.calls)
	}
	if _, called := r.calls["b.png"]; called {
		t.Error("unmodified item must not be sent to the renamer")
	}
	if r.calls["a.txt"] != "x.txt" || r.calls["c.md"] != "notes.txt" {
		t.Errorf("unexpected candidates %v", r.calls)
	}

	if c.State() != Idle {
		t.Errorf("expected idle after completion, got %s", c.State())
	}
	if s.Len() != 0 {
		t.Errorf("store should be cleared after completion, has %d items", s.Len())
	}

	// The list empties without a files_cleared toast
	if len(*events) != 1 {
		t.Fatalf("expected exactly one event on completion, got %+v", *events)
	}
	if e := (*events)[0]; e.Kind != notify.KindRenameCompleted || e.Count != 2 {
		t.Errorf("expected rename_completed event, got %+v", e)
	}
	if c.LastResult() != result {
		t.Error("LastResult should return the finished batch")
	}
}

func TestConfirmPartialFailureKeepsFailedSubset(t *testing.T) {
	r := newRecordingRenamer()
	r.fail["b.png"] = errors.New("permission denied")
	s, c, events := setup(t, r, "a.txt", "b.png", "c.md")
	snap := s.Snapshot()
	for _, it := range snap.Items {
		s.Rename(it.ID, "new-"+it.Source.Name)
	}

	if err := c.RequestRename(); err != nil {
		t.Fatal(err)
	}
	result, err := c.Confirm(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if result.Succeeded != 2 || result.Failed != 1 {
		t.Fatalf("expected 2 succeeded and 1 failed, got %+v", result)
	}
	failures := result.Failures()
	if len(failures) != 1 || failures[0].Source.Name != "b.png" || failures[0].Err == nil {
		t.Errorf("unexpected failures %+v", failures)
	}

	// Succeeded items removed, failed item retained with its candidate
	if s.Len() != 1 {
		t.Fatalf("expected only the failed item to remain, got %d", s.Len())
	}
	remaining := s.Snapshot().Items[0]
	if remaining.Source.Name != "b.png" || remaining.Candidate != "new-b.png" {
		t.Errorf("unexpected remaining item %+v", remaining)
	}

	if c.State() != Confirming {
		t.Errorf("expected confirming for retry, got %s", c.State())
	}

	last := (*events)[len(*events)-1]
	if last.Kind != notify.KindRenameFailed || last.Succeeded != 2 || len(last.Failures) != 1 {
		t.Errorf("expected rename_failed event, got %+v", last)
	}
	if last.Failures[0].Reason != "permission denied" {
		t.Errorf("failure reason = %q", last.Failures[0].Reason)
	}

	// Retry only the failed subset
	delete(r.fail, "b.png")
	r.calls = map[string]string{}
	result, err = c.Confirm(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !result.OK() || len(r.calls) != 1 {
		t.Errorf("retry should rename only the failed item, calls %v", r.calls)
	}
	if c.State() != Idle || s.Len() != 0 {
		t.Errorf("expected idle and empty store after retry, state %s, %d items", c.State(), s.Len())
	}
}

func TestRunBoundedConcurrency(t *testing.T) {
	var running, peak int32
	r := RenamerFunc(func(ctx context.Context, src store.SourceFile, candidate string) error {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return nil
	})

	s := store.New(nil)
	snap := s.Initialize([]store.SourceFile{{Name: "1"}, {Name: "2"}, {Name: "3"}, {Name: "4"}, {Name: "5"}, {Name: "6"}})
	c := New(s, r, nil, Config{Workers: 2})

	result := c.Run(context.Background(), snap.Items)
	if result.Succeeded != 6 {
		t.Errorf("expected 6 successes, got %+v", result)
	}
	if peak > 2 {
		t.Errorf("expected at most 2 concurrent renames, saw %d", peak)
	}
}

func TestRunCancelledStartsNoNewItems(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int32
	r := RenamerFunc(func(ctx context.Context, src store.SourceFile, candidate string) error {
		atomic.AddInt32(&calls, 1)
		cancel()
		return nil
	})

	s := store.New(nil)
	snap := s.Initialize([]store.SourceFile{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}})
	c := New(s, r, nil, Config{Workers: 1})

	result := c.Run(ctx, snap.Items)

	if calls != 1 {
		t.Errorf("expected exactly one rename before cancellation, got %d", calls)
	}
	if result.Succeeded != 1 || result.Skipped != 3 {
		t.Errorf("expected 1 succeeded and 3 skipped, got %+v", result)
	}
	for _, f := range result.Failures() {
		if !errors.Is(f.Err, context.Canceled) {
			t.Errorf("skipped item %s should carry context.Canceled, got %v", f.ID, f.Err)
		}
	}
	if result.OK() {
		t.Error("a cancelled batch is not OK")
	}
}

func TestRunKeepsStoreOrder(t *testing.T) {
	s := store.New(nil)
	snap := s.Initialize([]store.SourceFile{{Name: "a"}, {Name: "b"}, {Name: "c"}})
	c := New(s, RenamerFunc(func(context.Context, store.SourceFile, string) error { return nil }), nil, Config{Workers: 3})

	result := c.Run(context.Background(), snap.Items)
	for i, it := range result.Items {
		if it.ID != snap.Items[i].ID {
			t.Errorf("result order mismatch at %d: %s vs %s", i, it.ID, snap.Items[i].ID)
		}
	}
}

func TestStateString(t *testing.T) {
	if Executing.String() != "executing" || OutcomeSkipped.String() != "skipped" {
		t.Error("unexpected string form")
	}
}
