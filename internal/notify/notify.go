package notify

import (
	"fmt"
	"strings"
	"time"
)

// Kind identifies what happened
type Kind string

const (
	KindFilesAdded      Kind = "files_added"
	KindFilesCleared    Kind = "files_cleared"
	KindRenameCompleted Kind = "rename_completed"
	KindRenameFailed    Kind = "rename_failed"
)

// Failure describes one item the rename operation rejected
type Failure struct {
	ID        string
	Name      string // original file name
	Candidate string
	Reason    string
}

// Event is a structured notification for the host to render as a toast
type Event struct {
	Kind      Kind
	Count     int // files added, or files renamed on completion
	Succeeded int // renamed items in a failed batch
	Failures  []Failure
	Time      time.Time
}

// Sink receives events
type Sink interface {
	Notify(Event)
}

// FuncSink adapts a function to Sink
type FuncSink func(Event)

// Notify calls f
func (f FuncSink) Notify(e Event) { f(e) }

// ChanSink forwards events to a channel.
// Sends block, so the channel must be drained or buffered.
type ChanSink chan<- Event

// Notify sends e on the channel
func (c ChanSink) Notify(e Event) { c <- e }

// Send delivers e to sink when sink is non-nil
func Send(sink Sink, e Event) {
	if sink == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	sink.Notify(e)
}

func FilesAdded(n int) Event {
	return Event{Kind: KindFilesAdded, Count: n}
}

func FilesCleared() Event {
	return Event{Kind: KindFilesCleared}
}

func RenameCompleted(n int) Event {
	return Event{Kind: KindRenameCompleted, Count: n}
}

func RenameFailed(succeeded int, failures []Failure) Event {
	return Event{Kind: KindRenameFailed, Succeeded: succeeded, Failures: failures}
}

// Title is the toast heading
func (e Event) Title() string {
	switch e.Kind {
	case KindFilesAdded:
		return "Files added"
	case KindFilesCleared:
		return "Files cleared"
	case KindRenameCompleted:
		return "Rename completed"
	case KindRenameFailed:
		return "Rename failed"
	default:
		return string(e.Kind)
	}
}

// Description is the toast body
func (e Event) Description() string {
	switch e.Kind {
	case KindFilesAdded:
		return fmt.Sprintf("%d files added to rename list", e.Count)
	case KindFilesCleared:
		return "All files removed from the list"
	case KindRenameCompleted:
		return fmt.Sprintf("Successfully renamed %d files", e.Count)
	case KindRenameFailed:
		reasons := make([]string, 0, len(e.Failures))
		for _, f := range e.Failures {
			reasons = append(reasons, fmt.Sprintf("%s: %s", f.Name, f.Reason))
		}
		return fmt.Sprintf("%d renamed, %d failed (%s)", e.Succeeded, len(e.Failures), strings.Join(reasons, "; "))
	default:
		return ""
	}
}

// IsError reports whether the event should render as a destructive toast
func (e Event) IsError() bool {
	return e.Kind == KindRenameFailed
}
