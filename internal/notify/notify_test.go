package notify

import (
	"strings"
	"testing"
)

func TestSendNilSink(t *testing.T) {
	// Must not panic
	Send(nil, FilesAdded(3))
}

func TestSendStampsTime(t *testing.T) {
	var got Event
	Send(FuncSink(func(e Event) { got = e }), FilesCleared())

	if got.Kind != KindFilesCleared {
		t.Errorf("expected files_cleared, got %s", got.Kind)
	}
	if got.Time.IsZero() {
		t.Error("expected Send to stamp the event time")
	}
}

func TestChanSink(t *testing.T) {
	ch := make(chan Event, 1)
	Send(ChanSink(ch), RenameCompleted(2))

	e := <-ch
	if e.Kind != KindRenameCompleted || e.Count != 2 {
		t.Errorf("unexpected event %+v", e)
	}
}

func TestEventText(t *testing.T) {
	tests := []struct {
		event     Event
		wantTitle string
		wantDesc  string
	}{
		{FilesAdded(5), "Files added", "5 files added to rename list"},
		{FilesCleared(), "Files cleared", "All files removed from the list"},
		{RenameCompleted(4), "Rename completed", "Successfully renamed 4 files"},
	}

	for _, tt := range tests {
		if got := tt.event.Title(); got != tt.wantTitle {
			t.Errorf("Title() = %q, want %q", got, tt.wantTitle)
		}
		if got := tt.event.Description(); got != tt.wantDesc {
			t.Errorf("Description() = %q, want %q", got, tt.wantDesc)
		}
	}
}

func TestRenameFailedDescription(t *testing.T) {
	e := RenameFailed(1, []Failure{
		{ID: "file-1-b.png", Name: "b.png", Candidate: "c.png", Reason: "target exists"},
	})

	if !e.IsError() {
		t.Error("rename failure should be an error toast")
	}

	desc := e.Description()
	for _, want := range []string{"1 renamed", "1 failed", "b.png: target exists"} {
		if !strings.Contains(desc, want) {
			t.Errorf("description %q missing %q", desc, want)
		}
	}
}
