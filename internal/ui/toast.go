package ui

import (
	"strings"

	"github.com/Nomadcxx/namesink/internal/notify"
)

// ToastLog keeps the most recent notifications for display.
// It is a notify.Sink; the store and coordinator write to it from the Update goroutine.
type ToastLog struct {
	max    int
	events []notify.Event
}

// NewToastLog keeps at most max events
func NewToastLog(max int) *ToastLog {
	if max <= 0 {
		max = 3
	}
	return &ToastLog{max: max}
}

// Notify records e, dropping the oldest event when full
func (t *ToastLog) Notify(e notify.Event) {
	t.events = append(t.events, e)
	if len(t.events) > t.max {
		t.events = t.events[len(t.events)-t.max:]
	}
}

// Events returns the retained events, oldest first
func (t *ToastLog) Events() []notify.Event {
	return append([]notify.Event(nil), t.events...)
}

// Render draws the toasts, newest last
func (t *ToastLog) Render() string {
	if len(t.events) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, e := range t.events {
		line := e.Title() + ": " + e.Description()
		if e.IsError() {
			sb.WriteString(FormatStatusFail(line))
		} else {
			sb.WriteString(FormatStatusOK(line))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
