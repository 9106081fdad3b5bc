package orchestrator

import (
	"fmt"
	"sync"
)

// ProgressReporter emits progress events through a buffered channel.
type ProgressReporter struct {
	ch chan ProgressEvent
}

// NewProgressReporter creates a ProgressReporter with a buffered channel of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan ProgressEvent, 64),
	}
}

// Emit sends a progress event in a non-blocking fashion.
// If the channel is full, the event is silently dropped.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	select {
	case pr.ch <- event:
	default:
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel. Pipeline.Run never emits after it
// returns, so Close is safe once Run has returned.
func (pr *ProgressReporter) Close() {
	close(pr.ch)
}

// emitter delivers a run's events to its callback, one at a time, and goes
// silent once stopped so stragglers cannot report into a finished run.
type emitter struct {
	mu      sync.Mutex
	runID   string
	fn      func(ProgressEvent)
	stopped bool
}

func newEmitter(runID string, fn func(ProgressEvent)) *emitter {
	return &emitter{runID: runID, fn: fn}
}

func (e *emitter) emit(ev ProgressEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.send(ev)
}

// send delivers ev; the caller holds mu.
func (e *emitter) send(ev ProgressEvent) {
	if e.stopped || e.fn == nil {
		return
	}
	ev.RunID = e.runID
	e.fn(ev)
}

func (e *emitter) marker(m Marker, msg string) {
	e.emit(ProgressEvent{Marker: m, Message: msg})
}

// finish emits the terminal marker m and silences the emitter, so m is
// always the last event a run reports.
func (e *emitter) finish(m Marker, msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.send(ProgressEvent{Marker: m, Message: msg})
	e.stopped = true
}

func (e *emitter) stop() {
	e.mu.Lock()
	e.stopped = true
	e.mu.Unlock()
}

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	if event.Section == "" {
		return formatMarker(event)
	}
	switch event.Status {
	case ProgressPending:
		return fmt.Sprintf("  ○ %s (pending)", event.Section)
	case ProgressWorking:
		return fmt.Sprintf("  ● %s...", event.Section)
	case ProgressComplete:
		return fmt.Sprintf("  ✓ %s complete", event.Section)
	case ProgressFailed:
		return fmt.Sprintf("  ✗ %s failed: %s", event.Section, event.Message)
	default:
		return fmt.Sprintf("  ? %s (unknown status)", event.Section)
	}
}

func formatMarker(event ProgressEvent) string {
	id := event.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	switch event.Marker {
	case MarkerScopeCheck:
		return fmt.Sprintf("[%s] checking scope...", id)
	case MarkerRejected:
		return fmt.Sprintf("[%s] ✗ out of scope: %s", id, event.Message)
	case MarkerGenerating:
		return fmt.Sprintf("[%s] generating sections...", id)
	case MarkerConsolidating:
		return fmt.Sprintf("[%s] consolidating tutorial...", id)
	case MarkerDone:
		return fmt.Sprintf("[%s] ✓ done", id)
	case MarkerError:
		return fmt.Sprintf("[%s] ✗ error: %s", id, event.Message)
	default:
		return fmt.Sprintf("[%s] %s", id, event.Marker)
	}
}
