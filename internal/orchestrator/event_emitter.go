package orchestrator

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// EventEmitter delivers orchestrator events to a single subscriber. A slow
// subscriber loses events rather than blocking the pipeline.
type EventEmitter struct {
	events       chan OrchestratorEvent
	droppedCount atomic.Uint64
	logger       *slog.Logger
	closeOnce    sync.Once
}

// NewEventEmitter creates a new EventEmitter with the given buffer size.
func NewEventEmitter(bufferSize int, logger *slog.Logger) *EventEmitter {
	return &EventEmitter{
		events: make(chan OrchestratorEvent, bufferSize),
		logger: logger,
	}
}

// Emit sends an event, waiting up to 100ms for buffer space before dropping
// it. A nil emitter discards events.
func (e *EventEmitter) Emit(event OrchestratorEvent) {
	if e == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case e.events <- event:
		return
	default:
	}

	select {
	case e.events <- event:
	case <-time.After(100 * time.Millisecond):
		count := e.droppedCount.Add(1)
		if count%10 == 1 && e.logger != nil {
			e.logger.Warn("event channel full, dropped event", "dropped_total", count, "type", event.Type)
		}
	}
}

// DroppedCount returns the total number of events that have been dropped.
func (e *EventEmitter) DroppedCount() uint64 {
	return e.droppedCount.Load()
}

// Events returns a read-only channel of events.
func (e *EventEmitter) Events() <-chan OrchestratorEvent {
	return e.events
}

// Close closes the events channel. It is safe to call more than once.
func (e *EventEmitter) Close() {
	e.closeOnce.Do(func() { close(e.events) })
}
