package orchestrator

import (
	"sync"
	"testing"

	"github.com/ShayCichocki/panel/internal/logging"
)

func TestEventEmitter_DeliversInOrder(t *testing.T) {
	e := NewEventEmitter(4, logging.Discard())
	e.Emit(OrchestratorEvent{Type: EventStageStarted, Stage: StageAssess})
	e.Emit(OrchestratorEvent{Type: EventStageCompleted, Stage: StageAssess})
	e.Close()

	var got []EventType
	for ev := range e.Events() {
		if ev.Timestamp.IsZero() {
			t.Error("timestamp not set")
		}
		got = append(got, ev.Type)
	}
	if len(got) != 2 || got[0] != EventStageStarted || got[1] != EventStageCompleted {
		t.Errorf("events = %v", got)
	}
}

func TestEventEmitter_DropsWhenFull(t *testing.T) {
	e := NewEventEmitter(1, logging.Discard())
	e.Emit(OrchestratorEvent{Type: EventTaskStarted})
	e.Emit(OrchestratorEvent{Type: EventTaskCompleted})

	if got := e.DroppedCount(); got != 1 {
		t.Errorf("DroppedCount() = %d, want 1", got)
	}
}

func TestEventEmitter_CloseTwice(t *testing.T) {
	e := NewEventEmitter(1, nil)
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Close()
		}()
	}
	wg.Wait()
}

func TestEventEmitter_NilDiscards(t *testing.T) {
	var e *EventEmitter
	e.Emit(OrchestratorEvent{Type: EventRunDone})
}
