package events

import (
	"errors"
	"testing"
)

func TestInMemoryEventStore_AppendAndRead(t *testing.T) {
	store := NewInMemoryEventStore(nil)

	_ = store.AppendEvent("run-1", NewEvent(RunStartedEvent, "run-1", RunStarted{RunID: "run-1"}))
	_ = store.AppendEvent("run-1", NewEvent(DatasetMergedEvent, "run-1", DatasetMerged{MergedRows: 3}))
	_ = store.AppendEvent("run-2", NewEvent(RunStartedEvent, "run-2", RunStarted{RunID: "run-2"}))

	stream, err := store.ReadEvents("run-1", 2)
	if err != nil {
		t.Fatalf("Failed to read stream: %v", err)
	}
	if len(stream) != 1 || stream[0].Version() != 2 || stream[0].Type() != DatasetMergedEvent {
		t.Errorf("Expected merged event at version 2, got %+v", stream)
	}

	all, _ := store.ReadAllEvents(1)
	if len(all) != 2 {
		t.Errorf("Expected 2 events from position 1, got %d", len(all))
	}
}

func TestInMemoryEventStore_Subscribe(t *testing.T) {
	store := NewInMemoryEventStore(nil)

	var typed, wildcard []string
	unsubscribe := store.Subscribe([]string{RunFailedEvent}, HandlerFunc(func(e Event) error {
		typed = append(typed, e.Type())
		return errors.New("handler errors are logged, not returned")
	}))
	store.Subscribe([]string{AllEvents}, HandlerFunc(func(e Event) error {
		wildcard = append(wildcard, e.Type())
		return nil
	}))

	if err := store.AppendEvent("r", NewEvent(RunFailedEvent, "r", RunFailed{RunID: "r"})); err != nil {
		t.Fatalf("Expected handler error to be swallowed, got %v", err)
	}
	unsubscribe()
	_ = store.AppendEvent("r", NewEvent(RunFailedEvent, "r", RunFailed{RunID: "r"}))

	if len(typed) != 1 {
		t.Errorf("Expected 1 typed delivery before unsubscribe, got %d", len(typed))
	}
	if len(wildcard) != 2 {
		t.Errorf("Expected 2 wildcard deliveries, got %d", len(wildcard))
	}
}
