package rules

import "testing"

func TestEventBusSubscribeTyped(t *testing.T) {
	bus := NewEventBus()

	resolvedCount := 0
	droppedCount := 0

	handle1 := bus.SubscribeTyped(EventResolved, func(e Event) {
		resolvedCount++
	})

	handle2 := bus.SubscribeTyped(EventDropped, func(e Event) {
		droppedCount++
	})

	bus.Publish(NewEvent(EventResolved, "effect1", "Deal 1 damage"))
	if resolvedCount != 1 {
		t.Fatalf("expected resolved count 1, got %d", resolvedCount)
	}
	if droppedCount != 0 {
		t.Fatalf("expected dropped count 0, got %d", droppedCount)
	}

	bus.Publish(NewEvent(EventDropped, "effect2", "Heal 2"))
	if droppedCount != 1 {
		t.Fatalf("expected dropped count 1, got %d", droppedCount)
	}

	// Unsubscribe resolved listener
	bus.Unsubscribe(handle1)

	bus.Publish(NewEvent(EventResolved, "effect3", "Deal 1 damage"))
	if resolvedCount != 1 {
		t.Fatalf("expected resolved count still 1 after unsubscribe, got %d", resolvedCount)
	}

	bus.Unsubscribe(handle2)
	bus.Publish(NewEvent(EventDropped, "effect4", "Heal 2"))
	if droppedCount != 1 {
		t.Fatalf("expected dropped count still 1 after unsubscribe, got %d", droppedCount)
	}
}

func TestEventBusSubscribeAllInOrder(t *testing.T) {
	bus := NewEventBus()

	var order []string
	bus.Subscribe(func(e Event) { order = append(order, "first:"+string(e.Type)) })
	bus.SubscribeTyped(EventEnqueued, func(e Event) { order = append(order, "typed") })
	bus.Subscribe(func(e Event) { order = append(order, "last:"+string(e.Type)) })

	bus.Publish(NewEvent(EventEnqueued, "effect1", ""))
	bus.Publish(NewEvent(EventResolving, "effect1", ""))

	expected := []string{
		"first:ENQUEUED", "typed", "last:ENQUEUED",
		"first:RESOLVING", "last:RESOLVING",
	}
	if len(order) != len(expected) {
		t.Fatalf("expected %d deliveries, got %d (%v)", len(expected), len(order), order)
	}
	for i := range expected {
		if order[i] != expected[i] {
			t.Fatalf("delivery %d: expected %s, got %s", i, expected[i], order[i])
		}
	}
}

func TestEventBusNilListener(t *testing.T) {
	bus := NewEventBus()
	if handle := bus.Subscribe(nil); handle != -1 {
		t.Fatalf("expected -1 handle for nil listener, got %d", handle)
	}
}

func TestEventBusUnsubscribeDuringPublish(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	var handle int
	handle = bus.Subscribe(func(e Event) {
		calls++
		bus.Unsubscribe(handle)
	})

	bus.Publish(NewEvent(EventEvaluated, "effect1", ""))
	bus.Publish(NewEvent(EventEvaluated, "effect1", ""))
	if calls != 1 {
		t.Fatalf("expected listener to run once, got %d", calls)
	}
}

func TestNewEventPopulatesIdentity(t *testing.T) {
	a := NewEvent(EventResolved, "effect1", "desc")
	b := NewEvent(EventResolved, "effect1", "desc")
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected unique event IDs, got %q and %q", a.ID, b.ID)
	}
	if a.Timestamp.IsZero() {
		t.Fatalf("expected timestamp to be set")
	}
}
