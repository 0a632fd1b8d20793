package rules

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType indicates the category of a rules event.
type EventType string

const (
	// Engine lifecycle events. These are emitted for observers only; nothing a
	// listener does can change the outcome of a resolution.
	EventEvaluated      EventType = "EVALUATED"
	EventDropped        EventType = "DROPPED"
	EventTargetSelected EventType = "TARGET_SELECTED"
	EventAwaitingTarget EventType = "AWAITING_TARGET"
	EventEnqueued       EventType = "ENQUEUED"
	EventResolving      EventType = "RESOLVING"
	EventInterrupting   EventType = "INTERRUPTING"
	EventResolved       EventType = "RESOLVED"

	// Game notifications routed through the pipeline as zero-action effects so
	// persistent effects can key off them.
	EventTurnStarted    EventType = "TURN_STARTED"
	EventTurnEnded      EventType = "TURN_ENDED"
	EventCardPlayed     EventType = "CARD_PLAYED"
	EventActorDefeated  EventType = "ACTOR_DEFEATED"
	EventEncounterBegan EventType = "ENCOUNTER_BEGAN"
	EventCustom         EventType = "CUSTOM_EVENT"
)

// DropReason explains why an evaluated effect did not happen.
type DropReason string

const (
	DropTriggerInactive DropReason = "trigger_inactive"
	DropNoTarget        DropReason = "no_target"
)

// Event describes something that happened to an effect during evaluation or resolution.
type Event struct {
	Type        EventType
	ID          string // Unique event ID
	EffectID    string // ID of the effect concerned
	Description string // Human-readable description of the effect
	Kind        string // Effect kind
	Source      any    // Origin of the effect, if any
	Target      any    // Target of the effect, if any
	Stage       string // Activation stage for interrupting persistent effects
	Reason      DropReason
	Depth       int // Resolution depth at the time of the event
	Timestamp   time.Time
}

// NewEvent creates an event with ID and timestamp populated.
func NewEvent(eventType EventType, effectID, description string) Event {
	return Event{
		Type:        eventType,
		ID:          uuid.NewString(),
		EffectID:    effectID,
		Description: description,
		Timestamp:   time.Now(),
	}
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

type subscription struct {
	handle    int
	eventType EventType // empty for all events
	callback  Listener
}

// EventBus provides a synchronous publish/subscribe implementation with type filtering.
// Listeners are invoked in subscription order.
type EventBus struct {
	mu         sync.RWMutex
	subs       []subscription
	nextHandle int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	return bus.add("", listener)
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, listener Listener) int {
	return bus.add(eventType, listener)
}

func (bus *EventBus) add(eventType EventType, listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.subs = append(bus.subs, subscription{handle: handle, eventType: eventType, callback: listener})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i := range bus.subs {
		if bus.subs[i].handle == handle {
			bus.subs = append(bus.subs[:i], bus.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to all matching listeners synchronously. Listeners may
// subscribe or unsubscribe while being called.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	subs := make([]subscription, len(bus.subs))
	copy(subs, bus.subs)
	bus.mu.RUnlock()

	for _, sub := range subs {
		if sub.eventType == "" || sub.eventType == event.Type {
			sub.callback(event)
		}
	}
}
