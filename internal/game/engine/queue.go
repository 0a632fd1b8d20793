package engine

import (
	"slices"
	"sync"

	"github.com/magefree/effect-engine/internal/game/effects"
)

// resolutionQueue is the double-ended queue of effects waiting to resolve. Effects are
// taken from the front; ENQUEUE appends to the back and ENQUEUE_ON_TOP inserts at the
// front.
type resolutionQueue struct {
	mu    sync.Mutex
	items []effects.Effect
}

func newResolutionQueue(capacity int) *resolutionQueue {
	if capacity < 0 {
		capacity = 0
	}
	return &resolutionQueue{items: make([]effects.Effect, 0, capacity)}
}

// PushBack appends effect.
func (q *resolutionQueue) PushBack(effect effects.Effect) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, effect)
}

// PushFront inserts effect so it is taken next.
func (q *resolutionQueue) PushFront(effect effects.Effect) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = slices.Insert(q.items, 0, effect)
}

// PopFront removes and returns the next effect.
func (q *resolutionQueue) PopFront() (effects.Effect, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	effect := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return effect, true
}

// Contains reports whether effect is waiting in the queue.
func (q *resolutionQueue) Contains(effect effects.Effect) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Contains(q.items, effect)
}

// Len returns the number of queued effects.
func (q *resolutionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// List returns a copy of the queue, next effect first.
func (q *resolutionQueue) List() []effects.Effect {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.items)
}

// Clear drops every queued effect and returns them.
func (q *resolutionQueue) Clear() []effects.Effect {
	q.mu.Lock()
	defer q.mu.Unlock()
	dropped := q.items
	q.items = make([]effects.Effect, 0, cap(dropped))
	return dropped
}
