package scene

import "sync"

// highlight records the advisory targeting notifications a UI would render.
type highlight struct {
	mu        sync.Mutex
	active    bool
	selected  bool
	selection int
}

func (h *highlight) OnActivated() {
	h.mu.Lock()
	h.active = true
	h.mu.Unlock()
}

func (h *highlight) OnDeactivated() {
	h.mu.Lock()
	h.active = false
	h.mu.Unlock()
}

func (h *highlight) OnSelected() {
	h.mu.Lock()
	h.selected = true
	h.selection++
	h.mu.Unlock()
}

func (h *highlight) OnDeselected() {
	h.mu.Lock()
	h.selected = false
	h.mu.Unlock()
}

// Highlighted reports whether the object is in the pool currently offered.
func (h *highlight) Highlighted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

// Selected reports whether the object is the target of an unresolved effect.
func (h *highlight) Selected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.selected
}

// Selections counts how often the object has been selected.
func (h *highlight) Selections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.selection
}
