package effects

import (
	"fmt"
	"slices"
	"sync"
)

// Attachments is a reusable persistent effect set for holders. The zero value is ready
// to use. Effects are listed in attachment order.
type Attachments struct {
	mu      sync.RWMutex
	effects []*PersistentEffect
}

// Attach adds p to the set on behalf of owner and makes owner the source of p and of
// every effect p owns.
func (a *Attachments) Attach(owner Holder, p *PersistentEffect) error {
	if p == nil {
		return fmt.Errorf("%w: nil persistent effect", ErrNotAttached)
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if slices.Contains(a.effects, p) {
		return fmt.Errorf("%w: %s", ErrAlreadyAttached, p.Description())
	}
	if p.holder != nil && p.holder != owner {
		return fmt.Errorf("%w: %s belongs to another holder", ErrAlreadyAttached, p.Description())
	}
	a.effects = append(a.effects, p)
	p.holder = owner
	p.ReassignSource(owner)
	return nil
}

// Detach removes p from the set.
func (a *Attachments) Detach(p *PersistentEffect) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := slices.Index(a.effects, p)
	if idx < 0 {
		if p == nil {
			return fmt.Errorf("%w: nil persistent effect", ErrNotAttached)
		}
		return fmt.Errorf("%w: %s", ErrNotAttached, p.Description())
	}
	a.effects = slices.Delete(a.effects, idx, idx+1)
	p.holder = nil
	return nil
}

// List returns a copy of the attached effects.
func (a *Attachments) List() []*PersistentEffect {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.effects)
}

// Len returns the number of attached effects.
func (a *Attachments) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.effects)
}
