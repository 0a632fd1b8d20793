package engine

import (
	"fmt"
	"slices"
	"sync"

	"github.com/magefree/effect-engine/internal/game/effects"
)

// frameStack tracks which effects are resolving, innermost last. Pushing a frame saves
// the outer in-resolution effect and popping restores it.
type frameStack struct {
	mu       sync.RWMutex
	frames   []effects.Effect
	maxDepth int
}

func newFrameStack(maxDepth int) *frameStack {
	return &frameStack{
		frames:   make([]effects.Effect, 0, 8),
		maxDepth: maxDepth,
	}
}

// Push marks effect as the innermost resolving effect.
func (fs *frameStack) Push(effect effects.Effect) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.maxDepth > 0 && len(fs.frames) >= fs.maxDepth {
		return fmt.Errorf("%w (%d) resolving %s", ErrMaxDepth, fs.maxDepth, effect.Description())
	}
	fs.frames = append(fs.frames, effect)
	return nil
}

// Pop ends the innermost frame, which must belong to effect.
func (fs *frameStack) Pop(effect effects.Effect) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if len(fs.frames) == 0 {
		return fmt.Errorf("%w: no effect resolving", ErrFrameMismatch)
	}
	current := fs.frames[len(fs.frames)-1]
	if current != effect {
		return fmt.Errorf("%w: expected %s, got %s", ErrFrameMismatch, current.Description(), effect.Description())
	}
	fs.frames[len(fs.frames)-1] = nil
	fs.frames = fs.frames[:len(fs.frames)-1]
	return nil
}

// Current returns the innermost resolving effect, or nil.
func (fs *frameStack) Current() effects.Effect {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if len(fs.frames) == 0 {
		return nil
	}
	return fs.frames[len(fs.frames)-1]
}

// Depth returns the number of open frames.
func (fs *frameStack) Depth() int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return len(fs.frames)
}

// Contains reports whether effect is resolving at any depth.
func (fs *frameStack) Contains(effect effects.Effect) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return slices.Contains(fs.frames, effect)
}

// List returns the open frames, outermost first.
func (fs *frameStack) List() []effects.Effect {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return slices.Clone(fs.frames)
}
