package targeting

import (
	"fmt"

	"github.com/magefree/effect-engine/internal/game/effects"
	"github.com/magefree/effect-engine/internal/game/rules"
)

// SelectionMode is how a variable selector picks from its pool.
type SelectionMode string

const (
	// SelectRandom picks uniformly at random.
	SelectRandom SelectionMode = "RANDOM"
	// SelectChoice suspends evaluation until a player supplies a choice.
	SelectChoice SelectionMode = "SELECT"
)

// selection is the per-evaluation target state shared by every selector.
// "No target" and "target selected" are distinct states even when T's zero value is usable.
type selection[T effects.Targetable] struct {
	target T
	set    bool
}

// Target returns the selected target or nil.
func (s *selection[T]) Target() effects.Targetable {
	if !s.set {
		return nil
	}
	return s.target
}

// HasTarget reports whether a target is selected.
func (s *selection[T]) HasTarget() bool { return s.set }

// Clear forgets the selected target.
func (s *selection[T]) Clear() {
	var zero T
	s.target = zero
	s.set = false
}

func (s *selection[T]) assign(t T) {
	s.target = t
	s.set = true
}

// Constant targets whatever its getter returns, e.g. the scene or the source of the
// effect in resolution.
type Constant[T effects.Targetable] struct {
	selection[T]
	getter rules.Getter[effects.Context, T]
}

// NewConstant builds a constant selector around getter.
func NewConstant[T effects.Targetable](getter rules.Getter[effects.Context, T]) (*Constant[T], error) {
	if getter == nil {
		return nil, ErrNilGetter
	}
	return &Constant[T]{getter: getter}, nil
}

// MustConstant is NewConstant for statically known getters.
func MustConstant[T effects.Targetable](getter rules.Getter[effects.Context, T]) *Constant[T] {
	c, err := NewConstant(getter)
	if err != nil {
		panic(err)
	}
	return c
}

// Select succeeds when the getter yields a target that is not forbidden.
func (c *Constant[T]) Select(ctx effects.Context, forbidden effects.TargetSet) (bool, error) {
	t, err := c.getter(ctx)
	if err != nil {
		return false, err
	}
	if rules.IsNil(t) || forbidden.Contains(t) {
		return false, nil
	}
	c.assign(t)
	return true, nil
}

// Clone returns an unselected selector around the same getter.
func (c *Constant[T]) Clone() effects.TargetSelector {
	return &Constant[T]{getter: c.getter}
}

// SetTarget accepts only the instance the getter currently returns.
func (c *Constant[T]) SetTarget(ctx effects.Context, target effects.Targetable) error {
	t, err := c.getter(ctx)
	if err != nil {
		return err
	}
	if rules.IsNil(t) || effects.Targetable(t) != target {
		return fmt.Errorf("%w: %v is not the constant target", effects.ErrInvalidTarget, target)
	}
	c.assign(t)
	return nil
}

// Passive never selects on its own; a deployer pushes its target.
type Passive[T effects.Targetable] struct {
	selection[T]
	validator Validator[T]
}

// NewPassive builds a passive selector accepting targets of class T.
func NewPassive[T effects.Targetable]() *Passive[T] {
	return &Passive[T]{}
}

// Select always fails: a passive selector must be handed its target.
func (p *Passive[T]) Select(effects.Context, effects.TargetSet) (bool, error) {
	return false, ErrPassiveSelect
}

// Clone returns an unselected passive selector.
func (p *Passive[T]) Clone() effects.TargetSelector {
	return &Passive[T]{validator: p.validator}
}

// SetTarget validates class membership only.
func (p *Passive[T]) SetTarget(_ effects.Context, target effects.Targetable) error {
	t, err := p.validator.Class(target)
	if err != nil {
		return err
	}
	p.assign(t)
	return nil
}
