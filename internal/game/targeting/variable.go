package targeting

import (
	"fmt"

	"github.com/magefree/effect-engine/internal/game/effects"
	"github.com/magefree/effect-engine/internal/game/rules"
)

// Variable picks a target from the scene: every targetable of class T, minus the
// forbidden set, minus anything failing the filter.
type Variable[T effects.Targetable] struct {
	selection[T]
	mode      SelectionMode
	validator Validator[T]
}

// NewVariable builds a variable selector. filter may be nil.
func NewVariable[T effects.Targetable](mode SelectionMode, filter rules.Condition[effects.Context, T]) (*Variable[T], error) {
	if mode != SelectRandom && mode != SelectChoice {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	return &Variable[T]{mode: mode, validator: Validator[T]{Filter: filter}}, nil
}

// Mode returns the selection mode.
func (v *Variable[T]) Mode() SelectionMode { return v.mode }

// Clone returns an unselected selector with the same mode and filter.
func (v *Variable[T]) Clone() effects.TargetSelector {
	return &Variable[T]{mode: v.mode, validator: v.validator}
}

// Pool returns the current candidate pool.
func (v *Variable[T]) Pool(ctx effects.Context, forbidden effects.TargetSet) ([]T, error) {
	return v.validator.Pool(ctx, forbidden)
}

// Select fails without suspending when the pool is empty. In SELECT mode it blocks
// until the targeting manager receives a choice.
func (v *Variable[T]) Select(ctx effects.Context, forbidden effects.TargetSet) (bool, error) {
	pool, err := v.Pool(ctx, forbidden)
	if err != nil {
		return false, err
	}
	if len(pool) == 0 {
		return false, nil
	}

	targeting := ctx.Targeting()
	if targeting == nil {
		return false, ErrNoTargeting
	}
	candidates := toTargetables(pool)
	targeting.Activate(candidates)
	defer targeting.Deactivate(candidates)

	var chosen effects.Targetable
	switch v.mode {
	case SelectRandom:
		chosen = targeting.PickRandom(candidates)
	case SelectChoice:
		chosen, err = targeting.AwaitChoice(ctx, candidates)
		if err != nil {
			return false, err
		}
	}
	if rules.IsNil(chosen) {
		return false, ErrSpuriousWake
	}
	t, ok := chosen.(T)
	if !ok || !containsTargetable(candidates, chosen) {
		return false, fmt.Errorf("%w: %v", ErrChoiceNotInPool, chosen)
	}
	v.assign(t)
	return true, nil
}

// SetTarget validates class membership and the filter.
func (v *Variable[T]) SetTarget(ctx effects.Context, target effects.Targetable) error {
	t, err := v.validator.Validate(ctx, target)
	if err != nil {
		return err
	}
	v.assign(t)
	return nil
}
