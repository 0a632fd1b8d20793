package targeting

import (
	"fmt"

	"github.com/magefree/effect-engine/internal/game/effects"
	"github.com/magefree/effect-engine/internal/game/rules"
)

// Validator checks targets against a declared class T and an optional filter.
type Validator[T effects.Targetable] struct {
	Filter rules.Condition[effects.Context, T]
}

// Class checks that target is non-nil and of class T.
func (v Validator[T]) Class(target effects.Targetable) (T, error) {
	var zero T
	if rules.IsNil(target) {
		return zero, fmt.Errorf("%w: nil target", effects.ErrInvalidTarget)
	}
	t, ok := target.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %T is not a %T", effects.ErrInvalidTarget, target, zero)
	}
	return t, nil
}

// Admit reports whether candidate passes the filter. No filter admits everything.
func (v Validator[T]) Admit(ctx effects.Context, candidate T) (bool, error) {
	if v.Filter == nil {
		return true, nil
	}
	return v.Filter.IsFulfilled(ctx, candidate)
}

// Validate checks class membership and the filter.
func (v Validator[T]) Validate(ctx effects.Context, target effects.Targetable) (T, error) {
	t, err := v.Class(target)
	if err != nil {
		return t, err
	}
	ok, err := v.Admit(ctx, t)
	if err != nil {
		return t, err
	}
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %v fails the target filter", effects.ErrInvalidTarget, target)
	}
	return t, nil
}

// Pool lists every targetable of class T in the scene that is not forbidden and
// passes the filter, in scene order.
func (v Validator[T]) Pool(ctx effects.Context, forbidden effects.TargetSet) ([]T, error) {
	scene := ctx.Scene()
	if scene == nil {
		return nil, fmt.Errorf("%w: no scene", rules.ErrNoSubject)
	}
	var pool []T
	for _, candidate := range scene.Targetables() {
		t, ok := candidate.(T)
		if !ok || rules.IsNil(candidate) || forbidden.Contains(candidate) {
			continue
		}
		admitted, err := v.Admit(ctx, t)
		if err != nil {
			return nil, err
		}
		if admitted {
			pool = append(pool, t)
		}
	}
	return pool, nil
}

func toTargetables[T effects.Targetable](pool []T) []effects.Targetable {
	out := make([]effects.Targetable, len(pool))
	for i, t := range pool {
		out[i] = t
	}
	return out
}

func containsTargetable(pool []effects.Targetable, target effects.Targetable) bool {
	for _, t := range pool {
		if t == target {
			return true
		}
	}
	return false
}
