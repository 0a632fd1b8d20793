package effects

import (
	"fmt"

	"github.com/magefree/effect-engine/internal/game/rules"
)

// Subject getters read live from the resolution context. Each fails with a wrapped
// rules.ErrNoSubject when its subject does not exist right now.

// InResolution returns the innermost effect in resolution.
var InResolution rules.Getter[Context, Effect] = func(ctx Context) (Effect, error) {
	e := ctx.InResolution()
	if e == nil {
		return nil, fmt.Errorf("%w: no effect in resolution", rules.ErrNoSubject)
	}
	return e, nil
}

// InEvaluation returns the effect being evaluated.
var InEvaluation rules.Getter[Context, Effect] = func(ctx Context) (Effect, error) {
	e := ctx.InEvaluation()
	if e == nil {
		return nil, fmt.Errorf("%w: no effect in evaluation", rules.ErrNoSubject)
	}
	return e, nil
}

// ResolvingSource returns the source of the effect in resolution.
var ResolvingSource rules.Getter[Context, any] = func(ctx Context) (any, error) {
	e, err := InResolution(ctx)
	if err != nil {
		return nil, err
	}
	if e.Source() == nil {
		return nil, fmt.Errorf("%w: %s has no source", rules.ErrNoSubject, e.Description())
	}
	return e.Source(), nil
}

// ResolvingTarget returns the target of the effect in resolution.
var ResolvingTarget rules.Getter[Context, Targetable] = func(ctx Context) (Targetable, error) {
	e, err := InResolution(ctx)
	if err != nil {
		return nil, err
	}
	if !e.HasTarget() {
		return nil, fmt.Errorf("%w: %s has no target", rules.ErrNoSubject, e.Description())
	}
	return e.Target(), nil
}

// ResolvingValueEffect returns the effect in resolution if it is a value effect.
var ResolvingValueEffect rules.Getter[Context, *ValueEffect] = func(ctx Context) (*ValueEffect, error) {
	e, err := InResolution(ctx)
	if err != nil {
		return nil, err
	}
	v, ok := e.(*ValueEffect)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %s, not a value effect", rules.ErrNoSubject, e.Description(), e.Kind())
	}
	return v, nil
}

// ResolvingValue returns a getter reading the value of the value effect in resolution.
func ResolvingValue(state ValueState) rules.Getter[Context, int] {
	return func(ctx Context) (int, error) {
		v, err := ResolvingValueEffect(ctx)
		if err != nil {
			return 0, err
		}
		return v.Value(ctx, state)
	}
}

// EvaluatingSource returns the source of the effect being evaluated.
var EvaluatingSource rules.Getter[Context, any] = func(ctx Context) (any, error) {
	e, err := InEvaluation(ctx)
	if err != nil {
		return nil, err
	}
	if e.Source() == nil {
		return nil, fmt.Errorf("%w: %s has no source", rules.ErrNoSubject, e.Description())
	}
	return e.Source(), nil
}

// SceneGetter returns the scene as a target.
var SceneGetter rules.Getter[Context, Targetable] = func(ctx Context) (Targetable, error) {
	s := ctx.Scene()
	if s == nil {
		return nil, fmt.Errorf("%w: no scene", rules.ErrNoSubject)
	}
	return s, nil
}
