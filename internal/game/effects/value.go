package effects

import (
	"fmt"

	"github.com/magefree/effect-engine/internal/game/rules"
)

// Generator produces the value carried by a value effect. It is read live.
type Generator func(ctx Context) (int, error)

// Action applies a value to a target, e.g. by dealing damage.
type Action func(ctx Context, target Targetable, value int) error

// Modifier transforms a generated value.
type Modifier func(value int) int

// ValueState selects how a value effect's value is read.
type ValueState int

const (
	// ValueOriginal is the value sampled when the target was acquired.
	ValueOriginal ValueState = iota
	// ValueUnmodified re-invokes the generator and ignores modifiers.
	ValueUnmodified
	// ValueModified re-invokes the generator and applies every modifier in order.
	ValueModified
)

func (s ValueState) String() string {
	switch s {
	case ValueOriginal:
		return "ORIGINAL"
	case ValueUnmodified:
		return "UNMODIFIED"
	case ValueModified:
		return "MODIFIED"
	default:
		return fmt.Sprintf("ValueState(%d)", int(s))
	}
}

// ValueEffect applies a numeric value to its target. Modifiers added while it is in
// resolution change what its action receives.
type ValueEffect struct {
	Base
	tag       string
	generate  Generator
	action    Action
	original  int
	captured  bool
	modifiers []Modifier
}

// NewValue builds a value effect. tag names the action ("damage", "heal") so that
// conditions can tell value effects apart.
func NewValue(tag string, generate Generator, action Action, spec Spec) (*ValueEffect, error) {
	if generate == nil || action == nil {
		return nil, ErrNilAction
	}
	b, err := newBase(spec)
	if err != nil {
		return nil, err
	}
	return &ValueEffect{Base: b, tag: tag, generate: generate, action: action}, nil
}

// Fixed returns a generator that always yields n.
func Fixed(n int) Generator {
	return func(Context) (int, error) { return n, nil }
}

func (v *ValueEffect) Kind() Kind { return KindValue }

// Clone copies the generator and action; the original value and modifiers start empty.
func (v *ValueEffect) Clone() Effect {
	return &ValueEffect{Base: v.derive(v), tag: v.tag, generate: v.generate, action: v.action}
}

// Tag returns the action tag.
func (v *ValueEffect) Tag() string { return v.tag }

// TargetAcquired samples the original value once per evaluation cycle.
func (v *ValueEffect) TargetAcquired(ctx Context) error {
	if v.captured {
		return nil
	}
	n, err := v.generate(ctx)
	if err != nil {
		return fmt.Errorf("sample %s: %w", v.description, err)
	}
	v.original = n
	v.captured = true
	return nil
}

// AddModifier appends m. Modifiers are never removed before Reset.
func (v *ValueEffect) AddModifier(m Modifier) {
	if m != nil {
		v.modifiers = append(v.modifiers, m)
	}
}

// Modifiers returns the number of modifiers accumulated so far.
func (v *ValueEffect) Modifiers() int { return len(v.modifiers) }

// Value reads the value in the given state.
func (v *ValueEffect) Value(ctx Context, state ValueState) (int, error) {
	switch state {
	case ValueOriginal:
		if !v.captured {
			return 0, fmt.Errorf("%w: %s", ErrNotCaptured, v.description)
		}
		return v.original, nil
	case ValueUnmodified:
		return v.generate(ctx)
	case ValueModified:
		n, err := v.generate(ctx)
		if err != nil {
			return 0, err
		}
		for _, m := range v.modifiers {
			n = m(n)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unknown value state %d", state)
	}
}

// Execute hands the modified value to the action.
func (v *ValueEffect) Execute(ctx Context) error {
	if !v.HasTarget() {
		return fmt.Errorf("%w: %s", ErrNoTarget, v.description)
	}
	n, err := v.Value(ctx, ValueModified)
	if err != nil {
		return err
	}
	return v.action(ctx, v.Target(), n)
}

// Reset clears the target, the captured original and every modifier.
func (v *ValueEffect) Reset() {
	v.Base.Reset()
	v.original = 0
	v.captured = false
	v.modifiers = nil
}

// ValueModifierEffect appends its modifier to the value effect it targets. Its selector
// is expected to resolve to the value effect currently in resolution.
type ValueModifierEffect struct {
	Base
	modifier Modifier
}

// NewValueModifier builds a value modifier effect.
func NewValueModifier(modifier Modifier, spec Spec) (*ValueModifierEffect, error) {
	if modifier == nil {
		return nil, ErrNilAction
	}
	b, err := newBase(spec)
	if err != nil {
		return nil, err
	}
	return &ValueModifierEffect{Base: b, modifier: modifier}, nil
}

func (m *ValueModifierEffect) Kind() Kind { return KindValueModifier }

func (m *ValueModifierEffect) Clone() Effect {
	return &ValueModifierEffect{Base: m.derive(m), modifier: m.modifier}
}

func (m *ValueModifierEffect) Execute(Context) error {
	target, ok := m.Target().(*ValueEffect)
	if !ok || target == nil {
		return fmt.Errorf("%w: %s needs a value effect target, got %T", ErrInvalidTarget, m.description, m.Target())
	}
	target.AddModifier(m.modifier)
	return nil
}

// Add returns a modifier adding n.
func Add(n int) Modifier {
	return func(v int) int { return v + n }
}

// Multiply returns a modifier multiplying by n.
func Multiply(n int) Modifier {
	return func(v int) int { return v * n }
}

// AtMost returns a modifier capping the value at limit.
func AtMost(limit int) Modifier {
	return func(v int) int { return min(v, limit) }
}

// ValueTagIs is fulfilled when the subject is a value effect with one of tags.
func ValueTagIs(tags ...string) rules.Condition[Context, Effect] {
	return rules.Func[Context, Effect](func(_ Context, subject Effect) (bool, error) {
		v, ok := subject.(*ValueEffect)
		if !ok {
			return false, nil
		}
		for _, t := range tags {
			if v.tag == t {
				return true, nil
			}
		}
		return false, nil
	})
}

// KindIs is fulfilled when the subject is of one of kinds.
func KindIs(kinds ...Kind) rules.Condition[Context, Effect] {
	return rules.Func[Context, Effect](func(_ Context, subject Effect) (bool, error) {
		if subject == nil {
			return false, nil
		}
		k := subject.Kind()
		for _, want := range kinds {
			if k == want {
				return true, nil
			}
		}
		return false, nil
	})
}
