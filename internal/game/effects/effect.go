package effects

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/magefree/effect-engine/internal/game/rules"
)

// Mode decides what evaluation does with an effect once its trigger and target check out.
type Mode int

const (
	// ModeImmediate resolves the effect synchronously during evaluation.
	ModeImmediate Mode = iota
	// ModeEnqueue appends the effect to the tail of the resolution queue.
	ModeEnqueue
	// ModeEnqueueOnTop inserts the effect at the head of the resolution queue.
	ModeEnqueueOnTop
)

func (m Mode) String() string {
	switch m {
	case ModeImmediate:
		return "IMMEDIATE"
	case ModeEnqueue:
		return "ENQUEUE"
	case ModeEnqueueOnTop:
		return "ENQUEUE_ON_TOP"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Kind is the closed set of effect variants.
type Kind int

const (
	KindNotification Kind = iota
	KindValue
	KindValueModifier
	KindDeployer
	KindPersistent
)

func (k Kind) String() string {
	switch k {
	case KindNotification:
		return "NOTIFICATION"
	case KindValue:
		return "VALUE"
	case KindValueModifier:
		return "VALUE_MODIFIER"
	case KindDeployer:
		return "DEPLOYER"
	case KindPersistent:
		return "PERSISTENT"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Observer receives lifecycle events for a single effect.
type Observer func(rules.Event)

// Effect is an atomic, triggerable, targetable action. The set of implementations is
// closed: every effect embeds Base, and Kind identifies the variant.
type Effect interface {
	Targetable

	ID() string
	Description() string
	Kind() Kind
	Mode() Mode
	Trigger() rules.Trigger[Context]
	Selector() TargetSelector

	// Source is the origin of the effect. SetSource attaches it once; setting a
	// different value afterwards fails unless ReassignSource is used.
	Source() any
	SetSource(source any) error
	ReassignSource(source any)

	Target() Targetable
	HasTarget() bool
	// SelectTarget lets the selector pick a target autonomously.
	SelectTarget(ctx Context, forbidden TargetSet) (bool, error)
	// AssignTarget pushes a target from outside, validated by the selector.
	AssignTarget(ctx Context, target Targetable) error
	// TargetAcquired runs once a target has been accepted during evaluation.
	TargetAcquired(ctx Context) error

	Execute(ctx Context) error
	// Reset clears the target and any per-resolution state so the effect can be
	// evaluated again.
	Reset()
	// Clone returns an unevaluated copy with a fresh ID and selector. Deployers hand
	// out copies of effects that wait in the queue, so every deployment resolves once.
	Clone() Effect
	// Origin is the effect this one was cloned from, or nil for an original.
	Origin() Effect

	AddObserver(observer Observer)
	Notify(event rules.Event)

	base() *Base
}

// Spec holds the fields shared by every effect constructor.
type Spec struct {
	Description string
	Mode        Mode
	Trigger     rules.Trigger[Context]
	Selector    TargetSelector
}

// Base carries the state common to every effect. It is embedded by every variant and
// provides no-op Targetable hooks, so effects can themselves be targets.
type Base struct {
	id          string
	description string
	mode        Mode
	trigger     rules.Trigger[Context]
	selector    TargetSelector
	source      any
	observers   []Observer
	origin      Effect
}

func newBase(spec Spec) (Base, error) {
	if spec.Trigger == nil {
		return Base{}, ErrNilTrigger
	}
	if rules.IsNil(spec.Selector) {
		return Base{}, ErrNilSelector
	}
	if spec.Mode < ModeImmediate || spec.Mode > ModeEnqueueOnTop {
		return Base{}, fmt.Errorf("%w: %d", ErrInvalidMode, spec.Mode)
	}
	return Base{
		id:          uuid.NewString(),
		description: spec.Description,
		mode:        spec.Mode,
		trigger:     spec.Trigger,
		selector:    spec.Selector,
	}, nil
}

func (b *Base) base() *Base { return b }

// derive returns the base of a fresh copy of self: same configuration, new ID, an
// unselected selector, and self's origin as its own.
func (b *Base) derive(self Effect) Base {
	origin := b.origin
	if origin == nil {
		origin = self
	}
	return Base{
		id:          uuid.NewString(),
		description: b.description,
		mode:        b.mode,
		trigger:     b.trigger,
		selector:    b.selector.Clone(),
		source:      b.source,
		observers:   slices.Clone(b.observers),
		origin:      origin,
	}
}

// Origin returns the original this effect was cloned from, or nil.
func (b *Base) Origin() Effect { return b.origin }

// sameOrigin reports whether a and b are the same effect or copies of one.
func sameOrigin(a, b Effect) bool {
	if a == nil || b == nil {
		return false
	}
	if o := a.Origin(); o != nil {
		a = o
	}
	if o := b.Origin(); o != nil {
		b = o
	}
	return a == b
}

// ID returns the effect's unique identifier.
func (b *Base) ID() string { return b.id }

// Description returns the human-readable description.
func (b *Base) Description() string { return b.description }

// Mode returns the resolution mode.
func (b *Base) Mode() Mode { return b.mode }

// Trigger returns the activation trigger.
func (b *Base) Trigger() rules.Trigger[Context] { return b.trigger }

// Selector returns the target selector.
func (b *Base) Selector() TargetSelector { return b.selector }

// Source returns the origin of the effect, or nil.
func (b *Base) Source() any { return b.source }

// SetSource attaches source. Setting the same source again is a no-op.
func (b *Base) SetSource(source any) error {
	if b.source != nil && b.source != source {
		return fmt.Errorf("%w: %s", ErrSourceAlreadySet, b.description)
	}
	b.source = source
	return nil
}

// ReassignSource replaces the source unconditionally.
func (b *Base) ReassignSource(source any) { b.source = source }

// Target returns the selected target, or nil.
func (b *Base) Target() Targetable { return b.selector.Target() }

// HasTarget reports whether a target is selected.
func (b *Base) HasTarget() bool { return b.selector.HasTarget() }

// SelectTarget delegates to the selector.
func (b *Base) SelectTarget(ctx Context, forbidden TargetSet) (bool, error) {
	return b.selector.Select(ctx, forbidden)
}

// AssignTarget delegates validation to the selector.
func (b *Base) AssignTarget(ctx Context, target Targetable) error {
	if target == nil {
		return fmt.Errorf("%w: %s", ErrNoTarget, b.description)
	}
	return b.selector.SetTarget(ctx, target)
}

// TargetAcquired does nothing by default.
func (b *Base) TargetAcquired(Context) error { return nil }

// Reset clears the selected target.
func (b *Base) Reset() { b.selector.Clear() }

// AddObserver registers an observer for this effect's lifecycle events.
func (b *Base) AddObserver(observer Observer) {
	if observer != nil {
		b.observers = append(b.observers, observer)
	}
}

// Notify delivers event to every observer in registration order.
func (b *Base) Notify(event rules.Event) {
	for _, o := range b.observers {
		o(event)
	}
}

func (b *Base) OnActivated()   {}
func (b *Base) OnDeactivated() {}
func (b *Base) OnSelected()    {}
func (b *Base) OnDeselected()  {}

func (b *Base) String() string {
	if b.description == "" {
		return b.id
	}
	return b.description
}
