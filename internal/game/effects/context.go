package effects

import "context"

// Context is the resolution context handed to triggers, selectors and actions. It
// replaces any global notion of "the current game": everything an effect may read
// about the ongoing resolution is reachable from here.
type Context interface {
	context.Context

	// Scene is the scene this resolution runs in.
	Scene() Scene
	// InResolution is the innermost effect currently resolving, or nil.
	InResolution() Effect
	// InEvaluation is the effect currently being evaluated, or nil.
	InEvaluation() Effect
	// Targeting is the targeting manager of the engine.
	Targeting() Targeting
	// EvaluateImmediately evaluates effect nested inside the current flow.
	EvaluateImmediately(effect Effect) error
}

// Holder is anything that carries persistent effects.
type Holder interface {
	PersistentEffects() []*PersistentEffect
	AddPersistentEffect(p *PersistentEffect) error
	RemovePersistentEffect(p *PersistentEffect) error
}

// Scene is the root holder. It enumerates every targetable and every holder in a
// deterministic order, the scene itself first.
type Scene interface {
	Holder
	Targetable
	Targetables() []Targetable
	Holders() []Holder
}

// TargetSelector acquires or validates the target of one effect. Each effect owns its
// own selector instance; selection state is cleared by the effect's Reset.
type TargetSelector interface {
	// Select picks a target outside forbidden. It reports false when nothing is eligible.
	Select(ctx Context, forbidden TargetSet) (bool, error)
	// SetTarget validates and sets an externally supplied target.
	SetTarget(ctx Context, target Targetable) error
	Target() Targetable
	HasTarget() bool
	Clear()
	// Clone returns an unselected selector with the same configuration.
	Clone() TargetSelector
}

// Targeting mediates target pools for selectors that pick from the scene.
type Targeting interface {
	Activate(pool []Targetable)
	Deactivate(pool []Targetable)
	PickRandom(pool []Targetable) Targetable
	// AwaitChoice blocks until an external actor supplies a member of pool.
	AwaitChoice(ctx context.Context, pool []Targetable) (Targetable, error)
}
