package effects

import (
	"fmt"
	"slices"
)

// Strategy decides how a deployer hands targets to its owned effects.
type Strategy int

const (
	// StrategyPacket selects one target for the deployer and pushes it to every
	// owned effect.
	StrategyPacket Strategy = iota
	// StrategySequential lets every owned effect select its own target. Owned effects
	// must resolve immediately so each finishes before the next is evaluated.
	StrategySequential
)

func (s Strategy) String() string {
	if s == StrategySequential {
		return "SEQUENTIAL"
	}
	return "PACKET"
}

// Deployer wraps a non-empty ordered list of effects and deploys them when it executes.
type Deployer struct {
	Base
	strategy Strategy
	effects  []Effect
}

// NewPacket builds a deployer whose effects all share the deployer's target.
func NewPacket(spec Spec, effects ...Effect) (*Deployer, error) {
	return newDeployer(spec, StrategyPacket, effects)
}

// NewSequential builds a deployer whose effects select their own targets one at a time.
func NewSequential(spec Spec, effects ...Effect) (*Deployer, error) {
	return newDeployer(spec, StrategySequential, effects)
}

func newDeployer(spec Spec, strategy Strategy, effects []Effect) (*Deployer, error) {
	d, err := buildDeployer(spec, strategy, effects)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func buildDeployer(spec Spec, strategy Strategy, effects []Effect) (Deployer, error) {
	if len(effects) == 0 {
		return Deployer{}, fmt.Errorf("%w: %s", ErrEmptyEffects, spec.Description)
	}
	for i, e := range effects {
		if e == nil {
			return Deployer{}, fmt.Errorf("%w: %s effect %d is nil", ErrEmptyEffects, spec.Description, i)
		}
		if strategy == StrategySequential && e.Mode() != ModeImmediate {
			return Deployer{}, fmt.Errorf("%w: %s effect %d (%s) uses %s",
				ErrNotImmediate, spec.Description, i, e.Description(), e.Mode())
		}
	}
	b, err := newBase(spec)
	if err != nil {
		return Deployer{}, err
	}
	return Deployer{Base: b, strategy: strategy, effects: slices.Clone(effects)}, nil
}

func (d *Deployer) Kind() Kind { return KindDeployer }

// Strategy returns how targets are handed out.
func (d *Deployer) Strategy() Strategy { return d.strategy }

// Effects returns a copy of the owned effects in order.
func (d *Deployer) Effects() []Effect { return slices.Clone(d.effects) }

// Owns reports whether e is one of the directly owned effects or a copy of one.
func (d *Deployer) Owns(e Effect) bool {
	for _, owned := range d.effects {
		if sameOrigin(owned, e) {
			return true
		}
	}
	return false
}

// Clone copies the deployer and every owned effect.
func (d *Deployer) Clone() Effect {
	c := d.cloneAs(d)
	return &c
}

func (d *Deployer) cloneAs(self Effect) Deployer {
	owned := make([]Effect, len(d.effects))
	for i, e := range d.effects {
		owned[i] = e.Clone()
	}
	return Deployer{Base: d.derive(self), strategy: d.strategy, effects: owned}
}

// ReassignSource replaces the deployer's source and that of every owned effect.
func (d *Deployer) ReassignSource(source any) {
	d.Base.ReassignSource(source)
	for _, e := range d.effects {
		e.ReassignSource(source)
	}
}

// Execute evaluates every owned effect in order through the nested evaluation path.
// A packet pushes its own target to each effect first. Owned effects that wait in the
// queue are deployed as copies, so deploying again before the queue drains cannot
// retarget a pending one.
func (d *Deployer) Execute(ctx Context) error {
	if d.strategy == StrategyPacket && !d.HasTarget() {
		return fmt.Errorf("%w: %s", ErrNoTarget, d.description)
	}
	for _, e := range d.effects {
		if d.source != nil {
			e.ReassignSource(d.source)
		}
		deployed := e
		if e.Mode() != ModeImmediate {
			deployed = e.Clone()
		}
		if d.strategy == StrategyPacket {
			if err := deployed.AssignTarget(ctx, d.Target()); err != nil {
				return fmt.Errorf("deploy %s to %s: %w", d.description, e.Description(), err)
			}
		}
		if err := ctx.EvaluateImmediately(deployed); err != nil {
			return fmt.Errorf("deploy %s: %w", d.description, err)
		}
	}
	return nil
}
