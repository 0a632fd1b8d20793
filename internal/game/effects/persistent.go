package effects

import (
	"fmt"

	"github.com/magefree/effect-engine/internal/game/rules"
)

// PersistentEffect is a reactive ability attached to a holder. Whenever another effect
// resolves, eligible persistent effects are evaluated in stage order before the
// resolving effect's action runs.
type PersistentEffect struct {
	Deployer
	stage  rules.Stage
	holder Holder
}

// NewPersistent builds a persistent effect. It must resolve immediately so a triggered
// interrupt completes before the next one is evaluated.
func NewPersistent(stage rules.Stage, strategy Strategy, spec Spec, effects ...Effect) (*PersistentEffect, error) {
	if !stage.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStage, stage)
	}
	if spec.Mode != ModeImmediate {
		return nil, fmt.Errorf("%w: persistent effect %s uses %s", ErrNotImmediate, spec.Description, spec.Mode)
	}
	d, err := buildDeployer(spec, strategy, effects)
	if err != nil {
		return nil, err
	}
	return &PersistentEffect{Deployer: d, stage: stage}, nil
}

func (p *PersistentEffect) Kind() Kind { return KindPersistent }

// Clone copies the ability and its owned effects. The copy is not attached to a holder.
func (p *PersistentEffect) Clone() Effect {
	return &PersistentEffect{Deployer: p.cloneAs(p), stage: p.stage}
}

// Stage returns the activation stage.
func (p *PersistentEffect) Stage() rules.Stage { return p.stage }

// Holder returns the holder this effect is attached to, or nil.
func (p *PersistentEffect) Holder() Holder { return p.holder }
