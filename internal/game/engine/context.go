package engine

import (
	"context"

	"github.com/magefree/effect-engine/internal/game/effects"
)

// flightKey marks a context as belonging to a flow that already holds a player.
type flightKey struct{}

// resolutionContext is the effects.Context handed to triggers, selectors and actions.
// It is a plain context.Context carrying the owning player, so actions can re-enter the
// player with it.
type resolutionContext struct {
	context.Context
	player *Player
}

var _ effects.Context = (*resolutionContext)(nil)

func (rc *resolutionContext) with(ctx context.Context) *resolutionContext {
	return &resolutionContext{Context: ctx, player: rc.player}
}

func (rc *resolutionContext) Scene() effects.Scene { return rc.player.scene }

func (rc *resolutionContext) InResolution() effects.Effect { return rc.player.frames.Current() }

func (rc *resolutionContext) InEvaluation() effects.Effect { return rc.player.InEvaluation() }

func (rc *resolutionContext) Targeting() effects.Targeting { return rc.player.targeting }

func (rc *resolutionContext) EvaluateImmediately(effect effects.Effect) error {
	return rc.player.evaluateImmediately(rc, effect)
}
