package engine

import (
	"sort"

	"github.com/magefree/effect-engine/internal/game/effects"
	"github.com/magefree/effect-engine/internal/game/rules"
)

// interruptCandidates returns the persistent effects that may interrupt effect, sorted
// by stage. An effect targeting the scene can be interrupted by every persistent effect
// in the scene; any other effect only by those on the scene, its source and its target.
//
// A persistent effect never interrupts itself, its own owned effects, or anything while
// it is itself resolving further out.
func (p *Player) interruptCandidates(effect effects.Effect) []*effects.PersistentEffect {
	if p.scene == nil {
		return nil
	}

	var holders []effects.Holder
	target := effect.Target()
	if target == effects.Targetable(p.scene) {
		holders = p.scene.Holders()
	} else {
		holders = append(holders, p.scene)
		if h, ok := effect.Source().(effects.Holder); ok && !rules.IsNil(h) {
			holders = append(holders, h)
		}
		if h, ok := target.(effects.Holder); ok && !rules.IsNil(h) {
			holders = append(holders, h)
		}
	}

	self, _ := effect.(*effects.PersistentEffect)
	seen := make(map[*effects.PersistentEffect]struct{})
	var candidates []*effects.PersistentEffect
	for _, holder := range holders {
		for _, pe := range holder.PersistentEffects() {
			if _, dup := seen[pe]; dup {
				continue
			}
			seen[pe] = struct{}{}
			if pe == self || pe.Owns(effect) || p.frames.Contains(pe) {
				continue
			}
			candidates = append(candidates, pe)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Stage() < candidates[j].Stage()
	})
	return candidates
}
