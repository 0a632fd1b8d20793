package scene

import (
	"fmt"

	"github.com/magefree/effect-engine/internal/game/effects"
	"github.com/magefree/effect-engine/internal/game/rules"
	"github.com/magefree/effect-engine/internal/game/targeting"
)

// resolvingDamage is activated while a damage effect resolves.
func resolvingDamage() rules.Trigger[effects.Context] {
	return rules.MustBind[effects.Context, effects.Effect](effects.InResolution,
		rules.And(effects.KindIs(effects.KindValue), effects.ValueTagIs(TagDamage)))
}

// immediate returns a spec for an owned effect that is handed its target.
func immediate[T effects.Targetable](description string) effects.Spec {
	return effects.Spec{
		Description: description,
		Mode:        effects.ModeImmediate,
		Trigger:     rules.Always[effects.Context](),
		Selector:    targeting.NewPassive[T](),
	}
}

// FollowUpStrike reacts once a damage effect of positive value resolves against an
// enemy by dealing amount more damage to that enemy.
func FollowUpStrike(amount int) (*effects.PersistentEffect, error) {
	trigger, err := rules.AllOf(
		resolvingDamage(),
		rules.MustBind[effects.Context, int](effects.ResolvingValue(effects.ValueModified),
			rules.CompareTo[effects.Context](rules.GT, 0)),
		rules.MustBind(effects.ResolvingTarget, OnTeam(TeamEnemy)),
	)
	if err != nil {
		return nil, err
	}
	strike, err := NewDamage(amount, immediate[*Actor](fmt.Sprintf("follow-up strike for %d", amount)))
	if err != nil {
		return nil, err
	}
	selector, err := targeting.NewConstant(effects.ResolvingTarget)
	if err != nil {
		return nil, err
	}
	return effects.NewPersistent(rules.StageResponse, effects.StrategyPacket, effects.Spec{
		Description: "follow-up strike",
		Mode:        effects.ModeImmediate,
		Trigger:     trigger,
		Selector:    selector,
	}, strike)
}

// Empower adds bonus to every damage effect its holder is the source of.
func Empower(bonus int) (*effects.PersistentEffect, error) {
	fromHolder := rules.Func[effects.Context, effects.Effect](
		func(ctx effects.Context, resolving effects.Effect) (bool, error) {
			holder, err := effects.EvaluatingSource(ctx)
			if err != nil {
				return false, err
			}
			return resolving.Source() != nil && resolving.Source() == holder, nil
		})
	trigger, err := rules.AllOf(
		resolvingDamage(),
		rules.MustBind[effects.Context, effects.Effect](effects.InResolution, fromHolder),
	)
	if err != nil {
		return nil, err
	}
	return modifierAbility(rules.StageModification, fmt.Sprintf("empower +%d", bonus), trigger, effects.Add(bonus))
}

// Bulwark caps damage dealt to its holder at limit.
func Bulwark(limit int) (*effects.PersistentEffect, error) {
	holderIsTarget := rules.Func[effects.Context, effects.Targetable](
		func(ctx effects.Context, target effects.Targetable) (bool, error) {
			holder, err := effects.EvaluatingSource(ctx)
			if err != nil {
				return false, err
			}
			return any(target) == holder, nil
		})
	trigger, err := rules.AllOf(
		resolvingDamage(),
		rules.MustBind[effects.Context, effects.Targetable](effects.ResolvingTarget, holderIsTarget),
	)
	if err != nil {
		return nil, err
	}
	return modifierAbility(rules.StageResolution, fmt.Sprintf("bulwark %d", limit), trigger, effects.AtMost(limit))
}

func modifierAbility(stage rules.Stage, description string, trigger rules.Trigger[effects.Context], modifier effects.Modifier) (*effects.PersistentEffect, error) {
	modify, err := effects.NewValueModifier(modifier, immediate[*effects.ValueEffect](description))
	if err != nil {
		return nil, err
	}
	selector, err := targeting.NewConstant(effects.ResolvingValueEffect)
	if err != nil {
		return nil, err
	}
	return effects.NewPersistent(stage, effects.StrategyPacket, effects.Spec{
		Description: description,
		Mode:        effects.ModeImmediate,
		Trigger:     trigger,
		Selector:    selector,
	}, modify)
}
