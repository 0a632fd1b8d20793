package main

import (
	"context"
	"strings"

	"github.com/magefree/effect-engine/internal/game/effects"
	"github.com/magefree/effect-engine/internal/game/rules"
	"github.com/magefree/effect-engine/internal/game/scene"
	"github.com/magefree/effect-engine/internal/game/targeting"
)

var scenarios = []struct {
	name        string
	description string
	play        func(ctx context.Context, s *simulator, t *table) error
}{
	{"response", "a follow-up strike answers the hero's blow", playResponse},
	{"modification", "empower raises the hero's damage before it lands", playModification},
	{"guarded", "bulwark caps empowered damage against the orc", playGuarded},
	{"choice", "the hero picks which enemy to strike", playChoice},
	{"volley", "three random strikes against standing enemies", playVolley},
	{"turn", "regeneration answers the start of a turn", playTurn},
}

func scenarioNames() string {
	names := make([]string, 0, len(scenarios))
	for _, sc := range scenarios {
		names = append(names, sc.name)
	}
	return strings.Join(names, ", ")
}

func always() rules.Trigger[effects.Context] { return rules.Always[effects.Context]() }

// strike is damage from the hero at a fixed target.
func strike(t *table, amount int, target *scene.Actor) (*effects.ValueEffect, error) {
	hit, err := scene.NewDamage(amount, effects.Spec{
		Mode:     effects.ModeImmediate,
		Trigger:  always(),
		Selector: targeting.MustConstant(rules.Const[effects.Context](target)),
	})
	if err != nil {
		return nil, err
	}
	return hit, hit.SetSource(t.hero)
}

var standingEnemy = rules.Func[effects.Context, *scene.Actor](func(_ effects.Context, a *scene.Actor) (bool, error) {
	return a.Team() == scene.TeamEnemy && !a.Defeated(), nil
})

func playResponse(ctx context.Context, s *simulator, t *table) error {
	followUp, err := scene.FollowUpStrike(1)
	if err != nil {
		return err
	}
	if err := t.scene.AddPersistentEffect(followUp); err != nil {
		return err
	}
	hit, err := strike(t, 1, t.goblin)
	if err != nil {
		return err
	}
	return s.play(ctx, t, hit)
}

func playModification(ctx context.Context, s *simulator, t *table) error {
	empower, err := scene.Empower(1)
	if err != nil {
		return err
	}
	if err := t.hero.AddPersistentEffect(empower); err != nil {
		return err
	}
	hit, err := strike(t, 1, t.orc)
	if err != nil {
		return err
	}
	return s.play(ctx, t, hit)
}

func playGuarded(ctx context.Context, s *simulator, t *table) error {
	empower, err := scene.Empower(3)
	if err != nil {
		return err
	}
	if err := t.hero.AddPersistentEffect(empower); err != nil {
		return err
	}
	bulwark, err := scene.Bulwark(2)
	if err != nil {
		return err
	}
	if err := t.orc.AddPersistentEffect(bulwark); err != nil {
		return err
	}
	hit, err := strike(t, 1, t.orc)
	if err != nil {
		return err
	}
	return s.play(ctx, t, hit)
}

func playChoice(ctx context.Context, s *simulator, t *table) error {
	selector, err := targeting.NewVariable[*scene.Actor](targeting.SelectChoice, standingEnemy)
	if err != nil {
		return err
	}
	hit, err := scene.NewDamage(3, effects.Spec{
		Description: "chosen strike",
		Mode:        effects.ModeImmediate,
		Trigger:     always(),
		Selector:    selector,
	})
	if err != nil {
		return err
	}
	if err := hit.SetSource(t.hero); err != nil {
		return err
	}
	return s.play(ctx, t, hit)
}

func playVolley(ctx context.Context, s *simulator, t *table) error {
	arrows := make([]effects.Effect, 0, 3)
	for range 3 {
		selector, err := targeting.NewVariable[*scene.Actor](targeting.SelectRandom, standingEnemy)
		if err != nil {
			return err
		}
		arrow, err := scene.NewDamage(2, effects.Spec{Mode: effects.ModeImmediate, Trigger: always(), Selector: selector})
		if err != nil {
			return err
		}
		arrows = append(arrows, arrow)
	}
	volley, err := effects.NewSequential(effects.Spec{
		Description: "volley",
		Mode:        effects.ModeEnqueue,
		Trigger:     always(),
		Selector:    targeting.MustConstant(effects.SceneGetter),
	}, arrows...)
	if err != nil {
		return err
	}
	if err := volley.SetSource(t.hero); err != nil {
		return err
	}
	return s.play(ctx, t, volley)
}

func playTurn(ctx context.Context, s *simulator, t *table) error {
	t.hero.TakeDamage(6)

	regen, err := scene.NewHeal(2, effects.Spec{
		Mode:     effects.ModeImmediate,
		Trigger:  always(),
		Selector: targeting.NewPassive[*scene.Actor](),
	})
	if err != nil {
		return err
	}
	trigger, err := rules.Bind[effects.Context, effects.Effect](effects.InResolution, effects.EventIs(rules.EventTurnStarted))
	if err != nil {
		return err
	}
	watcher, err := effects.NewPersistent(rules.StageResponse, effects.StrategyPacket, effects.Spec{
		Description: "regenerate at turn start",
		Mode:        effects.ModeImmediate,
		Trigger:     trigger,
		Selector:    targeting.MustConstant(rules.Const[effects.Context](t.hero)),
	}, regen)
	if err != nil {
		return err
	}
	if err := t.hero.AddPersistentEffect(watcher); err != nil {
		return err
	}

	if err := t.player.Notify(ctx, rules.EventTurnStarted, t.scene, effects.ModeEnqueue); err != nil {
		return err
	}
	return s.play(ctx, t)
}
