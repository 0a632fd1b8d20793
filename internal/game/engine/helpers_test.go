package engine

import (
	"testing"

	"github.com/magefree/effect-engine/internal/game/effects"
	"github.com/magefree/effect-engine/internal/game/rules"
	"github.com/magefree/effect-engine/internal/game/scene"
	"github.com/magefree/effect-engine/internal/game/targeting"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	scene  *scene.Scene
	hero   *scene.Actor
	goblin *scene.Actor
	orc    *scene.Actor
	player *Player
	bus    *rules.EventBus
}

func newFixture(t *testing.T, managerOpts []targeting.Option, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		scene:  scene.New("crypt"),
		hero:   scene.NewActor("hero", scene.TeamAlly, 20),
		goblin: scene.NewActor("goblin", scene.TeamEnemy, 10),
		orc:    scene.NewActor("orc", scene.TeamEnemy, 10),
		bus:    rules.NewEventBus(),
	}
	f.scene.AddActors(f.hero, f.goblin, f.orc)
	logger := zaptest.NewLogger(t)
	base := []targeting.Option{targeting.WithSeed(1), targeting.WithEventBus(f.bus)}
	manager := targeting.NewManager(logger, append(base, managerOpts...)...)
	f.player = NewPlayer(f.scene, manager, logger, append([]Option{WithEventBus(f.bus)}, opts...)...)
	return f
}

// at targets a fixed object.
func at[T effects.Targetable](target T) effects.TargetSelector {
	return targeting.MustConstant(rules.Const[effects.Context](target))
}

func specFor(description string, mode effects.Mode, selector effects.TargetSelector) effects.Spec {
	return effects.Spec{
		Description: description,
		Mode:        mode,
		Trigger:     rules.Always[effects.Context](),
		Selector:    selector,
	}
}

func damage(t *testing.T, amount int, mode effects.Mode, selector effects.TargetSelector) *effects.ValueEffect {
	t.Helper()
	v, err := scene.NewDamage(amount, specFor("", mode, selector))
	require.NoError(t, err)
	return v
}

// action builds a value effect whose action runs fn.
func action(t *testing.T, description string, mode effects.Mode, selector effects.TargetSelector, fn func(ctx effects.Context) error) *effects.ValueEffect {
	t.Helper()
	v, err := effects.NewValue("scripted", effects.Fixed(0),
		func(ctx effects.Context, _ effects.Targetable, _ int) error { return fn(ctx) },
		specFor(description, mode, selector))
	require.NoError(t, err)
	return v
}

// spy is a persistent effect whose trigger logs its name and never fires.
func spy(t *testing.T, stage rules.Stage, name string, log *[]string) *effects.PersistentEffect {
	t.Helper()
	child, err := effects.NewNotification(rules.EventCustom, specFor(name+" child", effects.ModeImmediate, targeting.NewPassive[effects.Targetable]()))
	require.NoError(t, err)
	trigger := rules.TriggerFunc[effects.Context](func(effects.Context) (bool, error) {
		*log = append(*log, name)
		return false, nil
	})
	p, err := effects.NewPersistent(stage, effects.StrategyPacket, effects.Spec{
		Description: name,
		Mode:        effects.ModeImmediate,
		Trigger:     trigger,
		Selector:    targeting.MustConstant(effects.ResolvingTarget),
	}, child)
	require.NoError(t, err)
	return p
}

func recordEvents(bus *rules.EventBus, types ...rules.EventType) *[]rules.Event {
	var events []rules.Event
	bus.Subscribe(func(e rules.Event) {
		if len(types) == 0 {
			events = append(events, e)
			return
		}
		for _, t := range types {
			if e.Type == t {
				events = append(events, e)
				return
			}
		}
	})
	return &events
}
