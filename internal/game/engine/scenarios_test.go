package engine

import (
	"context"
	"testing"

	"github.com/magefree/effect-engine/internal/game/effects"
	"github.com/magefree/effect-engine/internal/game/rules"
	"github.com/magefree/effect-engine/internal/game/scene"
	"github.com/magefree/effect-engine/internal/game/targeting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowUpStrikeRespondsToDamage(t *testing.T) {
	f := newFixture(t, nil)
	followUp, err := scene.FollowUpStrike(1)
	require.NoError(t, err)
	require.NoError(t, f.scene.AddPersistentEffect(followUp))

	hit := damage(t, 1, effects.ModeImmediate, at(f.goblin))
	require.NoError(t, hit.SetSource(f.hero))
	require.NoError(t, f.player.Play(context.Background(), hit))

	assert.Equal(t, []int{1, 1}, f.goblin.Hits())
	assert.Equal(t, 2, f.goblin.DamageTaken())
	assert.Equal(t, 8, f.goblin.Health())

	// Allies are not followed up on, and the ability is reusable.
	friendly := damage(t, 3, effects.ModeImmediate, at(f.hero))
	require.NoError(t, f.player.Play(context.Background(), friendly))
	assert.Equal(t, []int{3}, f.hero.Hits())

	require.NoError(t, f.player.Play(context.Background(), damage(t, 2, effects.ModeEnqueue, at(f.orc))))
	// Response interrupts still land before the action they respond to.
	assert.Equal(t, []int{1, 2}, f.orc.Hits())
}

func TestFollowUpStrikeSkipsZeroDamage(t *testing.T) {
	f := newFixture(t, nil)
	followUp, err := scene.FollowUpStrike(1)
	require.NoError(t, err)
	require.NoError(t, f.scene.AddPersistentEffect(followUp))

	require.NoError(t, f.player.Play(context.Background(), damage(t, 0, effects.ModeImmediate, at(f.goblin))))
	assert.Equal(t, []int{0}, f.goblin.Hits())
}

func TestEmpowerModifiesDamageFromItsHolder(t *testing.T) {
	f := newFixture(t, nil)
	empower, err := scene.Empower(1)
	require.NoError(t, err)
	require.NoError(t, f.hero.AddPersistentEffect(empower))

	var strike *effects.ValueEffect
	var modified, original, unmodified int
	strike, err = effects.NewValue(scene.TagDamage, effects.Fixed(1),
		func(ctx effects.Context, target effects.Targetable, value int) error {
			modified = value
			var err error
			if original, err = strike.Value(ctx, effects.ValueOriginal); err != nil {
				return err
			}
			if unmodified, err = strike.Value(ctx, effects.ValueUnmodified); err != nil {
				return err
			}
			return scene.DealDamage(ctx, target, value)
		}, specFor("strike", effects.ModeImmediate, at(f.goblin)))
	require.NoError(t, err)
	require.NoError(t, strike.SetSource(f.hero))

	require.NoError(t, f.player.Play(context.Background(), strike))
	assert.Equal(t, 2, modified)
	assert.Equal(t, 1, original)
	assert.Equal(t, 1, unmodified)
	assert.Equal(t, []int{2}, f.goblin.Hits())
	assert.Zero(t, strike.Modifiers())

	// Damage from anyone else is left alone.
	other := damage(t, 1, effects.ModeImmediate, at(f.goblin))
	require.NoError(t, other.SetSource(f.orc))
	require.NoError(t, f.player.Play(context.Background(), other))
	assert.Equal(t, []int{2, 1}, f.goblin.Hits())
}

func TestModifiersApplyInStageOrder(t *testing.T) {
	f := newFixture(t, nil)
	empower, err := scene.Empower(3)
	require.NoError(t, err)
	bulwark, err := scene.Bulwark(2)
	require.NoError(t, err)
	followUp, err := scene.FollowUpStrike(1)
	require.NoError(t, err)

	// Attached out of order on purpose.
	require.NoError(t, f.scene.AddPersistentEffect(followUp))
	require.NoError(t, f.goblin.AddPersistentEffect(bulwark))
	require.NoError(t, f.hero.AddPersistentEffect(empower))

	interrupting := recordEvents(f.bus, rules.EventInterrupting)

	hit := damage(t, 1, effects.ModeImmediate, at(f.goblin))
	require.NoError(t, hit.SetSource(f.hero))
	require.NoError(t, f.player.Play(context.Background(), hit))

	// The follow-up lands during the response stage, before the capped (1+3) hit.
	assert.Equal(t, []int{1, 2}, f.goblin.Hits())

	var stages []string
	for _, e := range *interrupting {
		if e.Depth == 1 {
			stages = append(stages, e.Stage)
		}
	}
	assert.Equal(t, []string{
		rules.StageModification.String(),
		rules.StageResolution.String(),
		rules.StageResponse.String(),
	}, stages)
}

func TestNotificationsReachWatchers(t *testing.T) {
	f := newFixture(t, nil)
	f.hero.TakeDamage(5)

	regen, err := scene.NewHeal(2, effects.Spec{
		Description: "regenerate",
		Mode:        effects.ModeImmediate,
		Trigger:     rules.Always[effects.Context](),
		Selector:    targeting.NewPassive[*scene.Actor](),
	})
	require.NoError(t, err)
	watcher, err := effects.NewPersistent(rules.StageResponse, effects.StrategyPacket, effects.Spec{
		Description: "regenerate at turn start",
		Mode:        effects.ModeImmediate,
		Trigger: rules.MustBind[effects.Context, effects.Effect](effects.InResolution,
			effects.EventIs(rules.EventTurnStarted)),
		Selector: at(f.hero),
	}, regen)
	require.NoError(t, err)
	require.NoError(t, f.hero.AddPersistentEffect(watcher))

	ctx := context.Background()
	require.NoError(t, f.player.Notify(ctx, rules.EventTurnStarted, f.scene, effects.ModeEnqueue))
	require.NoError(t, f.player.Notify(ctx, rules.EventTurnEnded, f.scene, effects.ModeEnqueue))
	assert.Equal(t, 2, f.player.QueueLen())
	assert.Equal(t, 15, f.hero.Health())

	require.NoError(t, f.player.DrainQueue(ctx))
	assert.Equal(t, 17, f.hero.Health())
	assert.Equal(t, []int{2}, f.hero.Heals())
}

func TestRepeatedResponsesQueueTheirOwnFollowUps(t *testing.T) {
	f := newFixture(t, nil)
	followUp := damage(t, 1, effects.ModeEnqueue, targeting.NewPassive[*scene.Actor]())
	riposte, err := effects.NewPersistent(rules.StageResponse, effects.StrategyPacket, effects.Spec{
		Description: "riposte",
		Mode:        effects.ModeImmediate,
		Trigger:     rules.MustBind(effects.InResolution, effects.ValueTagIs(scene.TagDamage)),
		Selector:    targeting.MustConstant(effects.ResolvingTarget),
	}, followUp)
	require.NoError(t, err)
	require.NoError(t, f.scene.AddPersistentEffect(riposte))

	resolved := recordEvents(f.bus, rules.EventResolved)
	require.NoError(t, f.player.Play(context.Background(),
		damage(t, 3, effects.ModeImmediate, at(f.goblin)),
		damage(t, 3, effects.ModeImmediate, at(f.orc)),
	))

	assert.Equal(t, []int{3, 1}, f.goblin.Hits())
	assert.Equal(t, []int{3, 1}, f.orc.Hits())
	assert.Zero(t, f.player.QueueLen())
	assert.False(t, followUp.HasTarget())

	ids := make(map[string]struct{})
	for _, e := range *resolved {
		if e.Description == followUp.Description() {
			ids[e.EffectID] = struct{}{}
		}
	}
	assert.Len(t, ids, 2)
}
