package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/magefree/effect-engine/internal/game/effects"
	"github.com/magefree/effect-engine/internal/game/rules"
	"github.com/magefree/effect-engine/internal/game/scene"
	"github.com/magefree/effect-engine/internal/game/targeting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/errgroup"
)

func TestInactiveTriggerNeverEnqueuesOrResolves(t *testing.T) {
	for _, mode := range []effects.Mode{effects.ModeImmediate, effects.ModeEnqueue, effects.ModeEnqueueOnTop} {
		t.Run(mode.String(), func(t *testing.T) {
			f := newFixture(t, nil)
			dropped := recordEvents(f.bus, rules.EventDropped)

			ran := false
			e := action(t, "never", mode, at(f.goblin), func(effects.Context) error {
				ran = true
				return nil
			})
			spec := specFor("never", mode, at(f.goblin))
			spec.Trigger = rules.Never[effects.Context]()
			never, err := effects.NewValue("scripted", effects.Fixed(0), func(effects.Context, effects.Targetable, int) error {
				ran = true
				return nil
			}, spec)
			require.NoError(t, err)

			require.NoError(t, f.player.Evaluate(context.Background(), never))
			assert.Zero(t, f.player.QueueLen())
			require.NoError(t, f.player.DrainQueue(context.Background()))
			assert.False(t, ran)
			assert.False(t, never.HasTarget())
			require.Len(t, *dropped, 1)
			assert.Equal(t, rules.DropTriggerInactive, (*dropped)[0].Reason)
			assert.Nil(t, f.player.InEvaluation())

			// With an active trigger the action runs.
			require.NoError(t, f.player.Play(context.Background(), e))
			assert.True(t, ran)
		})
	}
}

func TestNoTargetDropsEffect(t *testing.T) {
	f := newFixture(t, nil)
	dropped := recordEvents(f.bus, rules.EventDropped)

	f.player.Targeting().Forbid(f.goblin)
	hit := damage(t, 3, effects.ModeImmediate, at(f.goblin))
	require.NoError(t, f.player.Play(context.Background(), hit))

	assert.Empty(t, f.goblin.Hits())
	require.Len(t, *dropped, 1)
	assert.Equal(t, rules.DropNoTarget, (*dropped)[0].Reason)
}

func TestInterruptsRunInStageOrderBeforeTheAction(t *testing.T) {
	f := newFixture(t, nil)
	bystander := scene.NewActor("bystander", scene.TeamAlly, 5)
	f.scene.AddActors(bystander)

	var log []string
	require.NoError(t, f.scene.AddPersistentEffect(spy(t, rules.StageResponse, "response", &log)))
	require.NoError(t, f.scene.AddPersistentEffect(spy(t, rules.StageResolution, "resolution", &log)))
	require.NoError(t, f.scene.AddPersistentEffect(spy(t, rules.StageModification, "modification", &log)))
	require.NoError(t, f.scene.AddPersistentEffect(spy(t, rules.StageActivation, "activation", &log)))
	require.NoError(t, f.hero.AddPersistentEffect(spy(t, rules.StageActivation, "hero activation", &log)))
	require.NoError(t, f.goblin.AddPersistentEffect(spy(t, rules.StageResponse, "goblin response", &log)))
	require.NoError(t, bystander.AddPersistentEffect(spy(t, rules.StageActivation, "bystander", &log)))

	strike := action(t, "strike", effects.ModeImmediate, at(f.goblin), func(effects.Context) error {
		log = append(log, "execute")
		return nil
	})
	require.NoError(t, strike.SetSource(f.hero))
	require.NoError(t, f.player.Play(context.Background(), strike))

	assert.Equal(t, []string{
		"activation",
		"hero activation",
		"modification",
		"resolution",
		"response",
		"goblin response",
		"execute",
	}, log)
}

func TestSceneTargetedEffectsReachEveryHolder(t *testing.T) {
	f := newFixture(t, nil)
	var log []string
	require.NoError(t, f.orc.AddPersistentEffect(spy(t, rules.StageResponse, "orc", &log)))
	require.NoError(t, f.scene.AddPersistentEffect(spy(t, rules.StageActivation, "scene", &log)))

	require.NoError(t, f.player.Notify(context.Background(), rules.EventTurnStarted, nil, effects.ModeImmediate))
	assert.Equal(t, []string{"scene", "orc"}, log)
}

func TestPersistentEffectNeverInterruptsItselfOrItsChildren(t *testing.T) {
	f := newFixture(t, nil)

	evaluations := 0
	echoChild, err := effects.NewNotification(rules.EventCustom,
		specFor("echo child", effects.ModeImmediate, targeting.NewPassive[effects.Targetable]()))
	require.NoError(t, err)
	echo, err := effects.NewPersistent(rules.StageResponse, effects.StrategyPacket, effects.Spec{
		Description: "echo",
		Mode:        effects.ModeImmediate,
		Trigger: rules.TriggerFunc[effects.Context](func(effects.Context) (bool, error) {
			evaluations++
			return true, nil
		}),
		Selector: targeting.MustConstant(effects.SceneGetter),
	}, echoChild)
	require.NoError(t, err)
	require.NoError(t, f.scene.AddPersistentEffect(echo))

	assert.NotContains(t, f.player.interruptCandidates(echo), echo)
	assert.NotContains(t, f.player.interruptCandidates(echoChild), echo)

	resolved := recordEvents(f.bus, rules.EventResolved)
	require.NoError(t, f.player.Notify(context.Background(), rules.EventTurnStarted, nil, effects.ModeImmediate))

	assert.Equal(t, 1, evaluations)
	descriptions := make([]string, 0, len(*resolved))
	for _, e := range *resolved {
		descriptions = append(descriptions, e.Description)
	}
	assert.Equal(t, []string{"echo child", "echo", string(rules.EventTurnStarted)}, descriptions)
}

func TestQueueOrdering(t *testing.T) {
	f := newFixture(t, nil)
	var order []string
	record := func(name string, mode effects.Mode) *effects.ValueEffect {
		return action(t, name, mode, at(f.goblin), func(effects.Context) error {
			order = append(order, name)
			return nil
		})
	}

	first := record("first", effects.ModeEnqueue)
	second := record("second", effects.ModeEnqueue)
	urgent := record("urgent", effects.ModeEnqueueOnTop)

	ctx := context.Background()
	require.NoError(t, f.player.Evaluate(ctx, first))
	require.NoError(t, f.player.Evaluate(ctx, second))
	require.NoError(t, f.player.Evaluate(ctx, urgent))
	assert.Equal(t, []effects.Effect{urgent, first, second}, f.player.Queued())
	assert.Empty(t, order)

	require.NoError(t, f.player.DrainQueue(ctx))
	assert.Equal(t, []string{"urgent", "first", "second"}, order)
	assert.Zero(t, f.player.QueueLen())
}

func TestEffectsQueuedWhileDrainingResolveInTheSameLoop(t *testing.T) {
	f := newFixture(t, nil)
	var order []string

	followUp := action(t, "follow-up", effects.ModeEnqueueOnTop, at(f.goblin), func(effects.Context) error {
		order = append(order, "follow-up")
		return nil
	})
	first := action(t, "first", effects.ModeEnqueue, at(f.goblin), func(ctx effects.Context) error {
		order = append(order, "first")
		return ctx.EvaluateImmediately(followUp)
	})
	second := action(t, "second", effects.ModeEnqueue, at(f.goblin), func(effects.Context) error {
		order = append(order, "second")
		return nil
	})

	require.NoError(t, f.player.Play(context.Background(), first, second))
	assert.Equal(t, []string{"first", "follow-up", "second"}, order)
}

func TestEnqueuedChildKeepsPushedTarget(t *testing.T) {
	f := newFixture(t, nil)
	now := damage(t, 1, effects.ModeImmediate, targeting.NewPassive[*scene.Actor]())
	later := damage(t, 2, effects.ModeEnqueue, targeting.NewPassive[*scene.Actor]())
	packet, err := effects.NewPacket(specFor("combo", effects.ModeImmediate, at(f.goblin)), now, later)
	require.NoError(t, err)
	require.NoError(t, packet.SetSource(f.hero))

	require.NoError(t, f.player.Play(context.Background(), packet))
	assert.Equal(t, []int{1, 2}, f.goblin.Hits())
	assert.Same(t, f.hero, later.Source())
	assert.False(t, later.HasTarget())
	assert.False(t, packet.HasTarget())
}

func TestSequentialDeployerLetsChildrenSelect(t *testing.T) {
	f := newFixture(t, nil)
	first := damage(t, 1, effects.ModeImmediate, at(f.goblin))
	second := damage(t, 2, effects.ModeImmediate, at(f.orc))
	sequence, err := effects.NewSequential(specFor("volley", effects.ModeImmediate, targeting.MustConstant(effects.SceneGetter)), first, second)
	require.NoError(t, err)

	require.NoError(t, f.player.Play(context.Background(), sequence))
	assert.Equal(t, []int{1}, f.goblin.Hits())
	assert.Equal(t, []int{2}, f.orc.Hits())
}

func TestEvaluateWhileEvaluating(t *testing.T) {
	f := newFixture(t, nil)
	inner := damage(t, 1, effects.ModeImmediate, at(f.orc))
	nested := damage(t, 2, effects.ModeImmediate, at(f.orc))

	var nestedErr, immediateErr error
	var restored effects.Effect
	spec := specFor("outer", effects.ModeImmediate, at(f.goblin))
	spec.Trigger = rules.TriggerFunc[effects.Context](func(ctx effects.Context) (bool, error) {
		nestedErr = f.player.Evaluate(ctx, inner)
		immediateErr = f.player.EvaluateImmediately(ctx, nested)
		restored = ctx.InEvaluation()
		return true, nil
	})
	outer, err := scene.NewDamage(3, spec)
	require.NoError(t, err)

	require.NoError(t, f.player.Play(context.Background(), outer))
	assert.ErrorIs(t, nestedErr, ErrAlreadyEvaluating)
	require.NoError(t, immediateErr)
	assert.Same(t, outer, restored)
	assert.Equal(t, []int{2}, f.orc.Hits())
	assert.Equal(t, []int{3}, f.goblin.Hits())
	assert.Nil(t, f.player.InEvaluation())
}

func TestResolveWhileResolving(t *testing.T) {
	f := newFixture(t, nil)
	queued := damage(t, 1, effects.ModeEnqueue, at(f.orc))

	var resolveErr, drainErr error
	outer := action(t, "outer", effects.ModeImmediate, at(f.goblin), func(ctx effects.Context) error {
		resolveErr = f.player.Resolve(ctx, queued)
		drainErr = f.player.DrainQueue(ctx)
		return nil
	})

	require.NoError(t, f.player.Evaluate(context.Background(), queued))
	require.NoError(t, f.player.Evaluate(context.Background(), outer))
	assert.ErrorIs(t, resolveErr, ErrAlreadyResolving)
	assert.ErrorIs(t, drainErr, ErrAlreadyResolving)
	assert.Empty(t, f.orc.Hits())

	require.NoError(t, f.player.DrainQueue(context.Background()))
	assert.Equal(t, []int{1}, f.orc.Hits())
}

func TestResolveRequiresTarget(t *testing.T) {
	f := newFixture(t, nil)
	hit := damage(t, 1, effects.ModeImmediate, at(f.goblin))
	assert.ErrorIs(t, f.player.Resolve(context.Background(), hit), ErrMissingTarget)
	assert.ErrorIs(t, f.player.Evaluate(context.Background(), nil), ErrNilEffect)
	assert.Zero(t, f.player.Depth())
}

func TestMaxDepth(t *testing.T) {
	f := newFixture(t, nil, WithMaxDepth(2))

	innermost := damage(t, 1, effects.ModeImmediate, at(f.goblin))
	middle := action(t, "middle", effects.ModeImmediate, at(f.goblin), func(ctx effects.Context) error {
		return ctx.EvaluateImmediately(innermost)
	})
	outer := action(t, "outer", effects.ModeImmediate, at(f.goblin), func(ctx effects.Context) error {
		return ctx.EvaluateImmediately(middle)
	})

	err := f.player.Play(context.Background(), outer)
	require.ErrorIs(t, err, ErrMaxDepth)
	assert.Empty(t, f.goblin.Hits())
	assert.Zero(t, f.player.Depth())
	assert.Nil(t, f.player.InEvaluation())
	assert.False(t, outer.HasTarget())
}

func TestEventSequence(t *testing.T) {
	f := newFixture(t, nil)
	events := recordEvents(f.bus)

	hit := damage(t, 2, effects.ModeEnqueue, at(f.goblin))
	var observed []rules.EventType
	hit.AddObserver(func(e rules.Event) { observed = append(observed, e.Type) })

	require.NoError(t, f.player.Play(context.Background(), hit))

	want := []rules.EventType{
		rules.EventEvaluated,
		rules.EventTargetSelected,
		rules.EventEnqueued,
		rules.EventResolving,
		rules.EventResolved,
	}
	got := make([]rules.EventType, 0, len(*events))
	for _, e := range *events {
		got = append(got, e.Type)
		assert.Equal(t, hit.ID(), e.EffectID)
	}
	assert.Equal(t, want, got)
	assert.Equal(t, want, observed)
	assert.Equal(t, 1, (*events)[3].Depth)
	assert.Same(t, f.goblin, (*events)[3].Target)
}

func TestResetAllowsReuse(t *testing.T) {
	f := newFixture(t, nil)
	selector, err := targeting.NewVariable[*scene.Actor](targeting.SelectRandom, scene.Standing())
	require.NoError(t, err)
	hit := damage(t, 1, effects.ModeImmediate, selector)

	for range 3 {
		require.NoError(t, f.player.Play(context.Background(), hit))
		assert.False(t, hit.HasTarget())
		_, err := hit.Value(nil, effects.ValueOriginal)
		assert.ErrorIs(t, err, effects.ErrNotCaptured)
	}
	total := f.hero.DamageTaken() + f.goblin.DamageTaken() + f.orc.DamageTaken()
	assert.Equal(t, 3, total)
	selections := 0
	for _, a := range f.scene.Actors() {
		assert.False(t, a.Highlighted(), a.Name())
		assert.False(t, a.Selected(), a.Name())
		selections += a.Selections()
	}
	assert.Equal(t, 3, selections)
}

func TestChoiceThroughPlayer(t *testing.T) {
	offered := make(chan []effects.Targetable, 1)
	f := newFixture(t, []targeting.Option{
		targeting.WithAwaitHook(func(pool []effects.Targetable) { offered <- pool }),
	})
	awaiting := recordEvents(f.bus, rules.EventAwaitingTarget)

	filter := rules.Func[effects.Context, *scene.Actor](func(_ effects.Context, a *scene.Actor) (bool, error) {
		return a.Team() == scene.TeamEnemy, nil
	})
	selector, err := targeting.NewVariable[*scene.Actor](targeting.SelectChoice, filter)
	require.NoError(t, err)
	hit := damage(t, 4, effects.ModeImmediate, selector)
	other := damage(t, 1, effects.ModeImmediate, at(f.hero))

	var g errgroup.Group
	g.Go(func() error { return f.player.Play(context.Background(), hit) })
	g.Go(func() error {
		pool := <-offered
		if len(pool) != 2 {
			return errors.New("pool should hold the two enemies")
		}
		if !f.goblin.Highlighted() || f.hero.Highlighted() {
			return errors.New("only the pool should be highlighted")
		}
		if f.player.InEvaluation() != effects.Effect(hit) {
			return errors.New("the suspended effect should stay in evaluation")
		}
		if err := f.player.Evaluate(context.Background(), other); !errors.Is(err, ErrEngineBusy) {
			return errors.New("a second flow should be refused while the first is suspended")
		}
		return f.player.Targeting().Supply(f.orc)
	})
	require.NoError(t, g.Wait())

	assert.Equal(t, []int{4}, f.orc.Hits())
	assert.Empty(t, f.goblin.Hits())
	assert.Empty(t, f.hero.Hits())
	assert.False(t, f.goblin.Highlighted())
	require.Len(t, *awaiting, 1)
	assert.Equal(t, hit.ID(), (*awaiting)[0].EffectID)
}

func TestCancelledChoiceRestoresState(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := newFixture(t, []targeting.Option{
		targeting.WithAwaitHook(func([]effects.Targetable) { cancel() }),
	})
	selector, err := targeting.NewVariable[*scene.Actor](targeting.SelectChoice, nil)
	require.NoError(t, err)
	hit := damage(t, 4, effects.ModeImmediate, selector)

	err = f.player.Play(ctx, hit)
	require.ErrorIs(t, err, targeting.ErrSelectionCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, f.player.InEvaluation())
	assert.Zero(t, f.player.Depth())
	assert.False(t, hit.HasTarget())
	for _, a := range f.scene.Actors() {
		assert.False(t, a.Highlighted(), a.Name())
		assert.Empty(t, a.Hits(), a.Name())
	}

	// The player is free again.
	require.NoError(t, f.player.Play(context.Background(), damage(t, 1, effects.ModeImmediate, at(f.goblin))))
	assert.Equal(t, []int{1}, f.goblin.Hits())
}

func TestTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	f := newFixture(t, nil, WithTracerProvider(provider))
	require.NoError(t, f.player.Play(context.Background(), damage(t, 1, effects.ModeEnqueue, at(f.goblin))))

	names := make(map[string]int)
	for _, span := range recorder.Ended() {
		names[span.Name()]++
	}
	assert.Equal(t, map[string]int{
		"engine.play":     1,
		"engine.evaluate": 1,
		"engine.drain":    1,
		"engine.resolve":  1,
	}, names)

	failing := action(t, "failing", effects.ModeImmediate, at(f.goblin), func(effects.Context) error {
		return errors.New("boom")
	})
	require.Error(t, f.player.Play(context.Background(), failing))

	var failed bool
	for _, span := range recorder.Ended() {
		if span.Name() == "engine.resolve" && span.Status().Code == codes.Error {
			failed = true
		}
	}
	assert.True(t, failed)
}

func TestNewPlayerDefaults(t *testing.T) {
	p := NewPlayer(scene.New("empty"), nil, zaptest.NewLogger(t))
	require.NotNil(t, p.Targeting())
	assert.Zero(t, p.Depth())
	assert.Nil(t, p.InResolution())
	assert.Empty(t, p.Resolving())
}

func TestQueuedEffectCannotBeEvaluatedAgain(t *testing.T) {
	f := newFixture(t, nil)
	hit := damage(t, 1, effects.ModeEnqueue, at(f.goblin))

	require.NoError(t, f.player.Evaluate(context.Background(), hit))
	assert.ErrorIs(t, f.player.Evaluate(context.Background(), hit), ErrAlreadyQueued)
	assert.Equal(t, 1, f.player.QueueLen())
	assert.Nil(t, f.player.InEvaluation())

	require.NoError(t, f.player.DrainQueue(context.Background()))
	assert.Equal(t, []int{1}, f.goblin.Hits())
	assert.False(t, f.goblin.Selected())
}

func TestMaxDepthReleasesTheRejectedTarget(t *testing.T) {
	f := newFixture(t, nil, WithMaxDepth(1))
	inner := damage(t, 1, effects.ModeImmediate, at(f.orc))
	outer := action(t, "outer", effects.ModeImmediate, at(f.goblin), func(ctx effects.Context) error {
		return ctx.EvaluateImmediately(inner)
	})

	err := f.player.Play(context.Background(), outer)
	require.ErrorIs(t, err, ErrMaxDepth)
	assert.False(t, inner.HasTarget())
	assert.False(t, f.orc.Selected())
	assert.False(t, f.goblin.Selected())
	assert.Empty(t, f.orc.Hits())

	// The same effect evaluates cleanly once there is room.
	require.NoError(t, f.player.Play(context.Background(), inner))
	assert.Equal(t, []int{1}, f.orc.Hits())
}

func TestFailedValueSampleClearsTheTarget(t *testing.T) {
	f := newFixture(t, nil)
	errCursed := errors.New("cursed roll")
	roll, err := effects.NewValue(scene.TagDamage,
		func(effects.Context) (int, error) { return 0, errCursed },
		scene.DealDamage,
		specFor("cursed strike", effects.ModeImmediate, at(f.goblin)))
	require.NoError(t, err)

	require.ErrorIs(t, f.player.Evaluate(context.Background(), roll), errCursed)
	assert.False(t, roll.HasTarget())
	assert.False(t, f.goblin.Selected())
	assert.Nil(t, f.player.InEvaluation())
	assert.Empty(t, f.goblin.Hits())
}

func TestNilHolderSourceIsSkipped(t *testing.T) {
	f := newFixture(t, nil)
	followUp, err := scene.FollowUpStrike(1)
	require.NoError(t, err)
	require.NoError(t, f.scene.AddPersistentEffect(followUp))

	hit := damage(t, 2, effects.ModeImmediate, at(f.goblin))
	var nobody *scene.Actor
	require.NoError(t, hit.SetSource(nobody))

	assert.NotPanics(t, func() {
		require.NoError(t, f.player.Play(context.Background(), hit))
	})
	// The response lands before the hit it responds to.
	assert.Equal(t, []int{1, 2}, f.goblin.Hits())
}
