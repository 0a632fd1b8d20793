package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/magefree/effect-engine/internal/game/effects"
	"github.com/magefree/effect-engine/internal/game/rules"
	"github.com/magefree/effect-engine/internal/game/targeting"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	tracerName = "github.com/magefree/effect-engine/internal/game/engine"

	// DefaultMaxDepth bounds nested resolution.
	DefaultMaxDepth = 64
)

// Player is the effect resolution engine of one scene. It evaluates effects, keeps the
// resolution queue, and lets persistent effects interrupt every resolving effect in
// stage order before its action runs.
//
// A player serves one flow of control at a time. Actions and triggers running inside
// that flow may re-enter the player with the context they were given; any other flow
// gets ErrEngineBusy until the first one returns.
type Player struct {
	scene     effects.Scene
	targeting *targeting.Manager
	logger    *zap.Logger
	tracer    trace.Tracer
	bus       *rules.EventBus

	flight sync.Mutex

	mu         sync.RWMutex
	evaluating effects.Effect

	frames *frameStack
	queue  *resolutionQueue
}

// Option configures a Player.
type Option func(*playerOptions)

type playerOptions struct {
	maxDepth      int
	queueCapacity int
	bus           *rules.EventBus
	provider      trace.TracerProvider
}

// WithMaxDepth bounds nested resolution. Zero or less keeps DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(o *playerOptions) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

// WithQueueCapacity preallocates the resolution queue.
func WithQueueCapacity(capacity int) Option {
	return func(o *playerOptions) { o.queueCapacity = capacity }
}

// WithEventBus publishes lifecycle events to bus.
func WithEventBus(bus *rules.EventBus) Option {
	return func(o *playerOptions) { o.bus = bus }
}

// WithTracerProvider traces evaluation and resolution with tp instead of the global
// provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *playerOptions) { o.provider = tp }
}

// NewPlayer creates the player for scene. A nil manager gets a default one.
func NewPlayer(scene effects.Scene, manager *targeting.Manager, logger *zap.Logger, opts ...Option) *Player {
	if logger == nil {
		logger = zap.NewNop()
	}
	if manager == nil {
		manager = targeting.NewManager(logger)
	}
	o := playerOptions{maxDepth: DefaultMaxDepth, queueCapacity: 16}
	for _, opt := range opts {
		opt(&o)
	}
	if o.provider == nil {
		o.provider = otel.GetTracerProvider()
	}
	return &Player{
		scene:     scene,
		targeting: manager,
		logger:    logger,
		tracer:    o.provider.Tracer(tracerName),
		bus:       o.bus,
		frames:    newFrameStack(o.maxDepth),
		queue:     newResolutionQueue(o.queueCapacity),
	}
}

// Scene returns the scene this player resolves in.
func (p *Player) Scene() effects.Scene { return p.scene }

// Targeting returns the targeting manager.
func (p *Player) Targeting() *targeting.Manager { return p.targeting }

// InEvaluation returns the effect being evaluated, or nil.
func (p *Player) InEvaluation() effects.Effect {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.evaluating
}

// InResolution returns the innermost resolving effect, or nil.
func (p *Player) InResolution() effects.Effect { return p.frames.Current() }

// Depth returns the number of effects currently resolving.
func (p *Player) Depth() int { return p.frames.Depth() }

// Resolving returns the resolving effects, outermost first.
func (p *Player) Resolving() []effects.Effect { return p.frames.List() }

// QueueLen returns the number of queued effects.
func (p *Player) QueueLen() int { return p.queue.Len() }

// Queued returns the queued effects, next first.
func (p *Player) Queued() []effects.Effect { return p.queue.List() }

// acquire joins the flow already holding the player, or takes the player for a new one.
func (p *Player) acquire(ctx context.Context) (*resolutionContext, func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if owner, _ := ctx.Value(flightKey{}).(*Player); owner == p {
		if rc, ok := ctx.(*resolutionContext); ok && rc.player == p {
			return rc, func() {}, nil
		}
		return &resolutionContext{Context: ctx, player: p}, func() {}, nil
	}
	if !p.flight.TryLock() {
		return nil, nil, ErrEngineBusy
	}
	inner := context.WithValue(ctx, flightKey{}, p)
	return &resolutionContext{Context: inner, player: p}, p.flight.Unlock, nil
}

// Evaluate evaluates effect. It fails with ErrAlreadyEvaluating if another effect is
// in evaluation.
func (p *Player) Evaluate(ctx context.Context, effect effects.Effect) error {
	rc, release, err := p.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return p.evaluate(rc, effect)
}

// EvaluateImmediately evaluates effect nested inside whatever is being evaluated,
// restoring the outer in-evaluation effect afterwards.
func (p *Player) EvaluateImmediately(ctx context.Context, effect effects.Effect) error {
	rc, release, err := p.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return p.evaluateImmediately(rc, effect)
}

// Resolve resolves an effect that already has a target. It fails with
// ErrAlreadyResolving if another effect is resolving.
func (p *Player) Resolve(ctx context.Context, effect effects.Effect) error {
	rc, release, err := p.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return p.resolve(rc, effect)
}

// ResolveImmediately resolves effect nested inside the current resolution.
func (p *Player) ResolveImmediately(ctx context.Context, effect effects.Effect) error {
	rc, release, err := p.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return p.resolveImmediately(rc, effect)
}

// DrainQueue resolves queued effects from the front until the queue is empty,
// including effects queued while draining.
func (p *Player) DrainQueue(ctx context.Context) error {
	rc, release, err := p.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return p.drain(rc)
}

// ClearQueue drops every queued effect without resolving it, resetting each one and
// releasing its target. It returns the dropped effects, next first.
func (p *Player) ClearQueue(ctx context.Context) ([]effects.Effect, error) {
	_, release, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	dropped := p.queue.Clear()
	for _, e := range dropped {
		target := e.Target()
		e.Reset()
		p.targeting.Release(target)
	}
	if len(dropped) > 0 {
		p.logger.Debug("cleared resolution queue", zap.Int("dropped", len(dropped)))
	}
	return dropped, nil
}

// Play evaluates a card's effects in order, then drains the queue.
func (p *Player) Play(ctx context.Context, played ...effects.Effect) error {
	rc, release, err := p.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	spanCtx, span := p.tracer.Start(rc, "engine.play", trace.WithAttributes(attribute.Int("effects", len(played))))
	defer span.End()
	rc = rc.with(spanCtx)

	for _, e := range played {
		if err := p.evaluate(rc, e); err != nil {
			return p.fail(span, err)
		}
	}
	if err := p.drain(rc); err != nil {
		return p.fail(span, err)
	}
	return nil
}

// Notify routes event through the pipeline as a zero-action effect targeting the scene,
// so persistent effects can react to it. Enqueued notifications wait for the next drain.
func (p *Player) Notify(ctx context.Context, event rules.EventType, source any, mode effects.Mode) error {
	n, err := NewNotification(event, source, mode)
	if err != nil {
		return err
	}
	return p.Evaluate(ctx, n)
}

// NewNotification builds the notification effect used by Notify.
func NewNotification(event rules.EventType, source any, mode effects.Mode) (*effects.NotificationEffect, error) {
	selector, err := targeting.NewConstant(effects.SceneGetter)
	if err != nil {
		return nil, err
	}
	n, err := effects.NewNotification(event, effects.Spec{
		Mode:     mode,
		Trigger:  rules.Always[effects.Context](),
		Selector: selector,
	})
	if err != nil {
		return nil, err
	}
	if source != nil {
		if err := n.SetSource(source); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (p *Player) drain(rc *resolutionContext) error {
	if current := p.frames.Current(); current != nil {
		return fmt.Errorf("%w: cannot drain the queue while %s resolves", ErrAlreadyResolving, current.Description())
	}

	spanCtx, span := p.tracer.Start(rc, "engine.drain")
	defer span.End()
	rc = rc.with(spanCtx)

	resolved := 0
	for {
		e, ok := p.queue.PopFront()
		if !ok {
			break
		}
		if err := p.resolve(rc, e); err != nil {
			return p.fail(span, err)
		}
		resolved++
	}
	span.SetAttributes(attribute.Int("resolved", resolved))
	return nil
}

func (p *Player) swapEvaluation(effect effects.Effect) effects.Effect {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev := p.evaluating
	p.evaluating = effect
	return prev
}

func (p *Player) beginEvaluation(effect effects.Effect) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.evaluating != nil {
		return false
	}
	p.evaluating = effect
	return true
}

func (p *Player) evaluateImmediately(rc *resolutionContext, effect effects.Effect) error {
	saved := p.swapEvaluation(nil)
	defer p.swapEvaluation(saved)
	return p.evaluate(rc, effect)
}

// evaluate checks the trigger, acquires a target and dispatches by resolution mode.
// The in-evaluation slot covers the trigger and target checks only; it is clear again
// before dispatch so that a resolving effect's interrupts evaluate normally.
func (p *Player) evaluate(rc *resolutionContext, effect effects.Effect) error {
	if effect == nil {
		return ErrNilEffect
	}
	if p.queue.Contains(effect) {
		return fmt.Errorf("%w: %s", ErrAlreadyQueued, effect.Description())
	}
	if !p.beginEvaluation(effect) {
		return fmt.Errorf("%w: cannot evaluate %s", ErrAlreadyEvaluating, effect.Description())
	}

	spanCtx, span := p.tracer.Start(rc, "engine.evaluate", trace.WithAttributes(
		attribute.String("effect.id", effect.ID()),
		attribute.String("effect.kind", effect.Kind().String()),
		attribute.String("effect.mode", effect.Mode().String()),
	))
	defer span.End()
	rc = rc.with(spanCtx)

	p.publish(rules.EventEvaluated, effect, nil)
	proceed, err := p.admit(rc, effect)
	p.swapEvaluation(nil)
	if err != nil {
		return p.fail(span, err)
	}
	if !proceed {
		span.SetAttributes(attribute.Bool("dropped", true))
		return nil
	}

	switch effect.Mode() {
	case effects.ModeEnqueue, effects.ModeEnqueueOnTop:
		if !effect.HasTarget() {
			return p.fail(span, fmt.Errorf("%w: cannot enqueue %s", ErrMissingTarget, effect.Description()))
		}
		if effect.Mode() == effects.ModeEnqueue {
			p.queue.PushBack(effect)
		} else {
			p.queue.PushFront(effect)
		}
		p.logger.Debug("enqueued effect",
			zap.String("effect_id", effect.ID()),
			zap.String("effect", effect.Description()),
			zap.Stringer("mode", effect.Mode()),
			zap.Int("queue_len", p.queue.Len()))
		p.publish(rules.EventEnqueued, effect, nil)
		return nil
	default:
		if err := p.resolveImmediately(rc, effect); err != nil {
			return p.fail(span, err)
		}
		return nil
	}
}

// admit reports whether effect's trigger is active and a target was acquired.
func (p *Player) admit(rc *resolutionContext, effect effects.Effect) (bool, error) {
	active, err := effect.Trigger().IsActivated(rc)
	if err != nil {
		return false, fmt.Errorf("trigger of %s: %w", effect.Description(), err)
	}
	if !active {
		p.drop(effect, rules.DropTriggerInactive)
		return false, nil
	}

	ok, err := p.targeting.SelectTarget(rc, effect)
	if err != nil {
		return false, err
	}
	if !ok {
		p.drop(effect, rules.DropNoTarget)
		return false, nil
	}
	p.publish(rules.EventTargetSelected, effect, nil)
	return true, nil
}

func (p *Player) drop(effect effects.Effect, reason rules.DropReason) {
	// A target pushed by a deployer must not leak into the next evaluation.
	if effect.HasTarget() {
		effect.Reset()
	}
	p.logger.Debug("dropped effect",
		zap.String("effect_id", effect.ID()),
		zap.String("effect", effect.Description()),
		zap.String("reason", string(reason)))
	p.publish(rules.EventDropped, effect, func(e *rules.Event) { e.Reason = reason })
}

func (p *Player) resolve(rc *resolutionContext, effect effects.Effect) error {
	if effect == nil {
		return ErrNilEffect
	}
	if current := p.frames.Current(); current != nil {
		return fmt.Errorf("%w: cannot resolve %s while %s resolves",
			ErrAlreadyResolving, effect.Description(), current.Description())
	}
	return p.resolveImmediately(rc, effect)
}

// resolveImmediately runs the interrupt protocol for effect, then its action.
func (p *Player) resolveImmediately(rc *resolutionContext, effect effects.Effect) error {
	if effect == nil {
		return ErrNilEffect
	}
	if !effect.HasTarget() {
		return fmt.Errorf("%w: cannot resolve %s", ErrMissingTarget, effect.Description())
	}
	if err := p.frames.Push(effect); err != nil {
		target := effect.Target()
		effect.Reset()
		p.targeting.Release(target)
		return err
	}

	spanCtx, span := p.tracer.Start(rc, "engine.resolve", trace.WithAttributes(
		attribute.String("effect.id", effect.ID()),
		attribute.String("effect.kind", effect.Kind().String()),
		attribute.Int("depth", p.frames.Depth()),
	))
	defer span.End()
	rc = rc.with(spanCtx)

	target := effect.Target()
	err := p.interruptAndExecute(rc, effect)
	if popErr := p.frames.Pop(effect); popErr != nil && err == nil {
		err = popErr
	}
	if err == nil {
		p.publish(rules.EventResolved, effect, nil)
		p.logger.Debug("resolved effect",
			zap.String("effect_id", effect.ID()),
			zap.String("effect", effect.Description()),
			zap.Int("depth", p.frames.Depth()))
	}
	effect.Reset()
	p.targeting.Release(target)
	if err != nil {
		return p.fail(span, err)
	}
	return nil
}

func (p *Player) interruptAndExecute(rc *resolutionContext, effect effects.Effect) error {
	p.publish(rules.EventResolving, effect, nil)

	candidates := p.interruptCandidates(effect)
	if len(candidates) > 0 {
		p.logger.Debug("interrupt candidates",
			zap.String("effect_id", effect.ID()),
			zap.String("effect", effect.Description()),
			zap.Int("count", len(candidates)))
	}
	for _, candidate := range candidates {
		p.publish(rules.EventInterrupting, candidate, func(e *rules.Event) {
			e.Stage = candidate.Stage().String()
		})
		if err := p.evaluate(rc, candidate); err != nil {
			return fmt.Errorf("interrupt %s of %s: %w", candidate.Description(), effect.Description(), err)
		}
	}

	if err := effect.Execute(rc); err != nil {
		return fmt.Errorf("execute %s: %w", effect.Description(), err)
	}
	return nil
}

func (p *Player) publish(eventType rules.EventType, effect effects.Effect, mutate func(*rules.Event)) {
	event := rules.NewEvent(eventType, effect.ID(), effect.Description())
	event.Kind = effect.Kind().String()
	event.Source = effect.Source()
	event.Target = effect.Target()
	event.Depth = p.frames.Depth()
	if persistent, ok := effect.(*effects.PersistentEffect); ok {
		event.Stage = persistent.Stage().String()
	}
	if mutate != nil {
		mutate(&event)
	}
	effect.Notify(event)
	if p.bus != nil {
		p.bus.Publish(event)
	}
}

func (p *Player) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
