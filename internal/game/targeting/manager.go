package targeting

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/magefree/effect-engine/internal/game/effects"
	"github.com/magefree/effect-engine/internal/game/rules"
	"go.uber.org/zap"
)

// Manager mediates target pools for one engine. It keeps the forbidden set, tells
// targetables when they enter or leave a pool or get selected, and bridges player
// choice: the evaluating flow waits in AwaitChoice until another flow calls Supply.
type Manager struct {
	logger  *zap.Logger
	bus     *rules.EventBus
	timeout time.Duration
	onAwait func(pool []effects.Targetable)

	mu        sync.Mutex
	cond      *sync.Cond
	rng       *rand.Rand
	forbidden effects.TargetSet
	active    []effects.Targetable
	selected  map[effects.Targetable]int
	selecting effects.Effect
	pending   *choiceRequest
}

type choiceRequest struct {
	pool      []effects.Targetable
	choice    effects.Targetable
	done      bool
	cancelled bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithSeed makes RANDOM selection reproducible. Zero keeps a random seed.
func WithSeed(seed uint64) Option {
	return func(m *Manager) {
		if seed != 0 {
			m.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		}
	}
}

// WithSelectionTimeout bounds every player choice. Zero waits forever.
func WithSelectionTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

// WithAwaitHook registers a callback run, outside any lock, once a choice is pending.
// Input layers use it to prompt the player.
func WithAwaitHook(hook func(pool []effects.Targetable)) Option {
	return func(m *Manager) { m.onAwait = hook }
}

// WithEventBus publishes AWAITING_TARGET events to bus.
func WithEventBus(bus *rules.EventBus) Option {
	return func(m *Manager) { m.bus = bus }
}

// NewManager creates a targeting manager.
func NewManager(logger *zap.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		logger:    logger,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		forbidden: effects.NewTargetSet(),
		selected:  make(map[effects.Targetable]int),
	}
	m.cond = sync.NewCond(&m.mu)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Forbid excludes targets from every selection until allowed again.
func (m *Manager) Forbid(targets ...effects.Targetable) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range targets {
		m.forbidden.Add(t)
	}
}

// Allow lifts a previous Forbid.
func (m *Manager) Allow(targets ...effects.Targetable) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range targets {
		m.forbidden.Remove(t)
	}
}

// Forbidden returns a copy of the forbidden set.
func (m *Manager) Forbidden() effects.TargetSet {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.forbidden.Clone()
}

// Active returns the pool currently offered, if any.
func (m *Manager) Active() []effects.Targetable {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.active)
}

// SelectTarget acquires a target for effect. A target pushed earlier by a deployer is
// kept if it is not forbidden; otherwise the effect's selector picks one. It reports
// false when the effect has no valid target.
func (m *Manager) SelectTarget(ctx effects.Context, effect effects.Effect) (bool, error) {
	forbidden := m.Forbidden()

	if effect.HasTarget() {
		if forbidden.Contains(effect.Target()) {
			m.logger.Debug("assigned target is forbidden",
				zap.String("effect_id", effect.ID()),
				zap.String("effect", effect.Description()))
			return false, nil
		}
	} else {
		m.setSelecting(effect)
		ok, err := effect.SelectTarget(ctx, forbidden)
		m.setSelecting(nil)
		if err != nil {
			return false, fmt.Errorf("select target for %s: %w", effect.Description(), err)
		}
		if !ok {
			return false, nil
		}
	}

	if err := effect.TargetAcquired(ctx); err != nil {
		effect.Reset()
		return false, err
	}
	m.markSelected(effect.Target())
	return true, nil
}

// Release tells target its effect is done with it.
func (m *Manager) Release(target effects.Targetable) {
	if target == nil {
		return
	}
	m.mu.Lock()
	count, ok := m.selected[target]
	if !ok {
		m.mu.Unlock()
		return
	}
	n := count - 1
	if n > 0 {
		m.selected[target] = n
	} else {
		delete(m.selected, target)
	}
	m.mu.Unlock()
	if n <= 0 {
		target.OnDeselected()
	}
}

func (m *Manager) markSelected(target effects.Targetable) {
	if target == nil {
		return
	}
	m.mu.Lock()
	m.selected[target]++
	first := m.selected[target] == 1
	m.mu.Unlock()
	if first {
		target.OnSelected()
	}
}

func (m *Manager) setSelecting(effect effects.Effect) {
	m.mu.Lock()
	m.selecting = effect
	m.mu.Unlock()
}

// Activate marks pool as the offered targets.
func (m *Manager) Activate(pool []effects.Targetable) {
	m.mu.Lock()
	m.active = slices.Clone(pool)
	m.mu.Unlock()
	for _, t := range pool {
		t.OnActivated()
	}
}

// Deactivate withdraws pool.
func (m *Manager) Deactivate(pool []effects.Targetable) {
	m.mu.Lock()
	m.active = nil
	m.mu.Unlock()
	for _, t := range pool {
		t.OnDeactivated()
	}
}

// PickRandom picks uniformly from pool, or returns nil for an empty pool.
func (m *Manager) PickRandom(pool []effects.Targetable) effects.Targetable {
	if len(pool) == 0 {
		return nil
	}
	m.mu.Lock()
	i := m.rng.IntN(len(pool))
	m.mu.Unlock()
	return pool[i]
}

// AwaitChoice blocks until Supply provides a member of pool, Cancel is called, ctx is
// done, or the selection timeout elapses.
func (m *Manager) AwaitChoice(ctx context.Context, pool []effects.Targetable) (effects.Targetable, error) {
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	req := &choiceRequest{pool: slices.Clone(pool)}
	m.mu.Lock()
	if m.pending != nil {
		m.mu.Unlock()
		return nil, ErrSelectionPending
	}
	m.pending = req
	selecting := m.selecting
	m.mu.Unlock()

	stop := context.AfterFunc(ctx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if !req.done {
			req.done = true
			req.cancelled = true
			m.cond.Broadcast()
		}
	})
	defer stop()

	m.logger.Debug("awaiting target choice", zap.Int("pool_size", len(pool)))
	if m.bus != nil {
		event := rules.NewEvent(rules.EventAwaitingTarget, "", "")
		if selecting != nil {
			event = rules.NewEvent(rules.EventAwaitingTarget, selecting.ID(), selecting.Description())
			event.Kind = selecting.Kind().String()
			event.Source = selecting.Source()
		}
		m.bus.Publish(event)
	}
	if m.onAwait != nil {
		m.onAwait(slices.Clone(pool))
	}

	m.mu.Lock()
	for !req.done {
		m.cond.Wait()
	}
	if m.pending == req {
		m.pending = nil
	}
	choice, cancelled := req.choice, req.cancelled
	m.mu.Unlock()

	if cancelled {
		if err := context.Cause(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSelectionCancelled, err)
		}
		return nil, ErrSelectionCancelled
	}
	if choice == nil {
		return nil, ErrSpuriousWake
	}
	return choice, nil
}

// Supply hands the player's choice to the waiting flow.
func (m *Manager) Supply(choice effects.Targetable) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	req := m.pending
	if req == nil || req.done {
		m.logger.Warn("target supplied with no selection pending")
		return ErrNoPendingSelection
	}
	if choice == nil || !containsTargetable(req.pool, choice) {
		m.logger.Warn("rejected target choice outside the pool", zap.Int("pool_size", len(req.pool)))
		return ErrChoiceNotInPool
	}
	req.choice = choice
	req.done = true
	m.cond.Broadcast()
	return nil
}

// Cancel abandons the pending selection. The waiting flow gets ErrSelectionCancelled.
func (m *Manager) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	req := m.pending
	if req == nil || req.done {
		return ErrNoPendingSelection
	}
	req.done = true
	req.cancelled = true
	m.cond.Broadcast()
	m.logger.Debug("target selection cancelled")
	return nil
}

// Pending returns the pool of the open selection, if there is one.
func (m *Manager) Pending() ([]effects.Targetable, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil || m.pending.done {
		return nil, false
	}
	return slices.Clone(m.pending.pool), true
}
