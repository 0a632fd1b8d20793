package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/magefree/effect-engine/internal/config"
	"github.com/magefree/effect-engine/internal/game/effects"
	"github.com/magefree/effect-engine/internal/game/engine"
	"github.com/magefree/effect-engine/internal/game/replay"
	"github.com/magefree/effect-engine/internal/game/rules"
	"github.com/magefree/effect-engine/internal/game/scene"
	"github.com/magefree/effect-engine/internal/game/targeting"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// chooser answers a player target prompt.
type chooser func(ctx context.Context, pool []effects.Targetable) (effects.Targetable, error)

func firstChoice(_ context.Context, pool []effects.Targetable) (effects.Targetable, error) {
	return pool[0], nil
}

// promptChoice asks on out and reads a 1-based index from in until it gets a valid one.
func promptChoice(in *bufio.Reader, out io.Writer) chooser {
	return func(_ context.Context, pool []effects.Targetable) (effects.Targetable, error) {
		for {
			fmt.Fprintln(out, "Choose a target:")
			for i, t := range pool {
				fmt.Fprintf(out, "  %d) %v\n", i+1, t)
			}
			fmt.Fprint(out, "> ")
			line, err := in.ReadString('\n')
			if n, convErr := strconv.Atoi(strings.TrimSpace(line)); convErr == nil && n >= 1 && n <= len(pool) {
				return pool[n-1], nil
			}
			if err != nil {
				return nil, err
			}
			fmt.Fprintln(out, "invalid choice")
		}
	}
}

type simulator struct {
	cfg      *config.Config
	logger   *zap.Logger
	out      io.Writer
	choose   chooser
	recorder *replay.Recorder // nil when replays are off
}

// table is one freshly set up encounter.
type table struct {
	scene   *scene.Scene
	hero    *scene.Actor
	goblin  *scene.Actor
	orc     *scene.Actor
	manager *targeting.Manager
	player  *engine.Player
	offered chan []effects.Targetable
}

func (s *simulator) newTable(name string) *table {
	t := &table{
		scene:   scene.New(name),
		hero:    scene.NewActor("hero", scene.TeamAlly, 20),
		goblin:  scene.NewActor("goblin", scene.TeamEnemy, 10),
		orc:     scene.NewActor("orc", scene.TeamEnemy, 12),
		offered: make(chan []effects.Targetable, 1),
	}
	t.scene.AddActors(t.hero, t.goblin, t.orc)

	logger := s.logger.With(zap.String("scene", name))
	bus := rules.NewEventBus()
	bus.Subscribe(func(e rules.Event) {
		logger.Debug("effect event",
			zap.String("event", string(e.Type)),
			zap.String("effect", e.Description),
			zap.String("kind", e.Kind),
			zap.String("stage", e.Stage),
			zap.String("reason", string(e.Reason)),
			zap.Int("depth", e.Depth))
	})

	opts := []targeting.Option{
		targeting.WithSelectionTimeout(s.cfg.Targeting.SelectionTimeout),
		targeting.WithEventBus(bus),
		targeting.WithAwaitHook(func(pool []effects.Targetable) { t.offered <- pool }),
	}
	if s.cfg.Targeting.Seed != 0 {
		opts = append(opts, targeting.WithSeed(s.cfg.Targeting.Seed))
	}
	if s.recorder != nil {
		s.recorder.Attach(name, bus)
	}

	t.manager = targeting.NewManager(logger, opts...)
	t.player = engine.NewPlayer(t.scene, t.manager, logger,
		engine.WithMaxDepth(s.cfg.Engine.MaxDepth),
		engine.WithQueueCapacity(s.cfg.Engine.QueueCapacity),
		engine.WithEventBus(bus),
	)
	return t
}

// play runs a card while a second goroutine answers any target prompt it raises.
func (s *simulator) play(ctx context.Context, t *table, played ...effects.Effect) error {
	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})

	g.Go(func() error {
		defer close(done)
		return t.player.Play(gctx, played...)
	})
	g.Go(func() error {
		for {
			select {
			case pool := <-t.offered:
				choice, err := s.choose(gctx, pool)
				if err != nil {
					// The play goroutine reports the cancelled selection.
					s.logger.Warn("failed to read target choice", zap.Error(err))
					_ = t.manager.Cancel()
					continue
				}
				if err := t.manager.Supply(choice); err != nil {
					return err
				}
			case <-done:
				return nil
			}
		}
	})
	return g.Wait()
}

func (s *simulator) run(ctx context.Context, name string) error {
	for _, sc := range scenarios {
		if name != "all" && name != sc.name {
			continue
		}
		t := s.newTable(sc.name)
		if err := sc.play(ctx, s, t); err != nil {
			return fmt.Errorf("scenario %s: %w", sc.name, err)
		}
		s.summarize(sc.name, sc.description, t)
		if s.recorder != nil {
			if err := s.recorder.Save(sc.name); err != nil {
				return err
			}
		}
		if name != "all" {
			return nil
		}
	}
	if name != "all" {
		return fmt.Errorf("unknown scenario %q (want all, %s)", name, scenarioNames())
	}
	return nil
}

func (s *simulator) summarize(name, description string, t *table) {
	fmt.Fprintf(s.out, "== %s: %s\n", name, description)
	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ACTOR\tTEAM\tHEALTH\tHITS\tHEALS")
	for _, a := range t.scene.Actors() {
		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%v\t%v\n", a.Name(), a.Team(), a.Health(), a.MaxHealth(), a.Hits(), a.Heals())
	}
	w.Flush()
	fmt.Fprintln(s.out)
}
