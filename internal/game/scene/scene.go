package scene

import (
	"fmt"
	"slices"
	"sync"

	"github.com/magefree/effect-engine/internal/game/effects"
)

// Scene is an encounter: the root holder and the set of actors that can be targeted.
type Scene struct {
	highlight

	name string

	mu     sync.RWMutex
	actors []*Actor

	attachments effects.Attachments
}

var _ effects.Scene = (*Scene)(nil)

// New creates an empty scene.
func New(name string) *Scene {
	return &Scene{name: name}
}

func (s *Scene) Name() string   { return s.name }
func (s *Scene) String() string { return s.name }

// AddActors places actors in the scene, in order. Actors already present are skipped.
func (s *Scene) AddActors(actors ...*Actor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range actors {
		if a != nil && !slices.Contains(s.actors, a) {
			s.actors = append(s.actors, a)
		}
	}
}

// RemoveActor takes an actor out of the scene.
func (s *Scene) RemoveActor(a *Actor) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := slices.Index(s.actors, a)
	if idx < 0 {
		return false
	}
	s.actors = slices.Delete(s.actors, idx, idx+1)
	return true
}

// Actors returns the actors in placement order.
func (s *Scene) Actors() []*Actor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.actors)
}

// Team returns the actors on team.
func (s *Scene) Team(team Team) []*Actor {
	var out []*Actor
	for _, a := range s.Actors() {
		if a.Team() == team {
			out = append(out, a)
		}
	}
	return out
}

// Targetables lists the scene itself, then every actor.
func (s *Scene) Targetables() []effects.Targetable {
	actors := s.Actors()
	out := make([]effects.Targetable, 0, len(actors)+1)
	out = append(out, s)
	for _, a := range actors {
		out = append(out, a)
	}
	return out
}

// Holders lists the scene itself, then every actor.
func (s *Scene) Holders() []effects.Holder {
	actors := s.Actors()
	out := make([]effects.Holder, 0, len(actors)+1)
	out = append(out, s)
	for _, a := range actors {
		out = append(out, a)
	}
	return out
}

func (s *Scene) PersistentEffects() []*effects.PersistentEffect { return s.attachments.List() }

func (s *Scene) AddPersistentEffect(p *effects.PersistentEffect) error {
	if err := s.attachments.Attach(s, p); err != nil {
		return fmt.Errorf("scene %s: %w", s.name, err)
	}
	return nil
}

func (s *Scene) RemovePersistentEffect(p *effects.PersistentEffect) error {
	if err := s.attachments.Detach(p); err != nil {
		return fmt.Errorf("scene %s: %w", s.name, err)
	}
	return nil
}
