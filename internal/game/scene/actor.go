package scene

import (
	"fmt"
	"slices"
	"sync"

	"github.com/magefree/effect-engine/internal/game/effects"
)

// Team is the side an actor fights on.
type Team string

const (
	TeamAlly  Team = "ALLY"
	TeamEnemy Team = "ENEMY"
)

// Actor is a combatant that can be targeted and can carry persistent effects.
type Actor struct {
	highlight

	name      string
	team      Team
	maxHealth int

	mu     sync.Mutex
	health int
	hits   []int
	heals  []int

	attachments effects.Attachments
}

var (
	_ effects.Holder     = (*Actor)(nil)
	_ effects.Targetable = (*Actor)(nil)
)

// NewActor creates an actor at full health.
func NewActor(name string, team Team, maxHealth int) *Actor {
	return &Actor{name: name, team: team, maxHealth: maxHealth, health: maxHealth}
}

func (a *Actor) Name() string   { return a.name }
func (a *Actor) Team() Team     { return a.team }
func (a *Actor) MaxHealth() int { return a.maxHealth }
func (a *Actor) String() string { return a.name }

// Health returns current health.
func (a *Actor) Health() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.health
}

// Defeated reports whether health has reached zero.
func (a *Actor) Defeated() bool { return a.Health() <= 0 }

// TakeDamage records a hit of amount and lowers health, never below zero. Negative
// amounts count as zero.
func (a *Actor) TakeDamage(amount int) {
	amount = max(amount, 0)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hits = append(a.hits, amount)
	a.health = max(a.health-amount, 0)
}

// Heal restores up to amount health, never above maximum.
func (a *Actor) Heal(amount int) {
	amount = max(amount, 0)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.heals = append(a.heals, amount)
	a.health = min(a.health+amount, a.maxHealth)
}

// Hits returns every damage amount taken, in order.
func (a *Actor) Hits() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.hits)
}

// DamageTaken returns the sum of all hits.
func (a *Actor) DamageTaken() int {
	total := 0
	for _, h := range a.Hits() {
		total += h
	}
	return total
}

// Heals returns every heal amount received, in order.
func (a *Actor) Heals() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.heals)
}

func (a *Actor) PersistentEffects() []*effects.PersistentEffect { return a.attachments.List() }

func (a *Actor) AddPersistentEffect(p *effects.PersistentEffect) error {
	if err := a.attachments.Attach(a, p); err != nil {
		return fmt.Errorf("actor %s: %w", a.name, err)
	}
	return nil
}

func (a *Actor) RemovePersistentEffect(p *effects.PersistentEffect) error {
	if err := a.attachments.Detach(p); err != nil {
		return fmt.Errorf("actor %s: %w", a.name, err)
	}
	return nil
}
