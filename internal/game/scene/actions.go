package scene

import (
	"errors"
	"fmt"

	"github.com/magefree/effect-engine/internal/game/effects"
	"github.com/magefree/effect-engine/internal/game/rules"
)

// Value effect tags.
const (
	TagDamage = "damage"
	TagHeal   = "heal"
)

// ErrNotAnActor is returned when an actor action targets something else.
var ErrNotAnActor = errors.New("target is not an actor")

// DealDamage is the action of damage effects.
func DealDamage(_ effects.Context, target effects.Targetable, value int) error {
	a, ok := target.(*Actor)
	if !ok {
		return fmt.Errorf("%w: %T", ErrNotAnActor, target)
	}
	a.TakeDamage(value)
	return nil
}

// Heal is the action of heal effects.
func Heal(_ effects.Context, target effects.Targetable, value int) error {
	a, ok := target.(*Actor)
	if !ok {
		return fmt.Errorf("%w: %T", ErrNotAnActor, target)
	}
	a.Heal(value)
	return nil
}

// NewDamage builds a damage effect of a fixed amount.
func NewDamage(amount int, spec effects.Spec) (*effects.ValueEffect, error) {
	if spec.Description == "" {
		spec.Description = fmt.Sprintf("deal %d damage", amount)
	}
	return effects.NewValue(TagDamage, effects.Fixed(amount), DealDamage, spec)
}

// NewHeal builds a heal effect of a fixed amount.
func NewHeal(amount int, spec effects.Spec) (*effects.ValueEffect, error) {
	if spec.Description == "" {
		spec.Description = fmt.Sprintf("heal %d", amount)
	}
	return effects.NewValue(TagHeal, effects.Fixed(amount), Heal, spec)
}

// OnTeam is fulfilled when the subject is an actor on team.
func OnTeam(team Team) rules.Condition[effects.Context, effects.Targetable] {
	return rules.Func[effects.Context, effects.Targetable](func(_ effects.Context, subject effects.Targetable) (bool, error) {
		a, ok := subject.(*Actor)
		return ok && a.Team() == team, nil
	})
}

// Standing is fulfilled when the actor has health left.
func Standing() rules.Condition[effects.Context, *Actor] {
	return rules.Func[effects.Context, *Actor](func(_ effects.Context, a *Actor) (bool, error) {
		return a != nil && !a.Defeated(), nil
	})
}
