package effects

//go:generate mockgen -destination=mock/mock_targetable.go -package=mockeffects -source=targetable.go

// Targetable is anything an effect can target. The hooks are advisory, for UI
// highlighting; they never influence resolution.
type Targetable interface {
	OnActivated()
	OnDeactivated()
	OnSelected()
	OnDeselected()
}

// TargetSet is a set of targetables compared by identity.
type TargetSet map[Targetable]struct{}

// NewTargetSet builds a set from targets, ignoring nils.
func NewTargetSet(targets ...Targetable) TargetSet {
	set := make(TargetSet, len(targets))
	for _, t := range targets {
		set.Add(t)
	}
	return set
}

// Contains reports whether t is in the set. A nil set contains nothing.
func (s TargetSet) Contains(t Targetable) bool {
	if s == nil || t == nil {
		return false
	}
	_, ok := s[t]
	return ok
}

// Add inserts t.
func (s TargetSet) Add(t Targetable) {
	if t != nil {
		s[t] = struct{}{}
	}
}

// Remove deletes t.
func (s TargetSet) Remove(t Targetable) {
	delete(s, t)
}

// Clone returns an independent copy.
func (s TargetSet) Clone() TargetSet {
	out := make(TargetSet, len(s))
	for t := range s {
		out[t] = struct{}{}
	}
	return out
}
