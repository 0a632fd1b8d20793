package rules

// Stage fixes when a persistent effect interrupts a resolving effect. Stages are
// ordered; interrupts for lower stages are always evaluated first.
type Stage int

const (
	// StageActivation reacts to the unmodified effect.
	StageActivation Stage = iota
	// StageModification may alter the effect, e.g. by appending a value modifier.
	StageModification
	// StageResolution sees possibly modified state and may still intervene.
	StageResolution
	// StageResponse reacts once resolution is effectively final.
	StageResponse
)

var stageNames = [...]string{"ACTIVATION", "MODIFICATION", "RESOLUTION", "RESPONSE"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "UNKNOWN"
	}
	return stageNames[s]
}

// Valid reports whether s is one of the four defined stages.
func (s Stage) Valid() bool {
	return s >= StageActivation && s <= StageResponse
}
