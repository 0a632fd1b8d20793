package targeting

import "errors"

var (
	// ErrNilGetter is returned when a constant selector is built without a getter.
	ErrNilGetter = errors.New("target getter is nil")
	// ErrPassiveSelect is returned when a passive selector is asked to select on its own.
	ErrPassiveSelect = errors.New("passive selector only accepts assigned targets")
	// ErrUnknownMode is returned for an unknown selection mode.
	ErrUnknownMode = errors.New("unknown selection mode")
	// ErrNoTargeting is returned when a variable selector runs without a targeting manager.
	ErrNoTargeting = errors.New("no targeting manager in context")
	// ErrEmptyPool is returned when a choice is requested over an empty pool.
	ErrEmptyPool = errors.New("target pool is empty")
	// ErrSelectionPending is returned when a second choice is requested while one is open.
	ErrSelectionPending = errors.New("target selection already pending")
	// ErrNoPendingSelection is returned when a choice is supplied or cancelled with no
	// selection open.
	ErrNoPendingSelection = errors.New("no target selection pending")
	// ErrChoiceNotInPool is returned when a supplied choice is not an eligible target.
	ErrChoiceNotInPool = errors.New("choice is not in the target pool")
	// ErrSelectionCancelled is returned when a pending selection is abandoned.
	ErrSelectionCancelled = errors.New("target selection cancelled")
	// ErrSpuriousWake is returned when a selection wait ends without a target. It
	// indicates an internal inconsistency and is never retried.
	ErrSpuriousWake = errors.New("selection wait ended without a target")
)
