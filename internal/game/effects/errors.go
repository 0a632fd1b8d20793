package effects

import "errors"

var (
	// ErrNilTrigger is returned when an effect is built without a trigger.
	ErrNilTrigger = errors.New("effect trigger is nil")
	// ErrNilSelector is returned when an effect is built without a target selector.
	ErrNilSelector = errors.New("effect target selector is nil")
	// ErrNilAction is returned when a value effect has no generator or action.
	ErrNilAction = errors.New("effect action is nil")
	// ErrInvalidMode is returned for an unknown resolution mode.
	ErrInvalidMode = errors.New("invalid resolution mode")
	// ErrInvalidStage is returned for an unknown activation stage.
	ErrInvalidStage = errors.New("invalid activation stage")
	// ErrEmptyEffects is returned when a deployer is built with no owned effects.
	ErrEmptyEffects = errors.New("deployer needs at least one effect")
	// ErrNotImmediate is returned when an effect must resolve immediately but does not.
	ErrNotImmediate = errors.New("effect must use immediate resolution")
	// ErrSourceAlreadySet is returned when a source is replaced without reassignment.
	ErrSourceAlreadySet = errors.New("effect source already set")
	// ErrAlreadyAttached is returned when a persistent effect is added to a holder twice
	// or while it belongs to another holder.
	ErrAlreadyAttached = errors.New("persistent effect already attached")
	// ErrNotAttached is returned when removing a persistent effect the holder does not carry.
	ErrNotAttached = errors.New("persistent effect not attached")
	// ErrNoTarget is returned when an operation needs a target that is not set.
	ErrNoTarget = errors.New("effect has no target")
	// ErrNotCaptured is returned when reading an original value before target acquisition.
	ErrNotCaptured = errors.New("original value not captured")
	// ErrInvalidTarget is returned when a target fails selector validation.
	ErrInvalidTarget = errors.New("invalid target")
)
