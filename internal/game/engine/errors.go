package engine

import "errors"

var (
	// ErrAlreadyEvaluating is returned when Evaluate is entered while another effect is
	// being evaluated. Nested evaluation goes through EvaluateImmediately.
	ErrAlreadyEvaluating = errors.New("an effect is already being evaluated")
	// ErrAlreadyResolving is returned when Resolve or DrainQueue is entered while an
	// effect is resolving. Nested resolution goes through ResolveImmediately.
	ErrAlreadyResolving = errors.New("an effect is already resolving")
	// ErrMaxDepth is returned when nested resolution exceeds the configured depth.
	ErrMaxDepth = errors.New("maximum resolution depth exceeded")
	// ErrMissingTarget is returned when an effect reaches the queue or resolution
	// without a target.
	ErrMissingTarget = errors.New("effect has no target")
	// ErrEngineBusy is returned when a second flow enters a player while another flow
	// holds it.
	ErrEngineBusy = errors.New("effect player is busy")
	// ErrNilEffect is returned for a nil effect.
	ErrNilEffect = errors.New("effect is nil")
	// ErrAlreadyQueued is returned when an effect waiting in the queue is evaluated again.
	ErrAlreadyQueued = errors.New("effect is already queued")
	// ErrFrameMismatch is returned when frames are popped out of order.
	ErrFrameMismatch = errors.New("resolution frame mismatch")
)
