package rules

import "errors"

var (
	// ErrOperandCount is returned when a logical operator has the wrong number of operands.
	ErrOperandCount = errors.New("invalid operand count for logical operator")

	// ErrNilOperand is returned when a logical operator holds a nil operand.
	ErrNilOperand = errors.New("nil operand in logical operator")

	// ErrNilCondition is returned when a trigger is bound without a condition or subject.
	ErrNilCondition = errors.New("trigger requires a subject getter and a condition")

	// ErrNoSubject is returned by subject getters invoked outside of a context where
	// the requested subject exists. It is distinct from a condition evaluating to false.
	ErrNoSubject = errors.New("no subject in current resolution context")

	// ErrInvalidComparison is returned for an unknown comparison operator.
	ErrInvalidComparison = errors.New("invalid comparison operator")
)
