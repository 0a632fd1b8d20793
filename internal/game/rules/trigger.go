package rules

import "fmt"

// Trigger decides whether an effect may happen at all. A trigger is a condition bound
// to a live subject getter, so it reads current state every time it is asked.
type Trigger[C any] interface {
	IsActivated(ctx C) (bool, error)
}

// TriggerFunc adapts an ordinary function to a Trigger.
type TriggerFunc[C any] func(ctx C) (bool, error)

// IsActivated calls f.
func (f TriggerFunc[C]) IsActivated(ctx C) (bool, error) {
	return f(ctx)
}

type boundTrigger[C, T any] struct {
	subject   Getter[C, T]
	condition Condition[C, T]
}

// Bind binds condition to the subject produced by getter.
func Bind[C, T any](subject Getter[C, T], condition Condition[C, T]) (Trigger[C], error) {
	if subject == nil || condition == nil {
		return nil, ErrNilCondition
	}
	return &boundTrigger[C, T]{subject: subject, condition: condition}, nil
}

// MustBind is Bind for statically known content; it panics on a nil argument.
func MustBind[C, T any](subject Getter[C, T], condition Condition[C, T]) Trigger[C] {
	t, err := Bind(subject, condition)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *boundTrigger[C, T]) IsActivated(ctx C) (bool, error) {
	subject, err := t.subject(ctx)
	if err != nil {
		return false, err
	}
	return t.condition.IsFulfilled(ctx, subject)
}

// Always returns a trigger that is always activated.
func Always[C any]() Trigger[C] {
	return TriggerFunc[C](func(C) (bool, error) { return true, nil })
}

// Never returns a trigger that is never activated.
func Never[C any]() Trigger[C] {
	return TriggerFunc[C](func(C) (bool, error) { return false, nil })
}

// triggerCondition lets triggers over different subjects share the Logical combinators.
type triggerCondition[C any] struct {
	trigger Trigger[C]
}

func (c triggerCondition[C]) IsFulfilled(ctx C, _ struct{}) (bool, error) {
	return c.trigger.IsActivated(ctx)
}

// Combine composes triggers with op, applying the same operand rules as Logical.
func Combine[C any](op LogicalOperator, triggers ...Trigger[C]) (Trigger[C], error) {
	operands := make([]Condition[C, struct{}], 0, len(triggers))
	for i, t := range triggers {
		if t == nil {
			return nil, fmt.Errorf("%w: %s operand %d", ErrNilOperand, op, i)
		}
		operands = append(operands, triggerCondition[C]{trigger: t})
	}
	logical, err := NewLogical(op, operands...)
	if err != nil {
		return nil, err
	}
	return Bind(Const[C](struct{}{}), Condition[C, struct{}](logical))
}

// AllOf is activated when every trigger is, checked in order with short-circuit.
func AllOf[C any](first Trigger[C], rest ...Trigger[C]) (Trigger[C], error) {
	return Combine(OperatorAnd, append([]Trigger[C]{first}, rest...)...)
}

// AnyOf is activated when any trigger is.
func AnyOf[C any](first Trigger[C], rest ...Trigger[C]) (Trigger[C], error) {
	return Combine(OperatorOr, append([]Trigger[C]{first}, rest...)...)
}
