package rules

import (
	"fmt"
	"reflect"
)

// Getter reads a subject out of the live state carried by ctx. Getters are pure reads;
// they return ErrNoSubject (wrapped) when the subject does not exist in ctx.
type Getter[C, T any] func(ctx C) (T, error)

// Const returns a getter that always yields value.
func Const[C, T any](value T) Getter[C, T] {
	return func(C) (T, error) { return value, nil }
}

// Condition is a predicate over a subject read from a resolution context of type C.
type Condition[C, T any] interface {
	IsFulfilled(ctx C, subject T) (bool, error)
}

// Func adapts an ordinary function to a Condition.
type Func[C, T any] func(ctx C, subject T) (bool, error)

// IsFulfilled calls f.
func (f Func[C, T]) IsFulfilled(ctx C, subject T) (bool, error) {
	return f(ctx, subject)
}

// LogicalOperator combines operand conditions.
type LogicalOperator string

const (
	// OperatorAnd is fulfilled when every operand is fulfilled.
	OperatorAnd LogicalOperator = "AND"
	// OperatorOr is fulfilled when any operand is fulfilled.
	OperatorOr LogicalOperator = "OR"
	// OperatorNot negates exactly one operand.
	OperatorNot LogicalOperator = "NOT"
	// OperatorXor is fulfilled when exactly one of exactly two operands is fulfilled.
	OperatorXor LogicalOperator = "XOR"
)

// Logical composes conditions over the same subject. AND and OR evaluate operands in
// order and short-circuit, so a guard placed first protects getters placed after it.
type Logical[C, T any] struct {
	Operator LogicalOperator
	Operands []Condition[C, T]
}

// NewLogical validates the operand count for op and returns the composed condition.
func NewLogical[C, T any](op LogicalOperator, operands ...Condition[C, T]) (*Logical[C, T], error) {
	l := &Logical[C, T]{Operator: op, Operands: operands}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// And returns a condition fulfilled when every operand is.
func And[C, T any](first Condition[C, T], rest ...Condition[C, T]) *Logical[C, T] {
	return &Logical[C, T]{Operator: OperatorAnd, Operands: append([]Condition[C, T]{first}, rest...)}
}

// Or returns a condition fulfilled when any operand is.
func Or[C, T any](first Condition[C, T], rest ...Condition[C, T]) *Logical[C, T] {
	return &Logical[C, T]{Operator: OperatorOr, Operands: append([]Condition[C, T]{first}, rest...)}
}

// Not negates c.
func Not[C, T any](c Condition[C, T]) *Logical[C, T] {
	return &Logical[C, T]{Operator: OperatorNot, Operands: []Condition[C, T]{c}}
}

// Xor is fulfilled when exactly one of a and b is.
func Xor[C, T any](a, b Condition[C, T]) *Logical[C, T] {
	return &Logical[C, T]{Operator: OperatorXor, Operands: []Condition[C, T]{a, b}}
}

// Validate checks operand count and nil operands.
func (l *Logical[C, T]) Validate() error {
	n := len(l.Operands)
	switch l.Operator {
	case OperatorAnd, OperatorOr:
		if n == 0 {
			return fmt.Errorf("%w: %s needs at least one operand", ErrOperandCount, l.Operator)
		}
	case OperatorNot:
		if n != 1 {
			return fmt.Errorf("%w: NOT needs exactly one operand, got %d", ErrOperandCount, n)
		}
	case OperatorXor:
		if n != 2 {
			return fmt.Errorf("%w: XOR needs exactly two operands, got %d", ErrOperandCount, n)
		}
	default:
		return fmt.Errorf("%w: unknown operator %q", ErrOperandCount, l.Operator)
	}
	for i, op := range l.Operands {
		if op == nil {
			return fmt.Errorf("%w: %s operand %d", ErrNilOperand, l.Operator, i)
		}
	}
	return nil
}

// IsFulfilled evaluates the composition. A malformed composition is an error, never false.
func (l *Logical[C, T]) IsFulfilled(ctx C, subject T) (bool, error) {
	if err := l.Validate(); err != nil {
		return false, err
	}

	switch l.Operator {
	case OperatorAnd:
		for _, op := range l.Operands {
			ok, err := op.IsFulfilled(ctx, subject)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case OperatorOr:
		for _, op := range l.Operands {
			ok, err := op.IsFulfilled(ctx, subject)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case OperatorNot:
		ok, err := l.Operands[0].IsFulfilled(ctx, subject)
		if err != nil {
			return false, err
		}
		return !ok, nil
	default:
		a, err := l.Operands[0].IsFulfilled(ctx, subject)
		if err != nil {
			return false, err
		}
		b, err := l.Operands[1].IsFulfilled(ctx, subject)
		if err != nil {
			return false, err
		}
		return a != b, nil
	}
}

// Equals is fulfilled when the subject equals Value.
type Equals[C any, T comparable] struct {
	Value T
}

// EqualTo returns an Equals condition for value.
func EqualTo[C any, T comparable](value T) Equals[C, T] {
	return Equals[C, T]{Value: value}
}

// IsFulfilled compares by value.
func (e Equals[C, T]) IsFulfilled(_ C, subject T) (bool, error) {
	return subject == e.Value, nil
}

// SameAs is fulfilled when the subject is the instance currently returned by Instance.
// The instance is read live on every evaluation.
type SameAs[C any, T comparable] struct {
	Instance Getter[C, T]
}

// SameInstance returns a SameAs condition bound to the live getter.
func SameInstance[C any, T comparable](instance Getter[C, T]) SameAs[C, T] {
	return SameAs[C, T]{Instance: instance}
}

// IsFulfilled compares identity against the live instance.
func (s SameAs[C, T]) IsFulfilled(ctx C, subject T) (bool, error) {
	instance, err := s.Instance(ctx)
	if err != nil {
		return false, err
	}
	return subject == instance, nil
}

// Comparison is a numeric comparison operator.
type Comparison string

const (
	EQ  Comparison = "EQ"
	NEQ Comparison = "NEQ"
	LT  Comparison = "LT"
	LTE Comparison = "LTE"
	GT  Comparison = "GT"
	GTE Comparison = "GTE"
)

// Number is any integer or floating point type.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Compare compares the subject against a live reference. Both sides are converted to
// float64 before comparing.
type Compare[C any, T Number] struct {
	Op        Comparison
	Reference Getter[C, T]
}

// CompareTo compares the subject against a constant.
func CompareTo[C any, T Number](op Comparison, reference T) Compare[C, T] {
	return Compare[C, T]{Op: op, Reference: Const[C](reference)}
}

// CompareWith compares the subject against a value read live from ctx.
func CompareWith[C any, T Number](op Comparison, reference Getter[C, T]) Compare[C, T] {
	return Compare[C, T]{Op: op, Reference: reference}
}

// IsFulfilled evaluates subject <op> reference.
func (c Compare[C, T]) IsFulfilled(ctx C, subject T) (bool, error) {
	if c.Reference == nil {
		return false, fmt.Errorf("%w: missing reference", ErrInvalidComparison)
	}
	ref, err := c.Reference(ctx)
	if err != nil {
		return false, err
	}
	a, b := float64(subject), float64(ref)
	switch c.Op {
	case EQ:
		return a == b, nil
	case NEQ:
		return a != b, nil
	case LT:
		return a < b, nil
	case LTE:
		return a <= b, nil
	case GT:
		return a > b, nil
	case GTE:
		return a >= b, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidComparison, c.Op)
	}
}

// TypeIs is fulfilled when the subject's dynamic type implements or is U.
type TypeIs[C, T, U any] struct{}

// IsFulfilled performs a type assertion on the subject.
func (TypeIs[C, T, U]) IsFulfilled(_ C, subject T) (bool, error) {
	_, ok := any(subject).(U)
	return ok, nil
}

// NotNil is fulfilled when the subject is neither a nil interface nor a nil pointer,
// map, slice, channel or function.
type NotNil[C, T any] struct{}

// IsFulfilled reports whether subject holds a value.
func (NotNil[C, T]) IsFulfilled(_ C, subject T) (bool, error) {
	return !IsNil(subject), nil
}

// IsNil reports whether v is nil, looking through interfaces at typed nil pointers.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
