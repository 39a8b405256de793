package rules

import "fmt"

// Operator compares an observed value to a rule threshold.
type Operator string

const (
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
)

// Valid reports whether o is a known operator.
func (o Operator) Valid() bool {
	switch o {
	case OpGreater, OpLess, OpGreaterEqual, OpLessEqual, OpEqual, OpNotEqual:
		return true
	}
	return false
}

// Compare evaluates actual <o> expected.
func (o Operator) Compare(actual, expected float64) (bool, error) {
	switch o {
	case OpGreater:
		return actual > expected, nil
	case OpLess:
		return actual < expected, nil
	case OpGreaterEqual:
		return actual >= expected, nil
	case OpLessEqual:
		return actual <= expected, nil
	case OpEqual:
		return actual == expected, nil
	case OpNotEqual:
		return actual != expected, nil
	default:
		return false, fmt.Errorf("%w: unknown operator %q", ErrMalformedRule, string(o))
	}
}
