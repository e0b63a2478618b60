package expr

import (
	"fmt"
	"math"

	"github.com/bitbound/bitbound-core/internal/units"
)

// PropertyLookup resolves a property name to its current value. It is
// typically backed by a device read; errors propagate out of Evaluate
// wrapped in an *EvaluationError.
type PropertyLookup func(name string) (units.Value, error)

// Evaluate computes the boolean result of a compiled expression against
// live property values.
//
// Comparisons require the property and the literal to share a unit
// category; both sides are normalised to SI before applying the operator.
// Equality operators use the category's epsilon rather than bitwise
// equality. A dimensionless literal adopts the property's unit with its
// raw magnitude passed through, so "humidity < 40" behaves like
// "humidity < 40%". A unit-tagged literal compared against a property
// that only reports dimensionless values is an incompatible-units error.
//
// AND and OR short-circuit left to right.
func Evaluate(n Node, lookup PropertyLookup) (bool, error) {
	result, err := eval(n, lookup)
	if err != nil {
		return false, &EvaluationError{Expr: n.String(), Err: err}
	}
	return result, nil
}

func eval(n Node, lookup PropertyLookup) (bool, error) {
	switch v := n.(type) {
	case *And:
		left, err := eval(v.Left, lookup)
		if err != nil {
			return false, err
		}
		if !left {
			return false, nil
		}
		return eval(v.Right, lookup)

	case *Or:
		left, err := eval(v.Left, lookup)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return eval(v.Right, lookup)

	case *Comparison:
		actual, err := lookup(v.Property)
		if err != nil {
			return false, err
		}
		literal, err := coerce(v.Literal, actual)
		if err != nil {
			return false, err
		}
		return compare(v.Op, actual, literal), nil

	case *Between:
		actual, err := lookup(v.Property)
		if err != nil {
			return false, err
		}
		low, err := coerce(v.Low, actual)
		if err != nil {
			return false, err
		}
		high, err := coerce(v.High, actual)
		if err != nil {
			return false, err
		}
		si := actual.SI()
		return low.SI() <= si && si <= high.SI(), nil

	default:
		return false, fmt.Errorf("unsupported node %T", n)
	}
}

// coerce reconciles a literal's unit with the property value it is
// compared against. A dimensionless literal adopts the property's unit
// (raw magnitude pass-through). Otherwise the categories must match.
func coerce(literal, actual units.Value) (units.Value, error) {
	if literal.Category() == units.Dimensionless && actual.Category() != units.Dimensionless {
		return units.Value{Magnitude: literal.Magnitude, Unit: actual.Unit}, nil
	}
	if literal.Category() != actual.Category() {
		return units.Value{}, &units.IncompatibleUnitsError{
			From: actual.Category(),
			To:   literal.Category(),
		}
	}
	return literal, nil
}

// compare applies op to two category-compatible values in SI space.
// Equality uses the category's epsilon; ordering uses IEEE semantics.
func compare(op CompareOp, actual, literal units.Value) bool {
	a, b := actual.SI(), literal.SI()
	eps := actual.Category().Epsilon()

	switch op {
	case OpLess:
		return a < b
	case OpLessEqual:
		return a <= b
	case OpGreater:
		return a > b
	case OpGreaterEqual:
		return a >= b
	case OpEqual:
		return math.Abs(a-b) <= eps
	case OpNotEqual:
		return math.Abs(a-b) > eps
	default:
		return false
	}
}
