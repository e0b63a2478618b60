package expr

import "fmt"

// ParseError reports the first token at which an expression can no longer
// continue any grammar production. Pos is a byte offset into the source
// text. Parsing never partially succeeds: on error no AST is returned.
type ParseError struct {
	Pos      int
	Expected string
	Found    string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	found := e.Found
	if found == "" {
		found = "end of expression"
	}
	return fmt.Sprintf("expr: parse error at position %d: expected %s, found %q", e.Pos, e.Expected, found)
}

// UnknownPropertyError reports an expression referencing a property the
// device does not currently report.
type UnknownPropertyError struct {
	Property string
}

// Error implements the error interface.
func (e *UnknownPropertyError) Error() string {
	return fmt.Sprintf("expr: unknown property %q", e.Property)
}

// EvaluationError wraps any failure during expression evaluation: a
// failed property lookup, an unknown property or an incompatible unit
// comparison. Use errors.As to reach the underlying cause.
type EvaluationError struct {
	Expr string
	Err  error
}

// Error implements the error interface.
func (e *EvaluationError) Error() string {
	return fmt.Sprintf("expr: evaluating %q: %v", e.Expr, e.Err)
}

// Unwrap returns the underlying cause.
func (e *EvaluationError) Unwrap() error {
	return e.Err
}
