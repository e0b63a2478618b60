// Package expr implements the threshold expression language for BitBound
// Core: unit-aware comparisons over device properties combined with AND/OR.
//
// Grammar (keywords are case-insensitive, whitespace is ignored):
//
//	expr    := term ((AND|OR) term)*
//	term    := IDENT BETWEEN literal AND literal
//	         | IDENT op literal
//	op      := ">" | "<" | ">=" | "<=" | "==" | "!="
//	literal := NUMBER UNIT_SUFFIX?
//
// AND and OR have no relative precedence: connectives group strictly left
// to right in the order they appear, so "a OR b AND c" parses as
// "(a OR b) AND c". Callers rely on this literal left-to-right grouping;
// it is deliberate behaviour, not an omission.
//
// Expressions are compiled once, eagerly, at rule registration. A
// malformed expression fails with a *ParseError carrying the offending
// position; parsing never partially succeeds.
//
// # Usage
//
//	node, err := expr.Parse("temperature > 25°C AND humidity > 80%")
//	if err != nil {
//	    var perr *expr.ParseError
//	    if errors.As(err, &perr) {
//	        // perr.Pos, perr.Expected, perr.Found
//	    }
//	    return err
//	}
//
//	ok, err := expr.Evaluate(node, func(name string) (units.Value, error) {
//	    return dev.Read(name)
//	})
//
// Evaluation short-circuits: the right operand of AND is not evaluated
// once the left is false, and likewise for OR once the left is true. This
// matters because a property lookup can itself fail; short-circuiting
// avoids spurious lookup errors on unreachable branches.
package expr
