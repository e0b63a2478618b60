package expr

import (
	"fmt"

	"github.com/bitbound/bitbound-core/internal/units"
)

// Node is a compiled threshold expression. Nodes are immutable after
// parsing and safe to evaluate concurrently.
type Node interface {
	fmt.Stringer
	node()
}

// CompareOp is a comparison operator in a threshold expression.
type CompareOp string

const (
	OpLess         CompareOp = "<"
	OpLessEqual    CompareOp = "<="
	OpGreater      CompareOp = ">"
	OpGreaterEqual CompareOp = ">="
	OpEqual        CompareOp = "=="
	OpNotEqual     CompareOp = "!="
)

// Comparison compares a device property against a unit-tagged literal.
type Comparison struct {
	Property string
	Op       CompareOp
	Literal  units.Value
}

// Between is an inclusive range check: Low <= property <= High.
// Low and High may carry different units of the same category.
type Between struct {
	Property string
	Low      units.Value
	High     units.Value
}

// And is the boolean conjunction of two subexpressions.
type And struct {
	Left  Node
	Right Node
}

// Or is the boolean disjunction of two subexpressions.
type Or struct {
	Left  Node
	Right Node
}

func (*Comparison) node() {}
func (*Between) node()    {}
func (*And) node()        {}
func (*Or) node()         {}

// String renders the node in canonical expression syntax.
func (c *Comparison) String() string {
	return fmt.Sprintf("%s %s %s", c.Property, c.Op, c.Literal)
}

func (b *Between) String() string {
	return fmt.Sprintf("%s BETWEEN %s AND %s", b.Property, b.Low, b.High)
}

func (a *And) String() string {
	return fmt.Sprintf("%s AND %s", a.Left, a.Right)
}

func (o *Or) String() string {
	return fmt.Sprintf("%s OR %s", o.Left, o.Right)
}

// Properties returns the distinct property names referenced by the
// expression, in first-appearance order. The scheduler uses this to
// coalesce device reads within a tick.
func Properties(n Node) []string {
	var out []string
	seen := make(map[string]bool)

	var walk func(Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case *Comparison:
			if !seen[v.Property] {
				seen[v.Property] = true
				out = append(out, v.Property)
			}
		case *Between:
			if !seen[v.Property] {
				seen[v.Property] = true
				out = append(out, v.Property)
			}
		case *And:
			walk(v.Left)
			walk(v.Right)
		case *Or:
			walk(v.Left)
			walk(v.Right)
		}
	}
	walk(n)
	return out
}
