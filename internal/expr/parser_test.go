package expr

import (
	"errors"
	"reflect"
	"testing"

	"github.com/bitbound/bitbound-core/internal/units"
)

func TestParseComparison(t *testing.T) {
	node, err := Parse("temperature > 25°C")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cmp, ok := node.(*Comparison)
	if !ok {
		t.Fatalf("node = %T, want *Comparison", node)
	}
	if cmp.Property != "temperature" || cmp.Op != OpGreater {
		t.Errorf("got %s %s, want temperature >", cmp.Property, cmp.Op)
	}
	if cmp.Literal.Magnitude != 25 || cmp.Literal.Unit != units.Celsius {
		t.Errorf("literal = %v, want 25°C", cmp.Literal)
	}
}

func TestParseCompound(t *testing.T) {
	node, err := Parse("temperature > 25°C AND humidity > 80%")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	and, ok := node.(*And)
	if !ok {
		t.Fatalf("node = %T, want *And", node)
	}
	left, ok := and.Left.(*Comparison)
	if !ok || left.Property != "temperature" || left.Op != OpGreater {
		t.Errorf("left = %v", and.Left)
	}
	right, ok := and.Right.(*Comparison)
	if !ok || right.Property != "humidity" || right.Op != OpGreater {
		t.Errorf("right = %v", and.Right)
	}
	if right.Literal.Unit != units.PercentSign {
		t.Errorf("right literal unit = %q, want %%", right.Literal.Unit)
	}
}

// TestParseLeftAssociative verifies that AND and OR group strictly left to
// right with no precedence: "a OR b AND c" is "(a OR b) AND c".
func TestParseLeftAssociative(t *testing.T) {
	node, err := Parse("a > 1 OR b > 2 AND c > 3")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	and, ok := node.(*And)
	if !ok {
		t.Fatalf("top node = %T, want *And", node)
	}
	or, ok := and.Left.(*Or)
	if !ok {
		t.Fatalf("left node = %T, want *Or", and.Left)
	}
	if cmp, ok := or.Left.(*Comparison); !ok || cmp.Property != "a" {
		t.Errorf("innermost left = %v, want a > 1", or.Left)
	}
	if cmp, ok := and.Right.(*Comparison); !ok || cmp.Property != "c" {
		t.Errorf("outer right = %v, want c > 3", and.Right)
	}
}

func TestParseBetween(t *testing.T) {
	node, err := Parse("temperature BETWEEN 20°C AND 25°C")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	between, ok := node.(*Between)
	if !ok {
		t.Fatalf("node = %T, want *Between", node)
	}
	if between.Property != "temperature" {
		t.Errorf("property = %q", between.Property)
	}
	if between.Low.Magnitude != 20 || between.High.Magnitude != 25 {
		t.Errorf("range = %v..%v, want 20..25", between.Low, between.High)
	}
}

// TestParseBetweenThenConnective ensures the AND inside BETWEEN does not
// swallow a following connective.
func TestParseBetweenThenConnective(t *testing.T) {
	node, err := Parse("temperature BETWEEN 20°C AND 25°C OR humidity > 90%")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	or, ok := node.(*Or)
	if !ok {
		t.Fatalf("node = %T, want *Or", node)
	}
	if _, ok := or.Left.(*Between); !ok {
		t.Errorf("left = %T, want *Between", or.Left)
	}
}

func TestParseCaseInsensitiveKeywords(t *testing.T) {
	node, err := Parse("t > 1 and h < 2 or p == 3")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := node.(*Or); !ok {
		t.Fatalf("node = %T, want *Or", node)
	}

	if _, err := Parse("temperature between 1 and 2"); err != nil {
		t.Errorf("lowercase between: %v", err)
	}
}

func TestParseDimensionlessLiteral(t *testing.T) {
	node, err := Parse("humidity < 40")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cmp := node.(*Comparison)
	if cmp.Literal.Unit != units.None {
		t.Errorf("literal unit = %q, want dimensionless", cmp.Literal.Unit)
	}
}

// TestParseDetachedUnitSuffix verifies whitespace between a number and
// its unit does not change the parse, matching units.ParseValue.
func TestParseDetachedUnitSuffix(t *testing.T) {
	tests := []struct {
		input string
		mag   float64
		unit  units.Unit
	}{
		{"humidity < 40 %", 40, units.PercentSign},
		{"temperature > 25 °C", 25, units.Celsius},
	}

	for _, tt := range tests {
		node, err := Parse(tt.input)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.input, err)
		}
		cmp, ok := node.(*Comparison)
		if !ok {
			t.Fatalf("Parse(%q) = %T, want *Comparison", tt.input, node)
		}
		if cmp.Literal.Magnitude != tt.mag || cmp.Literal.Unit != tt.unit {
			t.Errorf("Parse(%q) literal = %v, want %v %s", tt.input, cmp.Literal, tt.mag, tt.unit)
		}
	}

	// A keyword after a bare number stays a connective, never a suffix.
	node, err := Parse("a > 1 AND b < 2")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	and, ok := node.(*And)
	if !ok {
		t.Fatalf("node = %T, want *And", node)
	}
	if left := and.Left.(*Comparison); left.Literal.Unit != units.None {
		t.Errorf("left literal unit = %q, want dimensionless", left.Literal.Unit)
	}
}

// TestParseDeterministic verifies parsing the same text twice yields
// structurally identical ASTs.
func TestParseDeterministic(t *testing.T) {
	const text = "temperature > 25°C AND humidity BETWEEN 30% AND 60% OR pressure < 1000hPa"

	first, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	second, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("ASTs differ:\n%v\n%v", first, second)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing operator", "temperature 25"},
		{"missing literal", "temperature >"},
		{"missing property", "> 25"},
		{"unknown unit", "temperature > 25floops"},
		{"trailing garbage", "temperature > 25°C humidity"},
		{"between missing and", "temperature BETWEEN 20 25"},
		{"between missing high", "temperature BETWEEN 20 AND"},
		{"dangling connective", "temperature > 25 AND"},
		{"operator as property", "> > 25"},
		{"stray punctuation", "temperature > 25 ; drop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded with %v, want error", tt.input, node)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error type = %T, want *ParseError", err)
			}
			if perr.Expected == "" {
				t.Error("ParseError.Expected is empty")
			}
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse("temperature !! 25")

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if perr.Pos != 12 {
		t.Errorf("Pos = %d, want 12", perr.Pos)
	}
}

func TestProperties(t *testing.T) {
	node, err := Parse("temperature > 20°C AND humidity < 60% OR temperature < 5°C")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := Properties(node)
	want := []string{"temperature", "humidity"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Properties = %v, want %v", got, want)
	}
}

func TestNodeString(t *testing.T) {
	node, err := Parse("temperature > 25°C AND humidity > 80%")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := node.String(); got != "temperature > 25°C AND humidity > 80%" {
		t.Errorf("String() = %q", got)
	}
}
