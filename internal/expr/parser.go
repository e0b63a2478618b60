package expr

import (
	"fmt"

	"github.com/bitbound/bitbound-core/internal/units"
)

// Parse compiles an expression string into an AST.
//
// Connectives group strictly left to right with no precedence between
// AND and OR (see the package documentation). Keywords are matched
// case-insensitively.
//
// Returns a *ParseError describing the first offending token if the
// expression is malformed.
func Parse(input string) (Node, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind != TokenEOF {
		return nil, p.errorf(tok, "AND, OR or end of expression")
	}
	return node, nil
}

// parser is a recursive-descent parser over a token stream.
type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

// errorf builds a ParseError for an unexpected token.
func (p *parser) errorf(tok Token, expected string) error {
	return &ParseError{Pos: tok.Pos, Expected: expected, Found: tok.Text}
}

// parseExpr parses: term ((AND|OR) term)*, left-associative.
func (p *parser) parseExpr() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok.Kind != TokenKeyword || (tok.Text != "AND" && tok.Text != "OR") {
			return left, nil
		}
		p.next()

		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}

		if tok.Text == "AND" {
			left = &And{Left: left, Right: right}
		} else {
			left = &Or{Left: left, Right: right}
		}
	}
}

// parseTerm parses either a BETWEEN range or a single comparison.
func (p *parser) parseTerm() (Node, error) {
	ident := p.next()
	if ident.Kind != TokenIdent {
		return nil, p.errorf(ident, "property name")
	}

	tok := p.next()
	switch {
	case tok.Kind == TokenKeyword && tok.Text == "BETWEEN":
		low, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		and := p.next()
		if and.Kind != TokenKeyword || and.Text != "AND" {
			return nil, p.errorf(and, "AND")
		}
		high, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return &Between{Property: ident.Text, Low: low, High: high}, nil

	case tok.Kind == TokenOperator:
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return &Comparison{Property: ident.Text, Op: CompareOp(tok.Text), Literal: lit}, nil

	default:
		return nil, p.errorf(tok, "comparison operator or BETWEEN")
	}
}

// parseLiteral parses a numeric literal with an optional unit suffix.
// A bare literal is dimensionless; at evaluation time it adopts the unit
// of the property it is compared against.
func (p *parser) parseLiteral() (units.Value, error) {
	tok := p.next()
	if tok.Kind != TokenNumber {
		return units.Value{}, p.errorf(tok, "numeric literal")
	}

	value, err := units.ParseValue(tok.Text + tok.Suffix)
	if err != nil {
		return units.Value{}, &ParseError{
			Pos:      tok.Pos,
			Expected: "numeric literal with a recognised unit",
			Found:    fmt.Sprintf("%s%s", tok.Text, tok.Suffix),
		}
	}
	return value, nil
}
