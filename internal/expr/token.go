package expr

import (
	"strings"
	"unicode"

	"github.com/bitbound/bitbound-core/internal/units"
)

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenNumber
	TokenOperator
	TokenKeyword
)

// String returns a human-readable kind name for error messages.
func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of expression"
	case TokenIdent:
		return "identifier"
	case TokenNumber:
		return "number"
	case TokenOperator:
		return "operator"
	case TokenKeyword:
		return "keyword"
	default:
		return "token"
	}
}

// Token is a single lexical unit with its source position.
//
// For TokenNumber, Suffix holds the literal's unit suffix, whether
// attached ("25°C") or separated by whitespace ("40 %"); it is empty
// for bare numbers.
type Token struct {
	Kind   TokenKind
	Text   string
	Suffix string
	Pos    int
}

// keywords are the reserved words of the expression language,
// matched case-insensitively.
var keywords = map[string]string{
	"AND":     "AND",
	"OR":      "OR",
	"BETWEEN": "BETWEEN",
}

// operators in longest-match-first order.
var operators = []string{">=", "<=", "==", "!=", ">", "<"}

// tokenize splits an expression into tokens. It fails with a *ParseError
// at the first character that cannot start any token.
func tokenize(input string) ([]Token, error) {
	var tokens []Token
	i := 0

	for i < len(input) {
		c := input[i]

		if isSpace(c) {
			i++
			continue
		}

		// Operators
		if op, n := matchOperator(input[i:]); n > 0 {
			tokens = append(tokens, Token{Kind: TokenOperator, Text: op, Pos: i})
			i += n
			continue
		}

		// Numbers, optionally with an attached unit suffix
		if isNumberStart(input, i) {
			start := i
			numLen := scanNumberText(input[i:])
			i += numLen
			// Consume an attached suffix: everything up to whitespace,
			// an operator, or end of input.
			sufStart := i
			for i < len(input) && !isTokenBoundary(input, i) {
				i++
			}
			suffix := input[sufStart:i]
			if suffix == "" {
				suffix, i = scanDetachedSuffix(input, i)
			}
			tokens = append(tokens, Token{
				Kind:   TokenNumber,
				Text:   input[start : start+numLen],
				Suffix: suffix,
				Pos:    start,
			})
			continue
		}

		// Identifiers and keywords
		if isIdentStart(rune(c)) {
			start := i
			for i < len(input) && isIdentPart(rune(input[i])) {
				i++
			}
			word := input[start:i]
			if kw, ok := keywords[strings.ToUpper(word)]; ok {
				tokens = append(tokens, Token{Kind: TokenKeyword, Text: kw, Pos: start})
			} else {
				tokens = append(tokens, Token{Kind: TokenIdent, Text: word, Pos: start})
			}
			continue
		}

		return nil, &ParseError{
			Pos:      i,
			Expected: "identifier, number or operator",
			Found:    string(input[i]),
		}
	}

	tokens = append(tokens, Token{Kind: TokenEOF, Text: "", Pos: len(input)})
	return tokens, nil
}

// matchOperator returns the operator at the start of s and its length,
// or ("", 0) if none matches.
func matchOperator(s string) (string, int) {
	for _, op := range operators {
		if strings.HasPrefix(s, op) {
			return op, len(op)
		}
	}
	return "", 0
}

// isNumberStart reports whether a numeric literal starts at input[i].
// A sign counts only when followed by a digit or dot, so "a<-5" lexes the
// minus as part of the number while "a - b" would not.
func isNumberStart(input string, i int) bool {
	c := input[i]
	if c >= '0' && c <= '9' {
		return true
	}
	if (c == '+' || c == '-' || c == '.') && i+1 < len(input) {
		next := input[i+1]
		if next >= '0' && next <= '9' {
			return true
		}
		if (c == '+' || c == '-') && next == '.' && i+2 < len(input) && input[i+2] >= '0' && input[i+2] <= '9' {
			return true
		}
	}
	return false
}

// scanNumberText returns the length of the numeric literal at the start
// of s: optional sign, digits, optional fraction, optional exponent.
func scanNumberText(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expStart := j
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j > expStart {
			i = j
		}
	}
	return i
}

// scanDetachedSuffix consumes a unit suffix separated from its number by
// whitespace, as in "40 %" or "3.3 V". Only recognised unit suffixes are
// taken; keywords and anything unknown are left for the parser, so
// "x > 2 AND y < 3" keeps its connective.
func scanDetachedSuffix(input string, i int) (string, int) {
	j := i
	for j < len(input) && isSpace(input[j]) {
		j++
	}
	k := j
	for k < len(input) && !isTokenBoundary(input, k) {
		k++
	}
	word := input[j:k]
	if word == "" {
		return "", i
	}
	if _, ok := keywords[strings.ToUpper(word)]; ok {
		return "", i
	}
	if _, ok := units.Lookup(word); !ok {
		return "", i
	}
	return word, k
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// isTokenBoundary reports whether input[i] terminates an attached unit
// suffix: whitespace or the start of an operator.
func isTokenBoundary(input string, i int) bool {
	c := input[i]
	if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
		return true
	}
	_, n := matchOperator(input[i:])
	return n > 0
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
