// Package calc evaluates arithmetic expressions made of numeric literals,
// the binary operators + - * /, unary signs and parentheses.
//
// Evaluation is a recursive-descent parse over float64 values. Nothing in
// the input is ever handed to an interpreter, so any character outside the
// grammar is a syntax error.
package calc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"unicode"
)

// ErrDivisionByZero is returned when a divisor evaluates to zero.
var ErrDivisionByZero = errors.New("division by zero")

// maxDepth bounds parenthesis and unary-sign nesting.
const maxDepth = 256

// SyntaxError reports malformed input. Pos is the 1-based rune offset into
// the original expression, or len+1 when input ended early.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid syntax at position %d: %s", e.Pos, e.Msg)
}

type parser struct {
	src   []rune
	pos   int
	depth int
}

// Eval parses and evaluates expr.
func Eval(expr string) (float64, error) {
	p := &parser{src: []rune(expr)}
	p.skipSpace()
	if p.eof() {
		return 0, &SyntaxError{Pos: 1, Msg: "empty expression"}
	}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if !p.eof() {
		return 0, p.errorf("unexpected %q", p.src[p.pos])
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, errors.New("result is not a finite number")
	}
	return v, nil
}

// Format renders v in its shortest exact form: 4, 50, 3.5.
func Format(v float64) string {
	if v == 0 {
		// avoid "-0"
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (p *parser) expr() (float64, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		if p.eof() {
			return left, nil
		}
		op := p.src[p.pos]
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.term()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *parser) term() (float64, error) {
	left, err := p.unary()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		if p.eof() {
			return left, nil
		}
		op := p.src[p.pos]
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.unary()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
			continue
		}
		if right == 0 {
			return 0, ErrDivisionByZero
		}
		left /= right
	}
}

func (p *parser) unary() (float64, error) {
	p.skipSpace()
	if p.eof() {
		return 0, p.errorf("unexpected end of expression")
	}
	switch p.src[p.pos] {
	case '+', '-':
		neg := p.src[p.pos] == '-'
		p.pos++
		if err := p.enter(); err != nil {
			return 0, err
		}
		v, err := p.unary()
		p.depth--
		if err != nil {
			return 0, err
		}
		if neg {
			return -v, nil
		}
		return v, nil
	}
	return p.primary()
}

func (p *parser) primary() (float64, error) {
	c := p.src[p.pos]
	switch {
	case c == '(':
		p.pos++
		if err := p.enter(); err != nil {
			return 0, err
		}
		v, err := p.expr()
		p.depth--
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if p.eof() || p.src[p.pos] != ')' {
			return 0, p.errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	case isDigit(c) || c == '.':
		return p.number()
	default:
		return 0, p.errorf("unexpected %q", c)
	}
}

func (p *parser) number() (float64, error) {
	start := p.pos
	dots := 0
	for !p.eof() && (isDigit(p.src[p.pos]) || p.src[p.pos] == '.') {
		if p.src[p.pos] == '.' {
			dots++
		}
		p.pos++
	}
	lit := string(p.src[start:p.pos])
	if dots > 1 || lit == "." {
		return 0, &SyntaxError{Pos: start + 1, Msg: fmt.Sprintf("malformed number %q", lit)}
	}
	v, err := strconv.ParseFloat(lit, 64)
	if errors.Is(err, strconv.ErrRange) {
		return 0, &SyntaxError{Pos: start + 1, Msg: "number out of range"}
	}
	if err != nil {
		return 0, &SyntaxError{Pos: start + 1, Msg: fmt.Sprintf("malformed number %q", lit)}
	}
	return v, nil
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > maxDepth {
		return p.errorf("expression nested too deeply")
	}
	return nil
}

func (p *parser) skipSpace() {
	for !p.eof() && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) errorf(format string, args ...any) *SyntaxError {
	return &SyntaxError{Pos: p.pos + 1, Msg: fmt.Sprintf(format, args...)}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
