// Package expr parses and evaluates a restricted arithmetic grammar
// over a single real variable x. The grammar is a closed set: numeric
// literals, the constants pi and e, the operators + - * / ^, unary
// negation, and a fixed allow-list of unary functions. Anything else is
// rejected at parse time; no host code is ever executed.
package expr

import (
	"math"
	"strconv"
	"strings"
)

type nodeKind int

const (
	nodeNumber nodeKind = iota + 1
	nodeVariable
	nodeUnary
	nodeBinary
	nodeCall
)

type node struct {
	kind  nodeKind
	value float64 // nodeNumber
	op    byte    // nodeBinary: one of + - * / ^; nodeUnary is always negation
	fn    string  // nodeCall
	left  *node   // nodeBinary left, nodeUnary/nodeCall operand
	right *node   // nodeBinary right
}

// Expr is an immutable parsed expression. Safe for concurrent Eval
// calls once built.
type Expr struct {
	root *node
	src  string
}

// Source returns the original expression text.
func (e *Expr) Source() string { return e.src }

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

var functions = map[string]func(float64) float64{
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"exp":   math.Exp,
	"log":   math.Log,
	"sqrt":  math.Sqrt,
	"abs":   math.Abs,
	"floor": math.Floor,
	"ceil":  math.Ceil,
}

// Parse builds the syntax tree for src. The whole input must be
// consumed; trailing tokens are a syntax error.
func Parse(src string) (*Expr, error) {
	if strings.TrimSpace(src) == "" {
		return nil, errAt(ErrEmptyExpression, -1, "expression is empty")
	}
	p := &parser{src: src}
	root, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, errAt(ErrSyntax, p.pos, "unexpected %q", p.src[p.pos:p.pos+1])
	}
	return &Expr{root: root, src: src}, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

// parseSum handles the lowest precedence level: + and -.
func (p *parser) parseSum() (*node, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = &node{kind: nodeBinary, op: op, left: left, right: right}
	}
}

func (p *parser) parseProduct() (*node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &node{kind: nodeBinary, op: op, left: left, right: right}
	}
}

// parseUnary binds negation looser than ^, so -x^2 is -(x^2).
func (p *parser) parseUnary() (*node, error) {
	p.skipSpace()
	if p.peek() == '-' {
		p.pos++
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &node{kind: nodeUnary, left: operand}, nil
	}
	if p.peek() == '+' {
		p.pos++
		return p.parseUnary()
	}
	return p.parsePower()
}

// parsePower handles ^ with right associativity: 2^3^2 is 2^(3^2).
func (p *parser) parsePower() (*node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() != '^' {
		return base, nil
	}
	p.pos++
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &node{kind: nodeBinary, op: '^', left: base, right: exp}, nil
}

func (p *parser) parsePrimary() (*node, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, errAt(ErrSyntax, p.pos, "unexpected end of expression")
	}
	ch := p.src[p.pos]
	switch {
	case ch == '(':
		p.pos++
		inner, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return nil, errAt(ErrSyntax, p.pos, "missing closing parenthesis")
		}
		p.pos++
		return inner, nil
	case ch >= '0' && ch <= '9' || ch == '.':
		return p.parseNumber()
	case isAlpha(ch):
		return p.parseIdentifier()
	default:
		return nil, errAt(ErrSyntax, p.pos, "unexpected %q", string(ch))
	}
}

func (p *parser) parseNumber() (*node, error) {
	start := p.pos
	for p.pos < len(p.src) && (isDigit(p.src[p.pos]) || p.src[p.pos] == '.') {
		p.pos++
	}
	// Optional exponent: 1e-3, 2.5E4. A bare trailing e belongs to the
	// mantissa only if digits follow the (optionally signed) marker.
	if p.pos < len(p.src) && (p.src[p.pos] == 'e' || p.src[p.pos] == 'E') {
		mark := p.pos
		p.pos++
		if p.pos < len(p.src) && (p.src[p.pos] == '+' || p.src[p.pos] == '-') {
			p.pos++
		}
		if p.pos < len(p.src) && isDigit(p.src[p.pos]) {
			for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
				p.pos++
			}
		} else {
			p.pos = mark
		}
	}
	text := p.src[start:p.pos]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, errAt(ErrSyntax, start, "invalid number %q", text)
	}
	return &node{kind: nodeNumber, value: v}, nil
}

func (p *parser) parseIdentifier() (*node, error) {
	start := p.pos
	for p.pos < len(p.src) && isAlpha(p.src[p.pos]) {
		p.pos++
	}
	name := p.src[start:p.pos]
	p.skipSpace()
	if p.peek() == '(' {
		if _, ok := functions[name]; !ok {
			return nil, errAt(ErrUnsupportedConstruct, start, "function %q is not allowed", name)
		}
		p.pos++
		arg, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return nil, errAt(ErrSyntax, p.pos, "missing closing parenthesis after %s(...)", name)
		}
		p.pos++
		return &node{kind: nodeCall, fn: name, left: arg}, nil
	}
	if name == "x" {
		return &node{kind: nodeVariable}, nil
	}
	if v, ok := constants[name]; ok {
		return &node{kind: nodeNumber, value: v}, nil
	}
	if _, ok := functions[name]; ok {
		// A bare function name is a value of the wrong type, not an
		// unknown identifier.
		return nil, errAt(ErrTypeMismatch, start, "function %q used without arguments", name)
	}
	return nil, errAt(ErrUnsupportedConstruct, start, "unknown identifier %q", name)
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }
func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}
