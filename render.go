package exprtree

import (
	"math/big"
	"strconv"
	"strings"
)

// ============================================================
// Rendering
// ============================================================

// String renders e in infix form. A child is parenthesized only when it
// binds strictly looser than its parent, so same-precedence chains such as
// "a - b + c" stay bare.
func (e Expr) String() string {
	if !e.IsValid() {
		return "<invalid>"
	}
	s, _ := PostorderFold(e, struct{}{}, renderText)
	return s
}

// Canonical renders e with its structure spelled out, for example
// Add(Symbol("x"), Number(1)). No parentheses are elided.
func (e Expr) Canonical() string {
	if !e.IsValid() {
		return "<invalid>"
	}
	s, _ := PostorderFold(e, struct{}{}, renderCanonical)
	return s
}

func (e Expr) GoString() string { return e.Canonical() }

// LaTeX renders e as a LaTeX math fragment.
func (e Expr) LaTeX() string {
	if !e.IsValid() {
		return "<invalid>"
	}
	s, _ := PostorderFold(e, struct{}{}, renderLaTeX)
	return s
}

func String(e Expr) string    { return e.String() }
func Canonical(e Expr) string { return e.Canonical() }
func LaTeX(e Expr) string     { return e.LaTeX() }

func renderText(e Expr, _ struct{}, children []string) (string, error) {
	n := e.load()
	switch {
	case n.kind == KindNumber:
		return formatNumber(n.num), nil
	case n.kind == KindSymbol:
		return n.name, nil
	case n.kind.IsOperator():
		left, right := childPrecedences(e, n)
		var (
			prec = n.kind.Precedence()
			lhs  = parenthesize(children[0], left < prec, "(", ")")
			rhs  = parenthesize(children[1], right < prec, "(", ")")
		)
		return lhs + " " + n.kind.Symbol() + " " + rhs, nil
	}
	return "<" + n.kind.String() + ">", nil
}

func renderCanonical(e Expr, _ struct{}, children []string) (string, error) {
	n := e.load()
	switch {
	case n.kind == KindNumber:
		return "Number(" + n.num.RatString() + ")", nil
	case n.kind == KindSymbol:
		return "Symbol(" + strconv.Quote(n.name) + ")", nil
	case n.kind.IsOperator():
		return title(n.kind) + "(" + children[0] + ", " + children[1] + ")", nil
	}
	return n.kind.String(), nil
}

func renderLaTeX(e Expr, _ struct{}, children []string) (string, error) {
	n := e.load()
	switch n.kind {
	case KindNumber:
		return latexNumber(n.num), nil
	case KindSymbol:
		return n.name, nil
	case KindDiv:
		return "\\frac{" + children[0] + "}{" + children[1] + "}", nil
	case KindPow:
		base := children[0]
		if e.Left().Kind().IsOperator() {
			base = "\\left(" + base + "\\right)"
		}
		return base + "^{" + children[1] + "}", nil
	case KindAdd, KindSub, KindMul:
		left, right := childPrecedences(e, n)
		var (
			prec   = n.kind.Precedence()
			lhs    = parenthesize(children[0], left < prec, "\\left(", "\\right)")
			rhs    = parenthesize(children[1], right < prec, "\\left(", "\\right)")
			symbol = n.kind.Symbol()
		)
		if n.kind == KindMul {
			symbol = "\\cdot"
		}
		return lhs + " " + symbol + " " + rhs, nil
	}
	return "<" + n.kind.String() + ">", nil
}

func childPrecedences(e Expr, n node) (Precedence, Precedence) {
	var (
		left  = e.g.node(n.operands[0])
		right = e.g.node(n.operands[1])
	)
	return left.kind.Precedence(), right.kind.Precedence()
}

func parenthesize(s string, wrap bool, open, closing string) string {
	if !wrap {
		return s
	}
	return open + s + closing
}

func title(k Kind) string {
	name := k.String()
	return strings.ToUpper(name[:1]) + name[1:]
}

func latexNumber(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	sign := ""
	v := new(big.Rat).Set(r)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return sign + "\\frac{" + v.Num().String() + "}{" + v.Denom().String() + "}"
}
