package exprtree

import "fmt"

// ============================================================
// Differentiation
// ============================================================

// Diff returns the derivative of e with respect to the symbol variable.
//
// The result is built from new nodes appended to e's graph; nodes already
// in the graph are left as they are, and the product and quotient rules
// reference the original operands by identity. No simplification is done.
//
// The exponent of a power is treated as a constant: d(a^n) = n*da * a^(n-1)
// whatever n contains.
func Diff(e Expr, variable string) (Expr, error) {
	return PostorderFold(e, variable, diffRule)
}

// DiffN applies Diff n times. DiffN(e, v, 0) returns e.
func DiffN(e Expr, variable string, n int) (Expr, error) {
	if n < 0 {
		return Expr{}, fmt.Errorf("exprtree: derivative order must be non-negative, got %d", n)
	}
	var err error
	for i := 0; i < n; i++ {
		if e, err = Diff(e, variable); err != nil {
			return Expr{}, err
		}
	}
	return e, nil
}

// diffRule receives the derivatives of e's operands in d.
func diffRule(e Expr, variable string, d []Expr) (Expr, error) {
	g := e.g
	switch k := e.Kind(); k {
	case KindNumber:
		return g.integer(0), nil
	case KindSymbol:
		if e.Name() == variable {
			return g.integer(1), nil
		}
		return g.integer(0), nil
	case KindAdd:
		return Add(d[0], d[1]), nil
	case KindSub:
		return Sub(d[0], d[1]), nil
	case KindMul:
		a, b := e.Left(), e.Right()
		return Add(Mul(d[0], b), Mul(d[1], a)), nil
	case KindDiv:
		a, b := e.Left(), e.Right()
		num := Sub(Mul(d[0], b), Mul(a, d[1]))
		return Div(num, Pow(b, g.integer(2))), nil
	case KindPow:
		a, n := e.Left(), e.Right()
		return Mul(Mul(n, d[0]), Pow(a, Sub(n, g.integer(1)))), nil
	default:
		return Expr{}, fmt.Errorf("%w: cannot differentiate %s", ErrUnsupportedKind, k)
	}
}
