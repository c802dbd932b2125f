package exprtree

import "fmt"

// ============================================================
// Literal promotion
// ============================================================

// Lift returns v as a node of g. An Expr of g passes through unchanged,
// numeric values become Number nodes and anything else fails with
// ErrTypeKind. Strings are not promoted; use Symbol for variables.
func (g *Graph) Lift(v any) (Expr, error) {
	promote, err := g.promoter(v)
	if err != nil {
		return Expr{}, err
	}
	return promote(), nil
}

// promoter validates v without touching the graph and returns the function
// that materializes it.
func (g *Graph) promoter(v any) (func() Expr, error) {
	if e, ok := v.(Expr); ok {
		if e.g != g {
			return nil, fmt.Errorf("%w: expression from another graph", ErrTypeKind)
		}
		return func() Expr { return e }, nil
	}
	r, err := toRat(v)
	if err != nil {
		return nil, err
	}
	return func() Expr { return g.push(node{kind: KindNumber, num: r}) }, nil
}

func AddOf(a, b any) (Expr, error) { return lift(KindAdd, a, b) }
func SubOf(a, b any) (Expr, error) { return lift(KindSub, a, b) }
func MulOf(a, b any) (Expr, error) { return lift(KindMul, a, b) }
func DivOf(a, b any) (Expr, error) { return lift(KindDiv, a, b) }
func PowOf(a, b any) (Expr, error) { return lift(KindPow, a, b) }

// lift builds k(a, b) after promoting bare numbers. The graph comes from
// whichever operand is already an Expr. Nothing is appended on failure.
func lift(k Kind, a, b any) (Expr, error) {
	var g *Graph
	if e, ok := a.(Expr); ok && e.IsValid() {
		g = e.g
	} else if e, ok := b.(Expr); ok && e.IsValid() {
		g = e.g
	} else {
		return Expr{}, fmt.Errorf("%w: %s needs an expression operand, got %T and %T", ErrTypeKind, k, a, b)
	}
	left, err := g.promoter(a)
	if err != nil {
		return Expr{}, err
	}
	right, err := g.promoter(b)
	if err != nil {
		return Expr{}, err
	}
	return g.op(k, left(), right()), nil
}
