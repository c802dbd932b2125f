package exprtree_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/njchilds90/exprtree"
)

func sym(t *testing.T, g *exprtree.Graph, name string) exprtree.Expr {
	t.Helper()
	e, err := g.Symbol(name)
	require.NoError(t, err)
	return e
}

func num(t *testing.T, g *exprtree.Graph, v any) exprtree.Expr {
	t.Helper()
	e, err := g.Number(v)
	require.NoError(t, err)
	return e
}

// eval evaluates e numerically with the given bindings. It exists only to
// check derivatives for numeric equivalence.
func eval(e exprtree.Expr, env map[string]float64) (float64, error) {
	return exprtree.PostorderFold(e, env, func(n exprtree.Expr, env map[string]float64, c []float64) (float64, error) {
		switch n.Kind() {
		case exprtree.KindNumber:
			f, _ := n.Value().Float64()
			return f, nil
		case exprtree.KindSymbol:
			v, ok := env[n.Name()]
			if !ok {
				return 0, fmt.Errorf("unbound symbol %q", n.Name())
			}
			return v, nil
		case exprtree.KindAdd:
			return c[0] + c[1], nil
		case exprtree.KindSub:
			return c[0] - c[1], nil
		case exprtree.KindMul:
			return c[0] * c[1], nil
		case exprtree.KindDiv:
			return c[0] / c[1], nil
		case exprtree.KindPow:
			return math.Pow(c[0], c[1]), nil
		}
		return 0, fmt.Errorf("cannot evaluate %s", n.Kind())
	})
}

func mustEval(t *testing.T, e exprtree.Expr, env map[string]float64) float64 {
	t.Helper()
	v, err := eval(e, env)
	require.NoError(t, err)
	return v
}

var samples = []float64{-3, -1.5, -0.25, 0.5, 1, 2, 7.25}
