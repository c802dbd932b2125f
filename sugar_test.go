package exprtree_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/exprtree"
)

func TestLiftedOperators(t *testing.T) {
	g := exprtree.NewGraph()
	x := sym(t, g, "x")
	tests := []struct {
		name  string
		build func() (exprtree.Expr, error)
		want  string
	}{
		{"expr + literal", func() (exprtree.Expr, error) { return exprtree.AddOf(x, 1) }, "x + 1"},
		{"literal + expr", func() (exprtree.Expr, error) { return exprtree.AddOf(1, x) }, "1 + x"},
		{"literal - expr", func() (exprtree.Expr, error) { return exprtree.SubOf(2.5, x) }, "2.5 - x"},
		{"expr * expr", func() (exprtree.Expr, error) { return exprtree.MulOf(x, x) }, "x * x"},
		{"literal / expr", func() (exprtree.Expr, error) { return exprtree.DivOf(big.NewRat(1, 2), x) }, "0.5 / x"},
		{"expr ^ literal", func() (exprtree.Expr, error) { return exprtree.PowOf(x, 2) }, "x ^ 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := tt.build()
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.String())
		})
	}
}

func TestLiftedOperators_Chain(t *testing.T) {
	g := exprtree.NewGraph()
	x := sym(t, g, "x")
	sum, err := exprtree.AddOf(x, 1)
	require.NoError(t, err)
	prod, err := exprtree.MulOf(sum, sym(t, g, "y"))
	require.NoError(t, err)
	assert.Equal(t, "(x + 1) * y", prod.String())
}

func TestLiftedOperators_Errors(t *testing.T) {
	g := exprtree.NewGraph()
	x := sym(t, g, "x")
	other := sym(t, exprtree.NewGraph(), "y")
	before := g.Len()

	tests := []struct {
		name string
		a, b any
	}{
		{"two literals", 1, 2},
		{"string operand", x, "y"},
		{"bool operand", true, x},
		{"foreign expression", other, x},
		{"literal then bad operand", 3, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := exprtree.AddOf(tt.a, tt.b)
			require.ErrorIs(t, err, exprtree.ErrTypeKind)
		})
	}
	assert.Equal(t, before, g.Len(), "failed promotion must not append nodes")
}

func TestLift(t *testing.T) {
	g := exprtree.NewGraph()
	x := sym(t, g, "x")

	same, err := g.Lift(x)
	require.NoError(t, err)
	assert.Equal(t, x, same)

	n, err := g.Lift(uint16(4))
	require.NoError(t, err)
	assert.Equal(t, exprtree.KindNumber, n.Kind())

	_, err = g.Lift("x")
	require.ErrorIs(t, err, exprtree.ErrTypeKind)

	_, err = exprtree.NewGraph().Lift(x)
	require.ErrorIs(t, err, exprtree.ErrTypeKind)
}
