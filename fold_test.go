package exprtree_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/exprtree"
)

// label combines each node into its rendered form and records the order of
// calls.
func label(order *[]string) func(exprtree.Expr, struct{}, []string) (string, error) {
	return func(e exprtree.Expr, _ struct{}, _ []string) (string, error) {
		*order = append(*order, e.String())
		return e.String(), nil
	}
}

func TestPostorderFold_Order(t *testing.T) {
	g := exprtree.NewGraph()
	x, y, z := sym(t, g, "x"), sym(t, g, "y"), sym(t, g, "z")
	root := exprtree.Add(exprtree.Mul(x, y), exprtree.Div(z, x))

	var order []string
	got, err := exprtree.PostorderFold(root, struct{}{}, label(&order))
	require.NoError(t, err)
	assert.Equal(t, "x * y + z / x", got)
	assert.Equal(t, []string{"x", "y", "x * y", "z", "z / x", "x * y + z / x"}, order)
}

func TestPostorderFold_SharedNodeCombinedOnce(t *testing.T) {
	g := exprtree.NewGraph()
	x, y, z := sym(t, g, "x"), sym(t, g, "y"), sym(t, g, "z")
	shared := exprtree.Add(x, num(t, g, 1))
	left := exprtree.Mul(shared, y)
	right := exprtree.Sub(shared, z)
	root := exprtree.Div(left, right)

	type result struct{ id exprtree.NodeID }
	var (
		calls   = map[exprtree.NodeID]int{}
		seenBy  = map[exprtree.NodeID]*result{}
		results = map[exprtree.NodeID]*result{}
	)
	_, err := exprtree.PostorderFold(root, struct{}{}, func(e exprtree.Expr, _ struct{}, c []*result) (*result, error) {
		calls[e.ID()]++
		for i, op := range e.Operands() {
			if op == shared {
				if prev, ok := seenBy[op.ID()]; ok {
					assert.Same(t, prev, c[i], "both parents must observe the same cached result")
				}
				seenBy[op.ID()] = c[i]
			}
		}
		r := &result{id: e.ID()}
		results[e.ID()] = r
		return r, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls[shared.ID()])
	assert.Equal(t, 1, calls[x.ID()])
	assert.Same(t, results[shared.ID()], seenBy[shared.ID()])
	for id, n := range calls {
		assert.Equal(t, 1, n, "node %d", id)
	}
}

func TestPostorderFold_SameChildTwice(t *testing.T) {
	g := exprtree.NewGraph()
	x := sym(t, g, "x")
	root := exprtree.Add(x, x)

	var symbolCalls int
	_, err := exprtree.PostorderFold(root, struct{}{}, func(e exprtree.Expr, _ struct{}, c []int) (int, error) {
		if e.Kind() == exprtree.KindSymbol {
			symbolCalls++
			return 21, nil
		}
		assert.Equal(t, c[0], c[1])
		return c[0] + c[1], nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, symbolCalls)
}

func TestPostorderFold_IdentityNotStructure(t *testing.T) {
	g := exprtree.NewGraph()
	x1, x2 := sym(t, g, "x"), sym(t, g, "x")
	root := exprtree.Mul(exprtree.Add(x1, x2), exprtree.Add(x1, x2))

	var calls int
	_, err := exprtree.PostorderFold(root, struct{}{}, func(e exprtree.Expr, _ struct{}, _ []struct{}) (struct{}, error) {
		calls++
		return struct{}{}, nil
	})
	require.NoError(t, err)
	// x1, x2, two distinct sums and the product
	assert.Equal(t, 5, calls)
}

func TestPostorderFold_TerminalsGetNoChildren(t *testing.T) {
	g := exprtree.NewGraph()
	root := exprtree.Pow(sym(t, g, "x"), num(t, g, 3))

	_, err := exprtree.PostorderFold(root, struct{}{}, func(e exprtree.Expr, _ struct{}, c []int) (int, error) {
		if e.Kind().IsTerminal() {
			assert.Empty(t, c)
		} else {
			assert.Len(t, c, 2)
		}
		return 0, nil
	})
	require.NoError(t, err)

	leaf, err := exprtree.PostorderFold(num(t, g, 9), "ctx", func(e exprtree.Expr, ctx string, c []string) (string, error) {
		return ctx + ":" + e.String(), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ctx:9", leaf)
}

func TestPostorderFold_ContextPassedThrough(t *testing.T) {
	g := exprtree.NewGraph()
	root := exprtree.Sub(exprtree.Mul(sym(t, g, "a"), sym(t, g, "b")), sym(t, g, "c"))

	type ctx struct{ tag string }
	want := &ctx{tag: "fixed"}
	_, err := exprtree.PostorderFold(root, want, func(_ exprtree.Expr, got *ctx, _ []bool) (bool, error) {
		assert.Same(t, want, got)
		return true, nil
	})
	require.NoError(t, err)
}

func TestPostorderFold_ErrorAbortsWalk(t *testing.T) {
	g := exprtree.NewGraph()
	x, y := sym(t, g, "x"), sym(t, g, "y")
	root := exprtree.Add(exprtree.Mul(x, y), sym(t, g, "z"))
	boom := errors.New("boom")

	var visited []string
	got, err := exprtree.PostorderFold(root, struct{}{}, func(e exprtree.Expr, _ struct{}, _ []string) (string, error) {
		visited = append(visited, e.String())
		if e == y {
			return "", boom
		}
		return "ok", nil
	})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, got)
	assert.Equal(t, []string{"x", "y"}, visited)
}

func TestPostorderFold_DeepGraph(t *testing.T) {
	const depth = 1 << 20

	g := exprtree.NewGraph()
	var (
		one  = num(t, g, 1)
		root = one
	)
	for i := 0; i < depth; i++ {
		root = exprtree.Add(root, one)
	}

	count, err := exprtree.PostorderFold(root, struct{}{}, func(e exprtree.Expr, _ struct{}, c []int) (int, error) {
		if len(c) == 0 {
			return 1, nil
		}
		return c[0] + c[1], nil
	})
	require.NoError(t, err)
	assert.Equal(t, depth+1, count)

	value, ok := exprtree.Constant(root)
	require.True(t, ok)
	assert.Equal(t, "1048577", value.RatString())
}

func TestPostorder_ListsDistinctNodes(t *testing.T) {
	g := exprtree.NewGraph()
	x := sym(t, g, "x")
	sq := exprtree.Mul(x, x)
	root := exprtree.Add(sq, sq)

	order := exprtree.Postorder(root)
	assert.Equal(t, []exprtree.Expr{x, sq, root}, order)
}
