package exprtree

import (
	"math"
	"math/big"
	"slices"
)

const (
	// maxExactExponent bounds the integer exponents Constant raises exactly.
	maxExactExponent = 4096
	// maxConstantBits bounds the numerator plus denominator size of any
	// intermediate value Constant computes.
	maxConstantBits = 1 << 20
)

// ============================================================
// Free symbols
// ============================================================

// Symbols returns the distinct symbol names reachable from e, sorted.
func Symbols(e Expr) []string {
	seen := map[string]struct{}{}
	for _, n := range Postorder(e) {
		if n.Kind() == KindSymbol {
			seen[n.Name()] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ============================================================
// Constant folding
// ============================================================

// Constant folds an expression without symbols to its exact value. It
// reports false when e contains a symbol, divides by zero, raises to a
// power that has no finite value, or would need more than a megabit to
// hold an intermediate value.
func Constant(e Expr) (*big.Rat, bool) {
	r, err := PostorderFold(e, struct{}{}, foldConstant)
	if err != nil || r == nil {
		return nil, false
	}
	return r, true
}

// foldConstant yields nil for subexpressions without a value; nil
// propagates to the root.
func foldConstant(e Expr, _ struct{}, c []*big.Rat) (*big.Rat, error) {
	k := e.Kind()
	if k == KindNumber {
		return e.Value(), nil
	}
	if !k.IsOperator() || c[0] == nil || c[1] == nil {
		return nil, nil
	}
	a, b := c[0], c[1]
	if k != KindPow && ratBits(a)+ratBits(b) > maxConstantBits {
		return nil, nil
	}
	switch k {
	case KindAdd:
		return new(big.Rat).Add(a, b), nil
	case KindSub:
		return new(big.Rat).Sub(a, b), nil
	case KindMul:
		return new(big.Rat).Mul(a, b), nil
	case KindDiv:
		if b.Sign() == 0 {
			return nil, nil
		}
		return new(big.Rat).Quo(a, b), nil
	case KindPow:
		return ratPow(a, b), nil
	}
	return nil, nil
}

func ratPow(base, exp *big.Rat) *big.Rat {
	if exp.IsInt() && exp.Num().IsInt64() {
		n := exp.Num().Int64()
		if n >= -maxExactExponent && n <= maxExactExponent {
			if n < 0 && base.Sign() == 0 {
				return nil
			}
			width := int64(max(base.Num().BitLen(), base.Denom().BitLen()))
			if width*max(n, -n) > maxConstantBits {
				return nil
			}
			var (
				abs = new(big.Int).Abs(big.NewInt(n))
				num = new(big.Int).Exp(base.Num(), abs, nil)
				den = new(big.Int).Exp(base.Denom(), abs, nil)
			)
			if n < 0 {
				num, den = den, num
			}
			return new(big.Rat).SetFrac(num, den)
		}
	}
	bf, _ := base.Float64()
	ef, _ := exp.Float64()
	pf := math.Pow(bf, ef)
	if math.IsNaN(pf) || math.IsInf(pf, 0) {
		return nil
	}
	return new(big.Rat).SetFloat64(pf)
}

func ratBits(r *big.Rat) int {
	return r.Num().BitLen() + r.Denom().BitLen()
}

// ============================================================
// Shape statistics
// ============================================================

// Stats describes the shape of an expression graph.
type Stats struct {
	// Distinct counts nodes reachable from the root, each once.
	Distinct int `json:"distinct" yaml:"distinct"`
	// Tree counts nodes as if every shared node were copied per parent.
	Tree int64 `json:"tree" yaml:"tree"`
	// Depth is the number of nodes on the longest root-to-leaf path.
	Depth int `json:"depth" yaml:"depth"`
	// Shared counts nodes referenced as an operand more than once.
	Shared int `json:"shared" yaml:"shared"`
}

type shape struct {
	tree  int64
	depth int
}

// Inspect computes Stats for e.
func Inspect(e Expr) Stats {
	var stats Stats
	refs := map[NodeID]int{}
	root, _ := PostorderFold(e, struct{}{}, func(n Expr, _ struct{}, c []shape) (shape, error) {
		stats.Distinct++
		if len(c) == 0 {
			return shape{tree: 1, depth: 1}, nil
		}
		for _, op := range n.Operands() {
			refs[op.id]++
		}
		return shape{
			tree:  1 + saturatingAdd(c[0].tree, c[1].tree),
			depth: 1 + max(c[0].depth, c[1].depth),
		}, nil
	})
	for _, count := range refs {
		if count > 1 {
			stats.Shared++
		}
	}
	stats.Tree = root.tree
	stats.Depth = root.depth
	return stats
}

func saturatingAdd(a, b int64) int64 {
	if a > math.MaxInt64-1-b {
		return math.MaxInt64 - 1
	}
	return a + b
}
