package exprtree

// ============================================================
// Postorder traversal engine
// ============================================================

// PostorderFold evaluates combine once for every distinct node reachable
// from root, children before parents and left before right, and returns the
// value computed for root.
//
// Results are memoized by node identity: a node shared by several parents
// is combined once and every parent receives the same result. Terminals are
// combined with an empty children slice. ctx is handed unchanged to every
// call.
//
// The walk keeps its own stack, so graph depth is bounded by memory rather
// than by the goroutine stack. The first error returned by combine stops the
// walk and is returned as is.
func PostorderFold[C, R any](root Expr, ctx C, combine func(e Expr, ctx C, children []R) (R, error)) (R, error) {
	var zero R
	if !root.IsValid() {
		panic("exprtree: use of invalid Expr")
	}
	var (
		g       = root.g
		nodes   = g.prefix(root.id)
		results = make(map[NodeID]R)
		stack   = []NodeID{root.id}
	)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		if _, done := results[id]; done {
			stack = stack[:len(stack)-1]
			continue
		}
		var (
			n        = nodes[id]
			children []R
		)
		if n.kind.IsOperator() {
			left, lok := results[n.operands[0]]
			right, rok := results[n.operands[1]]
			if !lok || !rok {
				// right goes in first so that left is resolved first
				if !rok {
					stack = append(stack, n.operands[1])
				}
				if !lok {
					stack = append(stack, n.operands[0])
				}
				continue
			}
			children = []R{left, right}
		}
		stack = stack[:len(stack)-1]

		res, err := combine(Expr{g: g, id: id}, ctx, children)
		if err != nil {
			return zero, err
		}
		results[id] = res
	}
	return results[root.id], nil
}

// Postorder lists the distinct nodes reachable from root in the order
// PostorderFold combines them.
func Postorder(root Expr) []Expr {
	var order []Expr
	_, _ = PostorderFold(root, struct{}{}, func(e Expr, _ struct{}, _ []struct{}) (struct{}, error) {
		order = append(order, e)
		return struct{}{}, nil
	})
	return order
}
