// Package exprtree builds, renders and differentiates symbolic arithmetic
// expression graphs.
//
// Design goals:
//   - Nodes live in an append-only Graph and are addressed by index
//   - Exact rational constants (math/big.Rat)
//   - One iterative postorder engine under every transform
//   - Shared subexpressions are visited once, by identity
//   - Precedence-correct rendering with no redundant parentheses
package exprtree

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
)

// ============================================================
// Errors
// ============================================================

var (
	// ErrTypeKind is returned when a terminal is built from a value of the
	// wrong kind, or when a literal cannot be promoted to a node.
	ErrTypeKind = errors.New("exprtree: value has the wrong kind")

	// ErrUnsupportedKind is returned by transforms that meet a node kind
	// outside the set they handle.
	ErrUnsupportedKind = errors.New("exprtree: unsupported node kind")

	// ErrMalformed is returned when a wire document does not describe a
	// valid graph.
	ErrMalformed = errors.New("exprtree: malformed document")

	// ErrTooLarge is returned by the tool interface when a request would
	// produce more output than it allows.
	ErrTooLarge = errors.New("exprtree: expression too large")
)

// ============================================================
// Kind and Precedence
// ============================================================

// Kind identifies the variant of a node.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNumber
	KindSymbol
	KindAdd
	KindSub
	KindMul
	KindDiv
	KindPow
)

var kindNames = map[Kind]string{
	KindNumber: "number",
	KindSymbol: "symbol",
	KindAdd:    "add",
	KindSub:    "sub",
	KindMul:    "mul",
	KindDiv:    "div",
	KindPow:    "pow",
}

var kindSymbols = map[Kind]string{
	KindAdd: "+",
	KindSub: "-",
	KindMul: "*",
	KindDiv: "/",
	KindPow: "^",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Symbol returns the rendering symbol of an operator kind, or "" for
// terminals.
func (k Kind) Symbol() string { return kindSymbols[k] }

// IsTerminal reports whether k is a leaf kind.
func (k Kind) IsTerminal() bool { return k == KindNumber || k == KindSymbol }

// IsOperator reports whether k is one of the binary operator kinds.
func (k Kind) IsOperator() bool { return k >= KindAdd && k <= KindPow }

// ParseKind maps a kind name back to its Kind.
func ParseKind(name string) (Kind, bool) {
	for k, s := range kindNames {
		if s == name {
			return k, true
		}
	}
	return KindInvalid, false
}

// Precedence orders node kinds for parenthesization. It never affects
// evaluation order.
type Precedence int

const (
	PrecedenceAdd Precedence = iota + 1
	PrecedenceMul
	PrecedencePow
	PrecedenceAtom
)

// Precedence returns the binding level of the kind. Terminals bind tightest.
func (k Kind) Precedence() Precedence {
	switch k {
	case KindAdd, KindSub:
		return PrecedenceAdd
	case KindMul, KindDiv:
		return PrecedenceMul
	case KindPow:
		return PrecedencePow
	default:
		return PrecedenceAtom
	}
}

// ============================================================
// Graph: append-only node arena
// ============================================================

// NodeID addresses a node inside its Graph.
type NodeID int

type node struct {
	kind     Kind
	num      *big.Rat
	name     string
	operands [2]NodeID
}

// Graph owns expression nodes. Nodes are appended and never modified, and
// an operator's operands always precede it, so every Graph is acyclic.
// A Graph is safe for concurrent use.
type Graph struct {
	mu    sync.RWMutex
	nodes []node
}

func NewGraph() *Graph { return &Graph{} }

// Len returns the number of nodes stored in g.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

func (g *Graph) push(n node) Expr {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes = append(g.nodes, n)
	return Expr{g: g, id: NodeID(len(g.nodes) - 1)}
}

func (g *Graph) node(id NodeID) node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes[id]
}

// prefix returns the nodes up to and including id. Entries of the returned
// slice are never written again, so it may be read without the lock.
func (g *Graph) prefix(id NodeID) []node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes[:id+1:id+1]
}

// Number appends a numeric constant. v may be any Go integer or float type,
// *big.Int, *big.Rat or big.Rat.
func (g *Graph) Number(v any) (Expr, error) {
	r, err := toRat(v)
	if err != nil {
		return Expr{}, err
	}
	return g.push(node{kind: KindNumber, num: r}), nil
}

// Symbol appends a variable. v must be string-like.
func (g *Graph) Symbol(v any) (Expr, error) {
	name, err := toName(v)
	if err != nil {
		return Expr{}, err
	}
	return g.push(node{kind: KindSymbol, name: name}), nil
}

func (g *Graph) integer(n int64) Expr {
	return g.push(node{kind: KindNumber, num: new(big.Rat).SetInt64(n)})
}

func (g *Graph) op(k Kind, a, b Expr) Expr {
	if a.g != g || b.g != g {
		panic("exprtree: operands belong to different graphs")
	}
	return g.push(node{kind: k, operands: [2]NodeID{a.id, b.id}})
}

// ============================================================
// Expr: handle to a node
// ============================================================

// Expr is a handle to a node in a Graph. Two handles are the same node iff
// they compare equal; structurally identical nodes with different ids are
// distinct.
type Expr struct {
	g  *Graph
	id NodeID
}

func (e Expr) IsValid() bool          { return e.g != nil }
func (e Expr) Graph() *Graph          { return e.g }
func (e Expr) ID() NodeID             { return e.id }
func (e Expr) Kind() Kind             { return e.load().kind }
func (e Expr) Name() string           { return e.load().name }
func (e Expr) Precedence() Precedence { return e.Kind().Precedence() }

func (e Expr) load() node {
	if e.g == nil {
		panic("exprtree: use of invalid Expr")
	}
	return e.g.node(e.id)
}

// Value returns a copy of a number's value, or nil for other kinds.
func (e Expr) Value() *big.Rat {
	n := e.load()
	if n.num == nil {
		return nil
	}
	return new(big.Rat).Set(n.num)
}

// Operands returns the left and right children of an operator, or nil for
// terminals.
func (e Expr) Operands() []Expr {
	n := e.load()
	if !n.kind.IsOperator() {
		return nil
	}
	return []Expr{{g: e.g, id: n.operands[0]}, {g: e.g, id: n.operands[1]}}
}

// Left returns the first operand. It panics on terminals.
func (e Expr) Left() Expr { return e.operand(0) }

// Right returns the second operand. It panics on terminals.
func (e Expr) Right() Expr { return e.operand(1) }

func (e Expr) operand(i int) Expr {
	n := e.load()
	if !n.kind.IsOperator() {
		panic(fmt.Sprintf("exprtree: %s has no operands", n.kind))
	}
	return Expr{g: e.g, id: n.operands[i]}
}

// ============================================================
// Operator constructors
// ============================================================

func Add(a, b Expr) Expr { return build(KindAdd, a, b) }
func Sub(a, b Expr) Expr { return build(KindSub, a, b) }
func Mul(a, b Expr) Expr { return build(KindMul, a, b) }
func Div(a, b Expr) Expr { return build(KindDiv, a, b) }
func Pow(a, b Expr) Expr { return build(KindPow, a, b) }

// Op builds an operator node of kind k.
func Op(k Kind, a, b Expr) (Expr, error) {
	if !k.IsOperator() {
		return Expr{}, fmt.Errorf("%w: %s is not an operator", ErrUnsupportedKind, k)
	}
	return build(k, a, b), nil
}

func build(k Kind, a, b Expr) Expr {
	if a.g == nil || b.g == nil {
		panic("exprtree: use of invalid Expr")
	}
	return a.g.op(k, a, b)
}
