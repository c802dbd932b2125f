package exprtree

import (
	"encoding/json"
	"fmt"
	"math/big"

	"gopkg.in/yaml.v3"
)

// ============================================================
// Wire format
// ============================================================

// Document is the flat wire form of an expression graph. Nodes are listed
// so that operands always come before the operators using them; Root
// indexes the expression itself. Sharing survives a round trip.
type Document struct {
	Root  int        `json:"root" yaml:"root"`
	Nodes []WireNode `json:"nodes" yaml:"nodes"`
}

// WireNode is one entry of a Document.
type WireNode struct {
	Kind     string `json:"kind" yaml:"kind"`
	Value    string `json:"value,omitempty" yaml:"value,omitempty"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Operands []int  `json:"operands,omitempty" yaml:"operands,omitempty,flow"`
}

// Encode lists the nodes reachable from e in postorder.
func Encode(e Expr) Document {
	var doc Document
	root, _ := PostorderFold(e, &doc, encodeNode)
	doc.Root = root
	return doc
}

func encodeNode(e Expr, doc *Document, operands []int) (int, error) {
	n := e.load()
	w := WireNode{Kind: n.kind.String(), Operands: operands}
	switch n.kind {
	case KindNumber:
		w.Value = n.num.RatString()
	case KindSymbol:
		w.Name = n.name
	}
	doc.Nodes = append(doc.Nodes, w)
	return len(doc.Nodes) - 1, nil
}

// Decode appends the nodes of doc to g and returns the root. The whole
// document is checked first, so a malformed one leaves g untouched.
func Decode(g *Graph, doc Document) (Expr, error) {
	if len(doc.Nodes) == 0 {
		return Expr{}, fmt.Errorf("%w: no nodes", ErrMalformed)
	}
	if doc.Root < 0 || doc.Root >= len(doc.Nodes) {
		return Expr{}, fmt.Errorf("%w: root %d out of range", ErrMalformed, doc.Root)
	}
	var (
		kinds  = make([]Kind, len(doc.Nodes))
		values = make([]*big.Rat, len(doc.Nodes))
	)
	for i, w := range doc.Nodes {
		k, ok := ParseKind(w.Kind)
		if !ok {
			return Expr{}, fmt.Errorf("%w: node %d: unknown kind %q", ErrMalformed, i, w.Kind)
		}
		kinds[i] = k
		switch {
		case k == KindNumber:
			r, ok := new(big.Rat).SetString(w.Value)
			if !ok {
				return Expr{}, fmt.Errorf("%w: node %d: invalid number %q", ErrMalformed, i, w.Value)
			}
			values[i] = r
		case k.IsOperator():
			if len(w.Operands) != 2 {
				return Expr{}, fmt.Errorf("%w: node %d: %s takes 2 operands, got %d", ErrMalformed, i, k, len(w.Operands))
			}
			for _, op := range w.Operands {
				if op < 0 || op >= i {
					return Expr{}, fmt.Errorf("%w: node %d: operand %d must precede it", ErrMalformed, i, op)
				}
			}
		}
		if k.IsTerminal() && len(w.Operands) != 0 {
			return Expr{}, fmt.Errorf("%w: node %d: %s takes no operands", ErrMalformed, i, k)
		}
	}

	exprs := make([]Expr, len(doc.Nodes))
	for i, w := range doc.Nodes {
		switch k := kinds[i]; k {
		case KindNumber:
			exprs[i] = g.push(node{kind: k, num: values[i]})
		case KindSymbol:
			exprs[i] = g.push(node{kind: k, name: w.Name})
		default:
			exprs[i] = g.op(k, exprs[w.Operands[0]], exprs[w.Operands[1]])
		}
	}
	return exprs[doc.Root], nil
}

func ToJSON(e Expr) ([]byte, error) {
	return json.Marshal(Encode(e))
}

func FromJSON(g *Graph, data []byte) (Expr, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Expr{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return Decode(g, doc)
}

func ToYAML(e Expr) ([]byte, error) {
	return yaml.Marshal(Encode(e))
}

func FromYAML(g *Graph, data []byte) (Expr, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Expr{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return Decode(g, doc)
}

// ============================================================
// Import
// ============================================================

// Import copies the graph reachable from e into g, keeping its sharing,
// and returns the copy of e. An Expr already in g is returned as is.
func (g *Graph) Import(e Expr) Expr {
	if e.g == g {
		return e
	}
	r, _ := PostorderFold(e, g, importNode)
	return r
}

func importNode(e Expr, g *Graph, c []Expr) (Expr, error) {
	n := e.load()
	if n.kind.IsOperator() {
		return g.op(n.kind, c[0], c[1]), nil
	}
	return g.push(node{kind: n.kind, num: n.num, name: n.name}), nil
}
