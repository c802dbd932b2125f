package exprtree

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ============================================================
// Tool interface
// ============================================================

const (
	// MaxToolTree bounds the tree size (nodes counted once per parent) of
	// anything a tool renders.
	MaxToolTree = 1 << 20
	// MaxToolOrder bounds the derivative order accepted by diffn.
	MaxToolOrder = 32
)

// ToolRequest names a tool and carries its parameters. Expression
// parameters are wire Documents.
type ToolRequest struct {
	Tool   string                     `json:"tool"`
	Params map[string]json.RawMessage `json:"params"`
}

type ToolResponse struct {
	Result any    `json:"result,omitempty"`
	LaTeX  string `json:"latex,omitempty"`
	String string `json:"string,omitempty"`
	Error  string `json:"error,omitempty"`
}

// HandleToolCall runs one tool against a fresh graph. Failures are reported
// in ToolResponse.Error.
func HandleToolCall(req ToolRequest) ToolResponse {
	g := NewGraph()

	getExpr := func(key string) (Expr, error) {
		raw, ok := req.Params[key]
		if !ok {
			return Expr{}, fmt.Errorf("missing param: %s", key)
		}
		return FromJSON(g, raw)
	}
	getString := func(key string) (string, error) {
		raw, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	getInt := func(key string) (int, error) {
		raw, ok := req.Params[key]
		if !ok {
			return 0, fmt.Errorf("missing param: %s", key)
		}
		var n int
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, fmt.Errorf("param %s must be an integer", key)
		}
		return n, nil
	}
	fail := func(err error) ToolResponse {
		return ToolResponse{Error: err.Error()}
	}

	switch req.Tool {
	case "render", "canonical", "latex", "symbols", "constant", "postorder", "stats":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		return inspectTool(req.Tool, e)
	case "diff", "diffn":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		v, err := getString("var")
		if err != nil {
			return fail(err)
		}
		n := 1
		if req.Tool == "diffn" {
			if n, err = getInt("n"); err != nil {
				return fail(err)
			}
		}
		d, err := boundedDiff(e, v, n)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: Encode(d), LaTeX: d.LaTeX(), String: d.String()}
	case "schema":
		return ToolResponse{Result: json.RawMessage(ToolSpec())}
	case "":
		return fail(fmt.Errorf("missing tool name"))
	default:
		return fail(fmt.Errorf("unknown tool: %s", req.Tool))
	}
}

func inspectTool(tool string, e Expr) ToolResponse {
	switch tool {
	case "render", "canonical", "latex":
		if err := checkTree(Inspect(e).Tree); err != nil {
			return ToolResponse{Error: err.Error()}
		}
	case "postorder":
		if err := checkTree(postorderCost(e)); err != nil {
			return ToolResponse{Error: err.Error()}
		}
	}

	switch tool {
	case "render":
		return ToolResponse{Result: e.String(), String: e.String()}
	case "canonical":
		return ToolResponse{Result: e.Canonical(), String: e.Canonical()}
	case "latex":
		return ToolResponse{Result: e.LaTeX(), LaTeX: e.LaTeX()}
	case "symbols":
		names := Symbols(e)
		return ToolResponse{Result: names, String: strings.Join(names, ", ")}
	case "constant":
		r, ok := Constant(e)
		if !ok {
			return ToolResponse{Error: "expression has no constant value"}
		}
		return ToolResponse{Result: r.RatString(), String: formatNumber(r), LaTeX: latexNumber(r)}
	case "postorder":
		order := Postorder(e)
		steps := make([]string, len(order))
		for i, n := range order {
			steps[i] = n.String()
		}
		return ToolResponse{Result: steps, String: strings.Join(steps, "\n")}
	case "stats":
		st := Inspect(e)
		return ToolResponse{
			Result: st,
			String: fmt.Sprintf("distinct=%d tree=%d depth=%d shared=%d", st.Distinct, st.Tree, st.Depth, st.Shared),
		}
	}
	return ToolResponse{Error: "unknown tool: " + tool}
}

// boundedDiff is DiffN with the order capped at MaxToolOrder. It stops as
// soon as an intermediate derivative is too large to render.
func boundedDiff(e Expr, variable string, n int) (Expr, error) {
	if n < 0 {
		return DiffN(e, variable, n)
	}
	if n > MaxToolOrder {
		return Expr{}, fmt.Errorf("%w: derivative order %d exceeds %d", ErrTooLarge, n, MaxToolOrder)
	}
	d := e
	for i := 0; i < n; i++ {
		var err error
		if d, err = Diff(d, variable); err != nil {
			return Expr{}, err
		}
		if err := checkTree(Inspect(d).Tree); err != nil {
			return Expr{}, fmt.Errorf("derivative: %w", err)
		}
	}
	return d, nil
}

func checkTree(size int64) error {
	if size > MaxToolTree {
		return fmt.Errorf("%w: tree size %d exceeds %d", ErrTooLarge, size, MaxToolTree)
	}
	return nil
}

// postorderCost sums the tree sizes of every distinct node, which bounds
// the total length of the postorder listing.
func postorderCost(e Expr) int64 {
	var total int64
	_, _ = PostorderFold(e, struct{}{}, func(_ Expr, _ struct{}, c []int64) (int64, error) {
		size := int64(1)
		for _, n := range c {
			size = saturatingAdd(size, n)
		}
		total = saturatingAdd(total, size)
		return size, nil
	})
	return total
}

// ============================================================
// Tool schema
// ============================================================

// documentSchema describes a wire Document as a JSON schema.
var documentSchema = map[string]any{
	"type":     "object",
	"required": []string{"root", "nodes"},
	"properties": map[string]any{
		"root": map[string]any{"type": "integer", "minimum": 0},
		"nodes": map[string]any{
			"type":        "array",
			"minItems":    1,
			"description": "Operands are listed before the operators using them",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"kind"},
				"properties": map[string]any{
					"kind":  map[string]any{"type": "string", "enum": kindEnum()},
					"value": map[string]any{"type": "string", "description": "Exact rational or decimal for number nodes"},
					"name":  map[string]any{"type": "string", "description": "Name of a symbol node"},
					"operands": map[string]any{
						"type":     "array",
						"items":    map[string]any{"type": "integer", "minimum": 0},
						"minItems": 2,
						"maxItems": 2,
					},
				},
			},
		},
	},
}

var (
	exprParam = param{"expr", documentSchema}
	varParam  = param{"var", map[string]any{"type": "string", "description": "Symbol to differentiate by"}}
	nParam    = param{"n", map[string]any{"type": "integer", "minimum": 0, "maximum": MaxToolOrder}}
)

// param is one named tool input and its JSON schema.
type param struct {
	name   string
	schema map[string]any
}

func ToolSpec() string {
	tools := []map[string]any{
		toolSchema("render", "Render expression in infix form with minimal parentheses", exprParam),
		toolSchema("canonical", "Render expression structure, e.g. Add(Symbol(\"x\"), Number(1))", exprParam),
		toolSchema("latex", "Convert to LaTeX", exprParam),
		toolSchema("symbols", "Return sorted free symbol names", exprParam),
		toolSchema("constant", "Fold an expression without symbols to its exact value", exprParam),
		toolSchema("postorder", "List distinct nodes in postorder evaluation order", exprParam),
		toolSchema("stats", "Node counts, depth and sharing of the expression graph", exprParam),
		toolSchema("diff", "First derivative d/dvar", exprParam, varParam),
		toolSchema("diffn", "nth derivative", exprParam, varParam, nParam),
		toolSchema("schema", "Return this tool schema"),
	}
	spec := map[string]any{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

// toolSchema describes a tool whose params are all required.
func toolSchema(name, description string, params ...param) map[string]any {
	var (
		properties = map[string]any{}
		required   = []string{}
	)
	for _, p := range params {
		properties[p.name] = p.schema
		required = append(required, p.name)
	}
	return map[string]any{
		"name":        name,
		"description": description,
		"inputSchema": map[string]any{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}

func kindEnum() []string {
	kinds := make([]string, 0, KindPow)
	for k := KindNumber; k <= KindPow; k++ {
		kinds = append(kinds, k.String())
	}
	return kinds
}
