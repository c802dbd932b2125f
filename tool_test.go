package exprtree_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/exprtree"
)

const squareDoc = `{"root":2,"nodes":[
	{"kind":"symbol","name":"x"},
	{"kind":"number","value":"2"},
	{"kind":"pow","operands":[0,1]}]}`

// doublingDoc builds levels nodes of kind over x, each using the previous
// node as both operands. Its tree size is 2^(levels+1) - 1.
func doublingDoc(kind string, levels int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `{"root":%d,"nodes":[{"kind":"symbol","name":"x"}`, levels)
	for i := 1; i <= levels; i++ {
		fmt.Fprintf(&b, `,{"kind":%q,"operands":[%d,%d]}`, kind, i-1, i-1)
	}
	b.WriteString("]}")
	return b.String()
}

func call(tool string, params map[string]string) exprtree.ToolResponse {
	req := exprtree.ToolRequest{Tool: tool, Params: map[string]json.RawMessage{}}
	for k, v := range params {
		req.Params[k] = json.RawMessage(v)
	}
	return exprtree.HandleToolCall(req)
}

func TestHandleToolCall_Diff(t *testing.T) {
	resp := call("diff", map[string]string{"expr": squareDoc, "var": `"x"`})
	require.Empty(t, resp.Error)
	assert.Equal(t, "2 * 1 * x ^ (2 - 1)", resp.String)
	assert.Equal(t, `2 \cdot 1 \cdot x^{2 - 1}`, resp.LaTeX)

	doc, ok := resp.Result.(exprtree.Document)
	require.True(t, ok)
	g := exprtree.NewGraph()
	d, err := exprtree.Decode(g, doc)
	require.NoError(t, err)
	assert.Equal(t, resp.String, d.String())
}

func TestHandleToolCall_DiffN(t *testing.T) {
	resp := call("diffn", map[string]string{"expr": squareDoc, "var": `"x"`, "n": `2`})
	require.Empty(t, resp.Error)
	doc := resp.Result.(exprtree.Document)
	d, err := exprtree.Decode(exprtree.NewGraph(), doc)
	require.NoError(t, err)
	for _, xv := range samples {
		assert.InDelta(t, 2.0, mustEval(t, d, map[string]float64{"x": xv}), 1e-9)
	}
}

func TestHandleToolCall_Inspection(t *testing.T) {
	tests := []struct {
		tool string
		want any
	}{
		{"render", "x ^ 2"},
		{"canonical", `Pow(Symbol("x"), Number(2))`},
		{"latex", "x^{2}"},
		{"symbols", []string{"x"}},
		{"postorder", []string{"x", "2", "x ^ 2"}},
		{"stats", exprtree.Stats{Distinct: 3, Tree: 3, Depth: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			resp := call(tt.tool, map[string]string{"expr": squareDoc})
			require.Empty(t, resp.Error)
			assert.Equal(t, tt.want, resp.Result)
		})
	}
}

func TestHandleToolCall_Constant(t *testing.T) {
	resp := call("constant", map[string]string{"expr": `{"root":2,"nodes":[
		{"kind":"number","value":"3"},{"kind":"number","value":"4"},{"kind":"div","operands":[0,1]}]}`})
	require.Empty(t, resp.Error)
	assert.Equal(t, "3/4", resp.Result)
	assert.Equal(t, "0.75", resp.String)
	assert.Equal(t, `\frac{3}{4}`, resp.LaTeX)

	resp = call("constant", map[string]string{"expr": squareDoc})
	assert.NotEmpty(t, resp.Error)
}

func TestHandleToolCall_Errors(t *testing.T) {
	tests := []struct {
		name    string
		tool    string
		params  map[string]string
		wantErr string
	}{
		{"unknown tool", "simplify", nil, "unknown tool: simplify"},
		{"missing tool", "", nil, "missing tool name"},
		{"missing expr", "render", nil, "missing param: expr"},
		{"missing var", "diff", map[string]string{"expr": squareDoc}, "missing param: var"},
		{"var not string", "diff", map[string]string{"expr": squareDoc, "var": `1`}, "param var must be a string"},
		{"n not integer", "diffn", map[string]string{"expr": squareDoc, "var": `"x"`, "n": `"two"`}, "param n must be an integer"},
		{"negative order", "diffn", map[string]string{"expr": squareDoc, "var": `"x"`, "n": `-1`}, "non-negative"},
		{"malformed expr", "render", map[string]string{"expr": `{"root":0,"nodes":[]}`}, "malformed document"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(tt.tool, tt.params)
			assert.Contains(t, resp.Error, tt.wantErr)
			assert.Nil(t, resp.Result)
		})
	}
}

func TestHandleToolCall_RefusesOversizedOutput(t *testing.T) {
	huge := doublingDoc("add", 40)
	for _, tool := range []string{"render", "canonical", "latex", "postorder"} {
		t.Run(tool, func(t *testing.T) {
			resp := call(tool, map[string]string{"expr": huge})
			assert.Contains(t, resp.Error, "expression too large")
			assert.Nil(t, resp.Result)
		})
	}

	resp := call("stats", map[string]string{"expr": huge})
	require.Empty(t, resp.Error)
	assert.Equal(t, int64(1)<<41-1, resp.Result.(exprtree.Stats).Tree)

	resp = call("render", map[string]string{"expr": doublingDoc("add", 3)})
	require.Empty(t, resp.Error)
	assert.Equal(t, "x + x + x + x + x + x + x + x", resp.Result)
}

func TestHandleToolCall_BoundsDerivatives(t *testing.T) {
	x := `{"root":0,"nodes":[{"kind":"symbol","name":"x"}]}`

	resp := call("diffn", map[string]string{"expr": x, "var": `"x"`, "n": fmt.Sprint(exprtree.MaxToolOrder)})
	require.Empty(t, resp.Error)
	assert.Equal(t, "0", resp.String)

	resp = call("diffn", map[string]string{"expr": x, "var": `"x"`, "n": fmt.Sprint(exprtree.MaxToolOrder + 1)})
	assert.Contains(t, resp.Error, "derivative order 33 exceeds 32")

	// The input's tree stays just under the limit; its derivative does not.
	resp = call("diff", map[string]string{"expr": doublingDoc("mul", 19), "var": `"x"`})
	assert.Contains(t, resp.Error, "derivative")
	assert.Contains(t, resp.Error, "expression too large")
	assert.Nil(t, resp.Result)
}

func TestToolSpec(t *testing.T) {
	var spec struct {
		Tools []struct {
			Name        string `json:"name"`
			InputSchema struct {
				Properties map[string]struct {
					Type       string         `json:"type"`
					Maximum    int            `json:"maximum"`
					Properties map[string]any `json:"properties"`
				} `json:"properties"`
				Required []string `json:"required"`
			} `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal([]byte(exprtree.ToolSpec()), &spec))

	names := make([]string, len(spec.Tools))
	for i, tool := range spec.Tools {
		names[i] = tool.Name
		if tool.Name == "schema" {
			continue
		}
		expr := tool.InputSchema.Properties["expr"]
		assert.Equal(t, "object", expr.Type, tool.Name)
		assert.Contains(t, expr.Properties, "nodes", tool.Name)
		assert.Contains(t, tool.InputSchema.Required, "expr", tool.Name)
		if tool.Name == "diffn" {
			assert.Equal(t, exprtree.MaxToolOrder, tool.InputSchema.Properties["n"].Maximum)
			assert.Equal(t, []string{"expr", "var", "n"}, tool.InputSchema.Required)
		}
	}
	assert.Subset(t, names, []string{"render", "canonical", "latex", "diff", "diffn", "symbols", "constant", "postorder", "stats", "schema"})
	assert.Contains(t, exprtree.ToolSpec(), `"enum": [`)

	resp := call("schema", nil)
	require.Empty(t, resp.Error)
	assert.JSONEq(t, exprtree.ToolSpec(), string(resp.Result.(json.RawMessage)))
}
