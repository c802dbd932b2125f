package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/exprtree"
)

// readExpr decodes the wire document named by args into g. With no
// argument, or "-", the document is read from stdin.
func readExpr(cmd *cobra.Command, args []string, g *exprtree.Graph) (exprtree.Expr, error) {
	var (
		data []byte
		err  error
		src  = "stdin"
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		src = args[0]
		data, err = os.ReadFile(src)
	}
	if err != nil {
		return exprtree.Expr{}, fmt.Errorf("failed to read %s: %w", src, err)
	}

	var e exprtree.Expr
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		e, err = exprtree.FromJSON(g, trimmed)
	} else {
		e, err = exprtree.FromYAML(g, data)
	}
	if err != nil {
		return exprtree.Expr{}, fmt.Errorf("failed to decode %s: %w", src, err)
	}

	getLogger(cmd.Context()).Debug("decoded expression",
		"source", src,
		"nodes", g.Len())
	return e, nil
}

// emit writes v in the configured output format. Text output is the
// preformatted text argument.
func emit(cmd *cobra.Command, v any, text string) error {
	w := cmd.OutOrStdout()
	switch strings.ToLower(getConfig(cmd.Context()).Output) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		if text == "" {
			return nil
		}
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		_, err := io.WriteString(w, text)
		return err
	}
}
