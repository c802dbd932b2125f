package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/njchilds90/exprtree"
	"github.com/njchilds90/exprtree/internal/config"
	"github.com/njchilds90/exprtree/internal/server"
)

type renderResult struct {
	Form  string `json:"form" yaml:"form"`
	Value string `json:"value" yaml:"value"`
}

func newRenderCommand() *cobra.Command {
	var canonical, latex bool

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render an expression",
		Long: `Render an expression as infix text with minimal parentheses.

--canonical prints the constructor form, which is unique per structure.
--latex prints LaTeX markup.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := readExpr(cmd, args, exprtree.NewGraph())
			if err != nil {
				return err
			}
			res := renderResult{Form: "text", Value: e.String()}
			switch {
			case canonical:
				res = renderResult{Form: "canonical", Value: e.Canonical()}
			case latex:
				res = renderResult{Form: "latex", Value: e.LaTeX()}
			}
			return emit(cmd, res, res.Value)
		},
	}

	cmd.Flags().BoolVar(&canonical, "canonical", false, "Print the canonical constructor form")
	cmd.Flags().BoolVar(&latex, "latex", false, "Print LaTeX")
	cmd.MarkFlagsMutuallyExclusive("canonical", "latex")
	return cmd
}

func newDiffCommand() *cobra.Command {
	var (
		variable string
		order    int
	)

	cmd := &cobra.Command{
		Use:   "diff [file]",
		Short: "Differentiate an expression",
		Long: `Differentiate an expression with respect to a variable.

The result is printed as infix text, or as a wire document with -o json or
-o yaml, so it can be piped back into another command.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := getLogger(cmd.Context())

			g := exprtree.NewGraph()
			e, err := readExpr(cmd, args, g)
			if err != nil {
				return err
			}
			before := g.Len()
			d, err := exprtree.DiffN(e, variable, order)
			if err != nil {
				return fmt.Errorf("failed to differentiate: %w", err)
			}
			logger.Debug("differentiated",
				"var", variable,
				"order", order,
				"nodes_added", g.Len()-before)
			return emit(cmd, exprtree.Encode(d), d.String())
		},
	}

	cmd.Flags().StringVar(&variable, "var", "", "Variable to differentiate by (required)")
	cmd.Flags().IntVarP(&order, "order", "n", 1, "Derivative order")
	_ = cmd.MarkFlagRequired("var")
	return cmd
}

type walkStep struct {
	Step int    `json:"step" yaml:"step"`
	ID   int    `json:"id" yaml:"id"`
	Kind string `json:"kind" yaml:"kind"`
	Expr string `json:"expr" yaml:"expr"`
}

func newWalkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "walk [file]",
		Short: "Show the postorder traversal of an expression",
		Long: `Show every distinct node of an expression in the order a postorder fold
visits it. Shared subexpressions appear once.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := readExpr(cmd, args, exprtree.NewGraph())
			if err != nil {
				return err
			}
			order := exprtree.Postorder(e)
			steps := make([]walkStep, len(order))
			for i, n := range order {
				steps[i] = walkStep{Step: i + 1, ID: int(n.ID()), Kind: n.Kind().String(), Expr: n.String()}
			}
			return emit(cmd, steps, walkTable(steps, exprtree.Inspect(e)))
		},
	}
}

func walkTable(steps []walkStep, st exprtree.Stats) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "ID", "Kind", "Expression"})
	for _, s := range steps {
		t.AppendRow(table.Row{s.Step, s.ID, s.Kind, s.Expr})
	}
	t.AppendFooter(table.Row{"", "", "depth", st.Depth})
	t.AppendFooter(table.Row{"", "", "tree size", st.Tree})
	t.AppendFooter(table.Row{"", "", "shared", st.Shared})
	return t.Render()
}

func newSymbolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "symbols [file]",
		Short: "List the symbols of an expression",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := readExpr(cmd, args, exprtree.NewGraph())
			if err != nil {
				return err
			}
			names := exprtree.Symbols(e)
			if names == nil {
				names = []string{}
			}
			return emit(cmd, names, strings.Join(names, "\n"))
		},
	}
}

func newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the tool schema",
		Long:  `Print the JSON schema of the tools served by "exprtree serve".`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), exprtree.ToolSpec())
			return err
		},
	}
}

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP tool server",
		Long: `Run the HTTP tool server.

  POST /tool    run a tool call
  GET  /schema  tool schema for agent registration
  GET  /health  liveness check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(getConfig(ctx), getLogger(ctx)).Serve(ctx)
		},
	}
	cmd.Flags().String("addr", config.DefaultAddr, "Listen address")
	return cmd
}
