package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/aretw0/elicitation/internal/presentation/graph"
	"github.com/aretw0/elicitation/internal/presentation/tui"
	"github.com/aretw0/elicitation/pkg/tool"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	plainOutput   bool
	mermaidOutput bool
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the registered tools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		return listTools(cmd.OutOrStdout(), a.registry)
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe <tool>",
	Short: "Describe a tool and the payload it accepts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if mermaidOutput {
			return describeGraph(out, a.registry, args[0])
		}
		return describeTool(out, a.registry, args[0], plainOutput || !isTerminal(out))
	},
}

func listTools(w io.Writer, r *tool.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tDESCRIPTION")
	for _, t := range r.List() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Name, t.TypeName, t.Description)
	}
	return tw.Flush()
}

func describeTool(w io.Writer, r *tool.Registry, name string, plain bool) error {
	t, ok := r.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", tool.ErrUnknownTool, name)
	}
	render, err := tui.NewRenderer(plain)
	if err != nil {
		return err
	}
	out, err := render(t.Markdown())
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func describeGraph(w io.Writer, r *tool.Registry, name string) error {
	t, ok := r.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", tool.ErrUnknownTool, name)
	}
	_, err := io.WriteString(w, graph.GenerateMermaid(t, nil))
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func profileFor(w io.Writer) termenv.Profile {
	if isTerminal(w) {
		return termenv.EnvColorProfile()
	}
	return termenv.Ascii
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().BoolVar(&plainOutput, "plain", false, "Print raw Markdown")
	describeCmd.Flags().BoolVar(&mermaidOutput, "mermaid", false, "Print the payload as a Mermaid flowchart")
}
