package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/elicitation"
	"github.com/aretw0/elicitation/internal/presentation/tui"
	"github.com/aretw0/elicitation/pkg/adapters/terminal"
	"github.com/aretw0/elicitation/pkg/elicit"
	"github.com/aretw0/elicitation/pkg/ports"
	"github.com/aretw0/elicitation/pkg/tool"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <tool>",
	Short: "Elicit a value interactively and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, closeStore, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		if terminal.Interactive() {
			tui.PrintBanner(cmd.ErrOrStderr(), profileFor(cmd.ErrOrStderr()), elicitation.Version)
		}
		ch := terminal.New(cmd.InOrStdin(), cmd.ErrOrStderr())
		return ask(ctx, cmd.OutOrStdout(), a.registry, args[0], ch, a.sessionOptions(store)...)
	},
}

// ask runs one tool over ch. Prompts go to the channel; only the final
// value is written to w, so the output can be piped.
func ask(ctx context.Context, w io.Writer, r *tool.Registry, name string, ch ports.Channel, opts ...elicit.Option) error {
	v, err := r.Call(ctx, name, ch, opts...)
	if err != nil {
		return fmt.Errorf("%s (%s): %w", name, elicit.OutcomeOf(err), err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(askCmd)
}
