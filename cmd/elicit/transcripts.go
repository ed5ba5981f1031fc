package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/elicitation/internal/presentation/graph"
	"github.com/aretw0/elicitation/pkg/ports"
	"github.com/aretw0/elicitation/pkg/tool"
	"github.com/spf13/cobra"
)

var transcriptsCmd = &cobra.Command{
	Use:   "transcripts",
	Short: "Inspect recorded elicitation sessions",
}

var transcriptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transcript IDs, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, _ *app, store ports.TranscriptStore) error {
			return listTranscripts(ctx, cmd.OutOrStdout(), store)
		})
	},
}

var transcriptsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one transcript as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, _ *app, store ports.TranscriptStore) error {
			return showTranscript(ctx, cmd.OutOrStdout(), store, args[0])
		})
	},
}

var transcriptsGraphCmd = &cobra.Command{
	Use:   "graph <id>",
	Short: "Print a transcript as a Mermaid flowchart of its tool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, a *app, store ports.TranscriptStore) error {
			return graphTranscript(ctx, cmd.OutOrStdout(), store, a.registry, args[0])
		})
	},
}

func withStore(cmd *cobra.Command, fn func(context.Context, *app, ports.TranscriptStore) error) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if a.cfg.Store.Driver == "memory" {
		a.logger.Warn("memory store holds no transcripts between runs; set store.driver=redis")
	}
	store, closeStore, err := a.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(cmd.Context(), a, store)
}

func listTranscripts(ctx context.Context, w io.Writer, store ports.TranscriptStore) error {
	ids, err := store.List(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Fprintln(w, id)
	}
	return nil
}

func showTranscript(ctx context.Context, w io.Writer, store ports.TranscriptStore, id string) error {
	t, err := store.Load(ctx, id)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

func graphTranscript(ctx context.Context, w io.Writer, store ports.TranscriptStore, r *tool.Registry, id string) error {
	t, err := store.Load(ctx, id)
	if err != nil {
		return err
	}
	for _, tl := range r.List() {
		if tl.TypeName == t.Type {
			_, err := io.WriteString(w, graph.GenerateMermaid(tl, graph.OverlayOf(t)))
			return err
		}
	}
	return fmt.Errorf("%w: no tool elicits %s", tool.ErrUnknownTool, t.Type)
}

func init() {
	rootCmd.AddCommand(transcriptsCmd)
	transcriptsCmd.AddCommand(transcriptsListCmd)
	transcriptsCmd.AddCommand(transcriptsShowCmd)
	transcriptsCmd.AddCommand(transcriptsGraphCmd)
}
