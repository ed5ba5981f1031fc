package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/elicitation/pkg/verification"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var (
	verifyModules     []string
	verifyCSV         string
	verifyTimeout     time.Duration
	verifyConcurrency int
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run the bounded verification harnesses",
	Long: `Runs exhaustive checks over small input spaces: UTF-8 validation, UUID
bits, URL schemes, paths, address classes, integer wrappers and the reference
contracts. Exits non-zero when any harness fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		runner := &verification.Runner{
			Concurrency: verifyConcurrency,
			Timeout:     verifyTimeout,
			Logger:      a.logger,
		}
		out := cmd.OutOrStdout()
		return verify(cmd.Context(), out, profileFor(out), runner, verification.Builtin(), verifyModules, verifyCSV)
	},
}

func verify(ctx context.Context, w io.Writer, p termenv.Profile, runner *verification.Runner, registry *verification.Registry, modules []string, csvPath string) error {
	harnesses := registry.All()
	if len(modules) > 0 {
		for _, m := range modules {
			if !slices.Contains(registry.Modules(), m) {
				return fmt.Errorf("unknown module %q (known: %s)", m, strings.Join(registry.Modules(), ", "))
			}
		}
		harnesses = slices.DeleteFunc(harnesses, func(h verification.Harness) bool {
			return !slices.Contains(modules, h.Module)
		})
	}

	report := runner.Run(ctx, harnesses)
	if err := report.Render(w, p); err != nil {
		return err
	}

	if csvPath != "" {
		f, err := os.Create(csvPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", csvPath, err)
		}
		werr := report.WriteCSV(f)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return fmt.Errorf("failed to write %s: %w", csvPath, werr)
		}
	}

	if report.Failed() {
		return fmt.Errorf("%d of %d harnesses did not pass", len(report.Results)-report.Count(verification.StatusPass), len(report.Results))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringSliceVar(&verifyModules, "module", nil, "Run only these modules (foundation, wrapper, contract)")
	verifyCmd.Flags().StringVar(&verifyCSV, "csv", "", "Also write the report as CSV to this file")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", time.Minute, "Per-harness timeout")
	verifyCmd.Flags().IntVar(&verifyConcurrency, "concurrency", 0, "Parallel harnesses (0 means GOMAXPROCS)")
}
