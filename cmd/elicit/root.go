package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	overrides  []string
)

var rootCmd = &cobra.Command{
	Use:   "elicit",
	Short: "elicit builds validated values from a conversation",
	Long: `elicit asks a human or an agent for typed values one field at a time,
re-asking with the exact violation until every part passes its constructor.
The same types are served as MCP tools and over HTTP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "elicit.yaml", "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides log.level)")
	rootCmd.PersistentFlags().StringArrayVar(&overrides, "set", nil, "Override a configuration key, e.g. --set retry.max_attempts=5")
}
