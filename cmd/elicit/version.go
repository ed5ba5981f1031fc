package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/elicitation"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of elicit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "elicit version %s\n", strings.TrimSpace(elicitation.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
