package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func versionText() string {
	return fmt.Sprintf("mt2mw version %s\n  commit: %s\n  built:  %s\n", version, commit, date)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), versionText())
		},
	}
}
