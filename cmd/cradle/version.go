package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/cradle/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info := version.GetVersionInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (commit %s, built %s, %s)\n",
				version.Product, info.Version, info.GitCommit, info.BuildTime, info.GoVersion)
		},
	}
}
