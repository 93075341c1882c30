package main

import (
	"fmt"

	"gbf-bot/internal/buildinfo"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "gbf-bot %s\n", buildinfo.VersionWithPrefix())
		fmt.Fprintf(out, "commit: %s\n", buildinfo.CommitID())
		fmt.Fprintf(out, "built:  %s\n", buildinfo.BuildTime())
		fmt.Fprintf(out, "go:     %s\n", buildinfo.GoBuild())
	},
}
