package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gbf-bot",
	Short: "Granblue Fantasy multi-battle recruitment bot for Discord",
	Long: `Discord上でグラブルのマルチバトル募集を管理するBOT。

サブコマンドを省略した場合は serve と同じ動作をします。`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
