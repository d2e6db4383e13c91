// Command newswatch polls a breaking news feed and prints every novel
// breaking item as one JSON line.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "newswatch",
	Short: "Breaking news watcher",
	Long: `newswatch reads a breaking news feed (URL or file) and surfaces the newest
breaking item when it differs from the last one seen. The last seen id is kept
in a state file so restarts do not repeat an alert.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
