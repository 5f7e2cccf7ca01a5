package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "engram",
	Short: "Knowledge-graph ranking for agent memory",
	Long:  "Engram maintains a knowledge graph over stored memory entries and ranks retrieval results by structural importance. Single Go binary.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}
