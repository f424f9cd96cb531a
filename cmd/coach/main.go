package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/coach/internal/cli"
	"github.com/cloo-solutions/coach/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "coach",
		Short: "Coach CLI - chat with your fitness coach",
		Long: `Coach CLI talks to a running coachd server and keeps the conversation's
knowledge base between turns.

Environment variables:
  COACH_API_URL   API base URL (default: http://localhost:8000)`,
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	rootCmd.PersistentFlags().String("state", "", "Knowledge base state file (default: <user config dir>/coach/knowledge_base.json)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.KBCmd())
	rootCmd.AddCommand(client.ResetCmd())
	rootCmd.AddCommand(client.StatusCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
