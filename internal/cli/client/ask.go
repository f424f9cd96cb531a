package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/coach/internal/api/handlers"
)

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the coach a question",
		Long: `Sends the question together with the saved knowledge base, prints the
coach's answer and saves the updated knowledge base for the next turn.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			store, err := NewStateStoreWithCmd(cmd)
			if err != nil {
				return err
			}
			api := NewAPIClientWithCmd(cmd)

			return runAsk(cmd, api, store, strings.Join(args, " "), outputJSON)
		},
	}
}

func runAsk(cmd *cobra.Command, api *APIClient, store *StateStore, question string, outputJSON bool) error {
	previous, err := store.Load()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	resp, err := api.Ask(ctx, question, previous)
	if err != nil {
		return fmt.Errorf("failed to ask coach: %w", err)
	}

	if err := store.Save(resp.KnowledgeBase); err != nil {
		return err
	}

	return printAnswer(cmd.OutOrStdout(), resp, outputJSON)
}

func printAnswer(w io.Writer, resp *handlers.AskResponse, outputJSON bool) error {
	if outputJSON {
		output, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(output))
		return nil
	}

	fmt.Fprintln(w, resp.Answer)
	return nil
}
