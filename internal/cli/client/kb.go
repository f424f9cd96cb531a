package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// KBCmd creates the kb command.
func KBCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "kb",
		Short:   "Show the saved knowledge base",
		Aliases: []string{"show"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			store, err := NewStateStoreWithCmd(cmd)
			if err != nil {
				return err
			}
			return runKB(cmd, store, outputJSON)
		},
	}
}

func runKB(cmd *cobra.Command, store *StateStore, outputJSON bool) error {
	kb, err := store.Load()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if kb == nil {
		if outputJSON {
			fmt.Fprintln(out, "null")
			return nil
		}
		fmt.Fprintln(out, "No conversation yet. Run 'coach ask <question>' to start one.")
		return nil
	}

	if outputJSON {
		output, err := json.MarshalIndent(kb, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(output))
		return nil
	}

	fmt.Fprintf(out, "Input: %s\n", kb.Input)
	fmt.Fprintf(out, "Summary: %s\n", kb.Summary)
	fmt.Fprintf(out, "Response: %s\n", kb.Response)
	return nil
}
