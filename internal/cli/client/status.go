package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// StatusCmd creates the status command.
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check that the coach server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			api := NewAPIClientWithCmd(cmd)
			health, err := api.Health(ctx)
			if err != nil {
				return fmt.Errorf("coach server at %s is unreachable: %w", api.baseURL, err)
			}

			if outputJSON {
				output, err := json.MarshalIndent(health, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(output))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", health.Status, health.Message)
			return nil
		},
	}
}
