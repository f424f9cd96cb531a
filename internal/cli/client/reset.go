package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ResetCmd creates the reset command.
func ResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget the saved knowledge base and start over",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := NewStateStoreWithCmd(cmd)
			if err != nil {
				return err
			}
			if err := store.Delete(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Conversation reset (%s)\n", store.Path())
			return nil
		},
	}
}
