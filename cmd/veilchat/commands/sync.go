package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// sync <peer>: reconcile the remote stream for one chat and print it.
func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync <peer>",
		Short: "Fetch, decrypt and merge new messages for a chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msgs, err := appCtx.Engine.Sync(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, m := range msgs {
				fmt.Printf("[%s] %s: %s (%s)\n",
					m.SentAt.Format("15:04:05"), m.SenderID, m.DisplayBody(), m.Status)
			}
			return nil
		},
	}
}
