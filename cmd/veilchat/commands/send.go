package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"veilchat/internal/reconcile"
)

// send <peer> <message>: encrypt and send a text message to <peer>.
func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <peer> <message>",
		Short: "Encrypt and send a message to a peer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			peer, body := args[0], args[1]
			m, err := appCtx.Engine.Send(cmd.Context(), peer, reconcile.Draft{Body: body})
			if err != nil {
				// The message may still be persisted with failed status.
				if m.ID != "" {
					fmt.Printf("send failed, message %s stored as %s\n", m.ID, m.Status)
				}
				return err
			}
			fmt.Printf("%s %s\n", m.ID, m.Status)
			return nil
		},
	}
}
