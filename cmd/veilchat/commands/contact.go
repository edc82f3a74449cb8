package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"veilchat/internal/crypto"
	"veilchat/internal/domain"
)

func contactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Manage known contacts",
	}
	cmd.AddCommand(contactAddCmd(), contactListCmd())
	return cmd
}

// contact add <id> <base64-public-key>: store a peer and their key.
func contactAddCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "add <id> <public-key>",
		Short: "Add or update a contact with their public key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, keyB64 := args[0], args[1]
			// Validate up front; both raw and wrapped encodings are fine.
			if _, err := crypto.ParsePublicKey(keyB64); err != nil {
				return err
			}
			c := domain.Contact{
				ID:          id,
				DisplayName: name,
				PublicKey:   keyB64,
				Presence:    domain.PresenceUnknown,
				LastSeen:    time.Now(),
			}
			if err := appCtx.Contacts.UpsertContact(c); err != nil {
				return err
			}
			fmt.Printf("contact %s saved\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	return cmd
}

func contactListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known contacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			contacts, err := appCtx.Contacts.ListContacts()
			if err != nil {
				return err
			}
			for _, c := range contacts {
				name := c.DisplayName
				if name == "" {
					name = "-"
				}
				fmt.Printf("%s\t%s\t%s\n", c.ID, name, c.Presence)
			}
			return nil
		},
	}
}
