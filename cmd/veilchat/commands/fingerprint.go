package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"veilchat/internal/crypto"
	"veilchat/internal/domain"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the local key fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			fp, err := appCtx.Keys.Fingerprint()
			if err != nil {
				return err
			}
			fmt.Printf("Fingerprint: %s\n", fp)
			return nil
		},
	}
}

func fingerprintOf(pub domain.PublicKey) string {
	return crypto.Fingerprint(pub.Slice())
}
