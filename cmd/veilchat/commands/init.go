package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate a key pair and store it securely",
		Long: "Generates a fresh key-agreement pair, replacing any existing one. " +
			"Messages received under the old pair can no longer be decrypted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := appCtx.Keys.Generate()
			if err != nil {
				return err
			}
			fmt.Printf("Key pair created.\nFingerprint: %s\n", fingerprintOf(kp.Public))
			return nil
		},
	}
}
