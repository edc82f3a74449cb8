package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"veilchat/internal/app"
)

var appCtx *app.Wire

func Execute() error {
	root := &cobra.Command{
		Use:   "veilchat",
		Short: "End-to-end encrypted chat client",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			home := viper.GetString("home")
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".veilchat")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}
			if viper.GetString("user") == "" {
				return fmt.Errorf("--user required (your stable user id)")
			}

			wire, err := app.NewWire(app.Config{
				Home:       home,
				ServerURL:  viper.GetString("server"),
				UserID:     viper.GetString("user"),
				Passphrase: viper.GetString("passphrase"),
				Timeout:    viper.GetDuration("timeout"),
				InMemory:   viper.GetBool("memory"),
			})
			if err != nil {
				return err
			}
			appCtx = wire
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if appCtx == nil {
				return nil
			}
			return appCtx.Close()
		},
	}

	pf := root.PersistentFlags()
	pf.String("home", "", "data dir (default ~/.veilchat)")
	pf.String("server", "", "chat server base URL (e.g. http://127.0.0.1:8080)")
	pf.String("user", "", "your user id")
	pf.StringP("passphrase", "p", "", "passphrase sealing the key storage")
	pf.Duration("timeout", 10*time.Second, "remote request timeout")
	pf.Bool("memory", false, "keep messages in memory instead of sqlite")
	_ = viper.BindPFlags(pf)
	viper.SetEnvPrefix("veilchat")
	viper.AutomaticEnv()

	root.AddCommand(initCmd(), fingerprintCmd(), contactCmd(), sendCmd(), syncCmd())
	return root.Execute()
}
