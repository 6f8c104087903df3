package system

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ovall/dentavia_backend/config"
	pasetotoken "github.com/ovall/dentavia_backend/pkg/paseto"
)

// NewGenKeysCommand generates fresh PASETO key material for the
// authentication section of the config file.
func NewGenKeysCommand() *cobra.Command {
	var public bool

	cmd := &cobra.Command{
		Use:   "genkeys",
		Short: "Generate PASETO keys for the authentication config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if public {
				keys := pasetotoken.NewPublicKeys()
				fmt.Println("mode: public")
				fmt.Println("secret_key_hex:", keys.Secret.ExportHex())
				fmt.Println("public_key_hex:", keys.Public.ExportHex())
				return nil
			}

			keys := pasetotoken.NewLocalKeys()
			fmt.Println("mode: local")
			fmt.Println("local_key_hex:", keys.Symmetric.ExportHex())
			return nil
		},
	}

	cmd.Flags().BoolVar(&public, "public", false, "generate a v4.public signing pair instead of a v4.local key")
	return cmd
}

// NewTokenCommand mints a token against the configured keys, for smoke
// testing a deployment's protected endpoints.
func NewTokenCommand() *cobra.Command {
	var (
		userFlag string
		refresh  bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a PASETO token for the given user id",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			userID, err := uuid.Parse(userFlag)
			if err != nil {
				return fmt.Errorf("invalid --user id: %w", err)
			}

			mgr, err := pasetotoken.NewPasetoManager(cfg)
			if err != nil {
				return fmt.Errorf("failed to build token manager: %w", err)
			}

			var token string
			if refresh {
				token, err = mgr.IssueRefresh(userID, nil)
			} else {
				token, err = mgr.IssueAccess(userID, nil)
			}
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}

			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "user id to issue the token for")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "issue a refresh token instead of an access token")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
