package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sridhar-Quarlets/model-registry/pkg/authenticator"
	"github.com/Sridhar-Quarlets/model-registry/pkg/authenticator/authn"
	"github.com/Sridhar-Quarlets/model-registry/pkg/authenticator/authn_jwt"
	"github.com/Sridhar-Quarlets/model-registry/pkg/config"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/store"
)

// userTokenCmd represents the user token command
var userTokenCmd = &cobra.Command{
	Use:   "token <email>",
	Short: "Issue a bearer token for an account",
	Long: `Verify an account's password and print a signed bearer token for it.

The token is signed with SECRET_KEY and expires after
ACCESS_TOKEN_EXPIRE_MINUTES, exactly like tokens from POST /auth/token.

Example:
  registryctl user token ops@example.com --password changeme
  export TOKEN=$(echo changeme | registryctl user token ops@example.com)`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flag, _ := cmd.Flags().GetString("password")
		password, err := passwordFrom(flag, os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		stores, err := openStores(cfg, "postgres")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		token, expiresAt, err := issueToken(cmd.Context(), cfg, stores.Users, args[0], password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to issue token: %v\n", err)
			os.Exit(1)
		}

		fmt.Fprintf(os.Stderr, "Token expires at %s\n", expiresAt.Format(time.RFC3339))
		fmt.Println(token)
	},
}

func init() {
	userCmd.AddCommand(userTokenCmd)
}

func issueToken(ctx context.Context, cfg *config.RegistryConfig, users store.UsersStore, email, password string) (string, time.Time, error) {

	tokens, err := authn_jwt.New(users, authn_jwt.ConfigFrom(cfg))
	if err != nil {
		return "", time.Time{}, err
	}

	p, err := authn.New(users).Authenticate(ctx, authenticator.AuthenticatorInput{
		Login:       email,
		Credentials: []byte(password),
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return tokens.Issue(p.Identity)
}
