package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sridhar-Quarlets/model-registry/pkg/authenticator/authn"
	"github.com/Sridhar-Quarlets/model-registry/pkg/model"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/store"
)

// userCreateCmd represents the user create command
var userCreateCmd = &cobra.Command{
	Use:   "create <email>",
	Short: "Create an account",
	Long: `Create an active account with the default role.

The password is taken from --password, or from the first line of stdin.
The created account is printed as JSON; the password digest never is.

Example:
  registryctl user create ops@example.com --password changeme
  echo changeme | registryctl user create ops@example.com`,
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

		user, err := createUser(cmd.Context(), stores.Users, args[0], password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create user: %v\n", err)
			os.Exit(1)
		}

		output, _ := json.MarshalIndent(user, "", "  ")
		fmt.Println(string(output))
	},
}

func init() {
	userCmd.AddCommand(userCreateCmd)
}

func createUser(ctx context.Context, users store.UsersStore, email, password string) (model.User, error) {
	return authn.New(users).Register(ctx, email, password)
}
