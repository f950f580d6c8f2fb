package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sridhar-Quarlets/model-registry/pkg/model"
	"github.com/Sridhar-Quarlets/model-registry/pkg/policy"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/store"
)

// policyLoadCmd represents the policy load command
var policyLoadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Load an access policy from a YAML file",
	Long: `Create an access policy from a YAML document.

The document has a required name, an optional description and a rules
mapping that is stored as an opaque JSON object:

  name: finance-readers
  description: read access for the finance domain
  rules:
    allow: [read]
    domains: [finance]

The created policy is printed as JSON.

Example:
  registryctl policy load finance-readers.yml
  registryctl policy load --created-by ops@example.com policy.yml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		createdBy, _ := cmd.Flags().GetString("created-by")

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

		created, err := loadPolicyFile(cmd.Context(), stores.Policies, args[0], createdBy)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load policy: %v\n", err)
			os.Exit(1)
		}

		output, _ := json.MarshalIndent(created, "", "  ")
		fmt.Println(string(output))
	},
}

func init() {
	policyCmd.AddCommand(policyLoadCmd)
	policyLoadCmd.Flags().String("created-by", "registryctl", "identity recorded as the policy creator")
}

func loadPolicyFile(ctx context.Context, policies store.PoliciesStore, filename, createdBy string) (model.AccessPolicy, error) {

	file, err := os.Open(filename)
	if err != nil {
		return model.AccessPolicy{}, fmt.Errorf("failed to open policy file: %w", err)
	}
	defer func() { _ = file.Close() }()

	doc, err := policy.ParseYAML(file)
	if err != nil {
		return model.AccessPolicy{}, err
	}
	return policy.NewService(policies).Create(ctx, doc, createdBy)
}
