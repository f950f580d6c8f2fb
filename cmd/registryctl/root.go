package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "registryctl",
	Short: "Quarlets model registry server and administration tool",
	Long: `registryctl runs the model registry API server and administers its
database, configuration, accounts and access policies.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
