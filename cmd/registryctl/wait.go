package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sridhar-Quarlets/model-registry/pkg/server"
)

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for the registry server to be ready",
	Long: `Poll GET /health until the server reports a reachable store or the
retries run out. Exits non-zero when the server never becomes ready.

Example:
  registryctl wait
  registryctl wait --url http://registry:8000 --retries 60`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetInt("port")
		baseURL, _ := cmd.Flags().GetString("url")
		retries, _ := cmd.Flags().GetInt("retries")
		if baseURL == "" {
			baseURL = fmt.Sprintf("http://localhost:%d", port)
		}

		if err := waitForServer(cmd.Context(), cmd.OutOrStdout(), baseURL, retries, time.Second); err != nil {
			fmt.Fprintf(os.Stderr, "Server did not become ready: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().IntP("port", "p", defaultPortInt(), "Server port to check on localhost")
	waitCmd.Flags().String("url", "", "Server base URL (overrides --port)")
	waitCmd.Flags().IntP("retries", "r", 90, "Number of retries")
}

// waitForServer prints a dot per failed poll.
func waitForServer(ctx context.Context, out io.Writer, baseURL string, retries int, interval time.Duration) error {
	fmt.Fprintln(out, "Waiting for the model registry to be ready...")

	check := server.ReadyCheck{
		Interval: interval,
		Attempts: retries,
		OnRetry:  func(int, error) { fmt.Fprint(out, ".") },
	}
	err := check.Wait(ctx, baseURL)
	fmt.Fprintln(out)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Model registry is ready!")
	return nil
}
