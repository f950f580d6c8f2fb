package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/Sridhar-Quarlets/model-registry/pkg/config"
)

// configurationWatchCmd represents the configuration watch command
var configurationWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-validate the config file whenever it changes",
	Long: `Watch the config file and re-validate the effective configuration each
time it is written, created or replaced.

The parent directory is watched so that editors and config management tools
that replace the file atomically are noticed.

Example:
  registryctl configuration watch
  MODEL_REGISTRY_CONFIG_PATH=./deploy registryctl configuration watch`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}

		if err := watchConfiguration(cfg.ConfigFilePath()); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to watch configuration: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	configurationCmd.AddCommand(configurationWatchCmd)
}

// checkConfigFile loads path over the defaults and the environment and
// validates the result.
func checkConfigFile(path string) error {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	return cfg.Validate()
}

func watchConfiguration(path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	fmt.Printf("Watching %s for configuration changes\n", path)
	report(path)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				report(path)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
		case <-sigChan:
			fmt.Println("\nShutting down...")
			return nil
		}
	}
}

func report(path string) {
	stamp := time.Now().Format(time.RFC3339)
	if err := checkConfigFile(path); err != nil {
		fmt.Fprintf(os.Stderr, "[%s] Configuration invalid: %v\n", stamp, err)
		return
	}
	fmt.Printf("[%s] Configuration valid\n", stamp)
}
