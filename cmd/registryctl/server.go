package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sridhar-Quarlets/model-registry/pkg/audit"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/endpoints"
)

const shutdownTimeout = 10 * time.Second

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the model registry API server",
	Long: `Run the model registry API server.

The server requires SECRET_KEY, and DATABASE_URL unless --store memory is
given. By default, database migrations are run on startup. Use --no-migrate
to skip.`,
	Run: func(cmd *cobra.Command, args []string) {
		storeKind, _ := cmd.Flags().GetString("store")
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")

		if err := runServer(storeKind, !noMigrate, host, port); err != nil {
			fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().String("store", "postgres", "catalog store (postgres or memory)")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}

func runServer(storeKind string, migrateOnStart bool, host, port string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	if storeKind != "memory" && migrateOnStart {
		log.Info().Msg("running database migrations")
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	stores, err := openStores(cfg, storeKind)
	if err != nil {
		return err
	}

	auditor, err := audit.New(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = auditor.Close() }()

	s, err := server.NewServer(cfg, stores, auditor, log, host, port)
	if err != nil {
		return err
	}
	endpoints.RegisterAll(s)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.Addr()).Str("store", storeKind).Msg("running server")
		errCh <- s.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(ctx)
}
