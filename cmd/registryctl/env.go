package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Sridhar-Quarlets/model-registry/pkg/config"
	"github.com/Sridhar-Quarlets/model-registry/pkg/db"
	"github.com/Sridhar-Quarlets/model-registry/pkg/logger"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server"
	gormstore "github.com/Sridhar-Quarlets/model-registry/pkg/server/store/gorm"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/store/memory"
)

const serviceName = "model-registry"

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8000"
}

func defaultPortInt() int {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	return 8000
}

// loadConfig loads and validates the effective configuration.
func loadConfig() (*config.RegistryConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.RegistryConfig) zerolog.Logger {
	return logger.New(serviceName, cfg.LogLevel)
}

// openStores connects to the catalog database, or builds an in-process
// catalog when kind is "memory".
func openStores(cfg *config.RegistryConfig, kind string) (server.Stores, error) {
	switch kind {
	case "memory":
		mem := memory.New()
		return server.Stores{Entries: mem, Users: mem, Policies: mem, Health: mem}, nil
	case "postgres", "":
		database, err := db.Connect(cfg)
		if err != nil {
			return server.Stores{}, err
		}
		return gormStores(database), nil
	default:
		return server.Stores{}, fmt.Errorf("unknown store %q (want postgres or memory)", kind)
	}
}

func gormStores(database *gorm.DB) server.Stores {
	return server.Stores{
		Entries:  gormstore.NewEntriesStore(database),
		Users:    gormstore.NewUsersStore(database),
		Policies: gormstore.NewPoliciesStore(database),
		Health:   gormstore.NewHealthStore(database),
	}
}
