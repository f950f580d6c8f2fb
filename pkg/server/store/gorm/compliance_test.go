package gorm

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sridhar-Quarlets/model-registry/pkg/config"
	"github.com/Sridhar-Quarlets/model-registry/pkg/db"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/store/storetest"
)

// TestStores_Compliance runs the shared store suite against a migrated
// PostgreSQL database named by DATABASE_URL.
func TestStores_Compliance(t *testing.T) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("Skipping PostgreSQL compliance tests. Set DATABASE_URL to a migrated database to run.")
	}

	cfg := config.Default()
	cfg.DatabaseURL = dbURL
	database, err := db.Connect(cfg)
	require.NoError(t, err)

	storetest.Run(t, func(t *testing.T) storetest.Stores {
		return storetest.Stores{
			Entries:  NewEntriesStore(database),
			Users:    NewUsersStore(database),
			Policies: NewPoliciesStore(database),
		}
	})
}
