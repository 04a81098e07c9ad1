package database

import (
	"context"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mistral-io/phaseanalysis/internal/common/util"
)

// TestPostgresEnv names the environment variable holding the connection string of the server used by database
// tests.  Tests needing a database are skipped when it is unset.
const TestPostgresEnv = "PHASEANALYSIS_TEST_POSTGRES"

// WithTestDb creates a dedicated database on the server named by TestPostgresEnv, applies migrations to it and
// then calls action.  The database is dropped afterwards.
func WithTestDb(migrations []Migration, action func(db *pgxpool.Pool) error) error {
	ctx := context.Background()
	connectionString := os.Getenv(TestPostgresEnv)
	if connectionString == "" {
		return errors.Errorf("%s is not set", TestPostgresEnv)
	}

	// Connect and create a dedicated database for the test
	dbName := "test_" + util.NewULID()
	db, err := pgx.Connect(ctx, connectionString)
	if err != nil {
		return errors.WithStack(err)
	}
	defer db.Close(ctx)

	if _, err = db.Exec(ctx, "CREATE DATABASE "+dbName); err != nil {
		return errors.WithStack(err)
	}

	// Connect again: this time to the database we just created.
	testDbPool, err := pgxpool.New(ctx, connectionString+" dbname="+dbName)
	if err != nil {
		return errors.WithStack(err)
	}

	defer func() {
		testDbPool.Close()
		if _, err := db.Exec(ctx, "DROP DATABASE "+dbName+" WITH (FORCE)"); err != nil {
			log.WithError(err).Warnf("Failed to drop database %s", dbName)
		}
	}()

	if err := UpdateDatabase(ctx, testDbPool, migrations); err != nil {
		return errors.WithStack(err)
	}

	return action(testDbPool)
}
