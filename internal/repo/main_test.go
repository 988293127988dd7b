package repo_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	"github.com/wayfare-app/backend/internal/repo"
	"github.com/wayfare-app/backend/migrations"
	"github.com/wayfare-app/backend/testutil"
)

// TestMain runs before any test in the repo_test package.
// It applies all pending migrations to the test database so individual tests
// never need to think about schema state.
func TestMain(m *testing.M) {
	if os.Getenv("TEST_DATABASE_URL") == "" {
		// No test DB configured — skip all tests in this package cleanly.
		os.Exit(m.Run())
	}

	// Goose needs database/sql, not a pgx pool. Constructed manually because
	// TestMain has no *testing.T to pass to testutil.NewSQLDB.
	db := testutil.MustOpenSQLDB(os.Getenv("TEST_DATABASE_URL"))
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		log.Fatalf("TestMain: create goose provider: %v", err)
	}

	if _, err := provider.Up(context.Background()); err != nil {
		log.Fatalf("TestMain: run migrations: %v", err)
	}

	os.Exit(m.Run())
}

// newTestTx opens a transaction against the test database. It is rolled back
// when the test finishes, so every test starts from a clean schema with no
// cleanup SQL.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})

	return tx
}

// newTestRepos returns the full repo set bound to a rolled-back transaction.
func newTestRepos(t *testing.T) (repo.Repos, pgx.Tx) {
	t.Helper()
	tx := newTestTx(t)
	return repo.NewRepos(tx), tx
}

// seedTrip inserts a trip with the given members and returns its id.
// Trips and rosters are owned by another subsystem, so there is no repo
// method to create them; tests write the rows directly.
func seedTrip(t *testing.T, tx pgx.Tx, members ...string) (uuid.UUID, []uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	var tripID uuid.UUID
	err := tx.QueryRow(ctx,
		`INSERT INTO trips (name, base_currency) VALUES ('Test trip', 'EUR') RETURNING id`,
	).Scan(&tripID)
	require.NoError(t, err, "seed trip")

	userIDs := make([]uuid.UUID, len(members))
	for i, name := range members {
		userIDs[i] = uuid.New()
		_, err := tx.Exec(ctx,
			`INSERT INTO trip_members (trip_id, user_id, name, email) VALUES ($1, $2, $3, $4)`,
			tripID, userIDs[i], name, name+"@example.com",
		)
		require.NoError(t, err, "seed member %s", name)
	}
	return tripID, userIDs
}
