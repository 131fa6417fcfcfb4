package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dimitrije/portfolio-api/internal/database"
	"github.com/dimitrije/portfolio-api/internal/models"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	pgUser     = "portfolio"
	pgPassword = "portfolio"
	pgDatabase = "portfolio_test"
)

// resetOrder lists every migrated table, dependents first.
var resetOrder = []string{
	"contact_messages",
	"projects",
	"profiles",
	"email_tokens",
	"refresh_tokens",
	"identities",
}

// TestDB is a migrated database in a throwaway Postgres container.
type TestDB struct {
	DB       *database.DB
	Fixtures *Fixtures
}

// startPostgres runs a container for the lifetime of t and returns its DSN.
func startPostgres(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       pgDatabase,
			},
			// the init scripts restart the server once, hence two ready lines
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(90*time.Second),
				wait.ForListeningPort("5432/tcp"),
			),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	endpoint, err := container.PortEndpoint(ctx, "5432/tcp", "")
	if err != nil {
		t.Fatalf("postgres endpoint: %v", err)
	}
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", pgUser, pgPassword, endpoint, pgDatabase)
}

// SetupTestDB connects through database.New, the same path the server uses,
// and applies the migrations.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	db, err := database.New(ctx, startPostgres(ctx, t))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(db.Close)

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return &TestDB{DB: db, Fixtures: NewFixtures(db)}
}

// Reset empties every table so one container can serve several scenarios.
func (tdb *TestDB) Reset(t *testing.T) {
	t.Helper()
	stmt := "TRUNCATE TABLE " + strings.Join(resetOrder, ", ") + " RESTART IDENTITY CASCADE"
	if _, err := tdb.DB.Pool.Exec(context.Background(), stmt); err != nil {
		t.Fatalf("reset tables: %v", err)
	}
}

// Admin inserts a confirmed identity with an admin profile, the state
// portfolioctl promote leaves behind.
func (tdb *TestDB) Admin(t *testing.T, email string) (*models.Identity, *models.Profile) {
	t.Helper()
	identity := tdb.Fixtures.CreateIdentity(t, WithEmail(email))
	return identity, tdb.Fixtures.CreateProfile(t, identity, models.RoleAdmin)
}
