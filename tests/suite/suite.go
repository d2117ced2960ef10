package suite

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"asha_gallery/internal/repository"
	gallerysvc "asha_gallery/internal/services/gallery_service"
	tokensvc "asha_gallery/internal/services/token_service"
	usersvc "asha_gallery/internal/services/user_service"
	"asha_gallery/internal/storage/filestorage"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const schema = `
CREATE TABLE IF NOT EXISTS admins (
	id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	username   text NOT NULL UNIQUE,
	password   bytea NOT NULL,
	role       text NOT NULL DEFAULT 'admin',
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS gallery_items (
	id          uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	url         text NOT NULL,
	storage_ref text,
	title       text,
	category    text NOT NULL,
	created_at  timestamptz NOT NULL DEFAULT now(),
	updated_at  timestamptz NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_gallery_items_category ON gallery_items (category, created_at DESC);
`

type Suite struct {
	*testing.T
	Repo    *repository.Repository
	Users   *usersvc.UserService
	Tokens  *tokensvc.TokenService
	Gallery *gallerysvc.GalleryService
	BaseDir string
}

// New spins up a postgres container and wires the full service stack
// against it. Skipped unless INTEGRATION_TESTS is set, so the suite
// stays out of plain unit runs.
func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	if os.Getenv("INTEGRATION_TESTS") == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run container-backed tests")
	}

	ctx, cancelCtx := context.WithTimeout(context.Background(), 5*time.Minute)
	t.Cleanup(cancelCtx)

	dsn := setupTestDB(t, ctx)

	repo, err := repository.NewRepository(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(repo.Close)

	baseDir := t.TempDir()
	files, err := filestorage.NewLocalFileStorage(baseDir, "http://localhost:8080")
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return ctx, &Suite{
		T:       t,
		Repo:    repo,
		Users:   usersvc.NewUserService(log, repo.User),
		Tokens:  tokensvc.NewTokenService(repository.NewMemoryTokenRepo(), "test-secret", time.Hour),
		Gallery: gallerysvc.NewGalleryService(log, repo.Gallery, files),
		BaseDir: baseDir,
	}
}

func setupTestDB(t *testing.T, ctx context.Context) string {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = pgContainer.Terminate(context.Background())
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	pool, err := pgxpool.Connect(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Exec(ctx, schema)
	require.NoError(t, err)

	return dsn
}
