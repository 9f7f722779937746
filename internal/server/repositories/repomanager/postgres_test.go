package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dev-c-webd/tube-v/internal/server/migrations"
	"github.com/dev-c-webd/tube-v/internal/server/repositories/channels"
	"github.com/dev-c-webd/tube-v/internal/server/repositories/refreshtokens"
	"github.com/dev-c-webd/tube-v/internal/server/repositories/users"
	"github.com/dev-c-webd/tube-v/internal/server/repositories/videos"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := NewPostgresRepositoryManager()

	if _, ok := m.Users(db).(*users.PostgresRepository); !ok {
		t.Fatal("Users() is not a *users.PostgresRepository")
	}
	if _, ok := m.RefreshTokens(db).(*refreshtokens.PostgresRepository); !ok {
		t.Fatal("RefreshTokens() is not a *refreshtokens.PostgresRepository")
	}
	if _, ok := m.Channels(db).(*channels.PostgresRepository); !ok {
		t.Fatal("Channels() is not a *channels.PostgresRepository")
	}
	if _, ok := m.Videos(db).(*videos.PostgresRepository); !ok {
		t.Fatal("Videos() is not a *videos.PostgresRepository")
	}
}

func TestRunMigrations_AppliesEmbeddedDir(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	var gotDir string
	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	t.Cleanup(func() { gooseUpContext = orig })

	require.NoError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), db))
	assert.Equal(t, ".", gotDir)
}

func TestRunMigrations_WrapsError(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	boom := errors.New("relation already exists")
	orig := gooseUpContext
	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error { return boom }
	t.Cleanup(func() { gooseUpContext = orig })

	err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "apply migrations")
}

func TestEmbeddedMigrations_Ordered(t *testing.T) {
	files, err := fs.Glob(migrations.Migrations, "*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"00001_users.sql", "00002_videos.sql", "00003_subscriptions.sql"}, files)

	for _, f := range files {
		b, err := fs.ReadFile(migrations.Migrations, f)
		require.NoError(t, err)
		assert.Contains(t, string(b), "-- +goose Up", f)
		assert.Contains(t, string(b), "-- +goose Down", f)
	}
}
