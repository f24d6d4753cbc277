package database

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/insurance-catalog/internal/database/migrations"
	"github.com/iliyamo/insurance-catalog/internal/logging"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "app:secret@tcp(db:3306)/catalog?charset=utf8mb4&parseTime=true&loc=UTC",
		DSN("app", "secret", "db", "3306", "catalog"))
	assert.Equal(t, "root@tcp(localhost:3306)/catalog?charset=utf8mb4&parseTime=true&loc=UTC",
		DSN("root", "", "localhost", "3306", "catalog"))
}

func TestMigrationsEmbedded(t *testing.T) {
	names, err := fs.Glob(migrations.FS, "*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"00001_create_users.sql",
		"00002_create_oauth_access_tokens.sql",
		"00003_create_products.sql",
	}, names)
}

func TestMigrate(t *testing.T) {
	db, _ := newMock(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	require.NoError(t, Migrate(context.Background(), db))
	assert.Equal(t, ".", gotDir)

	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	assert.ErrorContains(t, Migrate(context.Background(), db), "boom")
}

func TestSeed_Fresh(t *testing.T) {
	db, mock := newMock(t)
	for range SeedUsers {
		mock.ExpectExec(`INSERT INTO users`).WillReturnResult(sqlmock.NewResult(1, 1))
	}
	for range SeedProducts {
		mock.ExpectExec(`INSERT INTO products`).WillReturnResult(sqlmock.NewResult(1, 1))
	}

	require.NoError(t, Seed(context.Background(), db, bcrypt.MinCost, logging.Discard()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeed_IsIdempotent(t *testing.T) {
	db, mock := newMock(t)
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	for range SeedUsers {
		mock.ExpectExec(`INSERT INTO users`).WillReturnError(dup)
	}
	for range SeedProducts {
		mock.ExpectExec(`INSERT INTO products`).WillReturnError(dup)
	}

	require.NoError(t, Seed(context.Background(), db, bcrypt.MinCost, logging.Discard()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeed_StopsOnStorageError(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO users`).WillReturnError(errors.New("connection refused"))

	err := Seed(context.Background(), db, bcrypt.MinCost, logging.Discard())
	assert.ErrorContains(t, err, "seed user user1")
}

func TestSeedCatalog(t *testing.T) {
	require.Len(t, SeedProducts, 10)
	seen := map[string]bool{}
	for _, p := range SeedProducts {
		assert.False(t, seen[p.ProductID], p.ProductID)
		seen[p.ProductID] = true
		assert.Greater(t, p.Price, 0.0)
		assert.True(t, p.IsActive)
	}
}
