package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mbu-admin-api/internal/models"
	"github.com/noah-isme/mbu-admin-api/pkg/config"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "mbu", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=mbu sslmode=disable", dsn)
}

func TestSchemaGuardsCapacity(t *testing.T) {
	s := Schema()
	assert.Contains(t, s, "current_enrollment <= capacity")
	assert.Contains(t, s, "UNIQUE (student_name, parent_name, phone)")
	assert.True(t, strings.Contains(s, "CREATE TABLE IF NOT EXISTS payments"))
}

func TestMigrate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS sections").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedCatalogOnly(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	for _, s := range models.SectionCatalog {
		mock.ExpectExec("INSERT INTO sections").
			WithArgs(s.Name, s.Description, s.Capacity, s.MinAge, s.MaxAge, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, Seed(context.Background(), db, config.AdminSeedConfig{}, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedWithAdmin(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	for range models.SectionCatalog {
		mock.ExpectExec("INSERT INTO sections").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec("INSERT INTO admin_users").
		WithArgs("admin@mbu.school", sqlmock.AnyArg(), "Head Admin", models.RoleSuperAdmin).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	seed := config.AdminSeedConfig{Email: "admin@mbu.school", Password: "s3cretpass", FullName: "Head Admin"}
	require.NoError(t, Seed(context.Background(), db, seed, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedRollsBackOnFailure(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO sections").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := Seed(context.Background(), db, config.AdminSeedConfig{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed section Nursery")
	assert.NoError(t, mock.ExpectationsWereMet())
}
