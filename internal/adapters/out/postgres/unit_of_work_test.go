package postgres_test

import (
	"strings"
	"testing"

	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/core/domain/model/company"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := postgres.Open(t.Context(), postgres.Options{
		Driver:       postgres.DriverSQLite,
		DSN:          "file:" + name + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = postgres.Close(db) })
	require.NoError(t, postgres.Migrate(t.Context(), db, postgres.DriverSQLite))
	return db
}

func TestGormUnitOfWork_CommitPersists(t *testing.T) {
	factory := postgres.NewGormUnitOfWorkFactory(openSQLite(t))
	ctx := t.Context()
	c, err := company.NewCompany("C1", "", []string{"A"})
	require.NoError(t, err)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.Begin(ctx), "a second Begin is a no-op")
	require.NoError(t, uow.CompanyRepository().Add(ctx, c))
	require.NoError(t, uow.Commit(ctx))

	got, err := factory.Create().CompanyRepository().Get(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, got.RiderNumbers())
}

func TestGormUnitOfWork_RollbackDiscards(t *testing.T) {
	factory := postgres.NewGormUnitOfWorkFactory(openSQLite(t))
	ctx := t.Context()
	c, err := company.NewCompany("C1", "", []string{"A"})
	require.NoError(t, err)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.CompanyRepository().Add(ctx, c))
	require.NoError(t, uow.Rollback(ctx))

	_, err = factory.Create().CompanyRepository().Get(ctx, "C1")
	require.Error(t, err)
}

func TestGormUnitOfWork_NoTransaction(t *testing.T) {
	uow := postgres.NewGormUnitOfWorkFactory(openSQLite(t)).Create()

	require.ErrorIs(t, uow.Commit(t.Context()), gorm.ErrInvalidTransaction)
	require.ErrorIs(t, uow.Rollback(t.Context()), gorm.ErrInvalidTransaction)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := postgres.Open(t.Context(), postgres.Options{Driver: "oracle"})
	require.ErrorIs(t, err, postgres.ErrUnknownDriver)

	require.ErrorIs(t, postgres.Migrate(t.Context(), nil, "oracle"), postgres.ErrUnknownDriver)
}

func TestPostgresDSN(t *testing.T) {
	assert.Equal(t,
		"host=db port=5432 user=dispatch password=secret dbname=dispatch sslmode=disable",
		postgres.PostgresDSN("db", 5432, "dispatch", "secret", "dispatch", "disable"))
}
