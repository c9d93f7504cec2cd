package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dispatch/internal/adapters/out/postgres/assignmentrepo"
	"dispatch/internal/adapters/out/postgres/companyrepo"
	"dispatch/internal/adapters/out/postgres/migrations"

	"github.com/pressly/goose/v3"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var ErrUnknownDriver = errors.New("unknown database driver")

// Options configures Open.
type Options struct {
	Driver string
	DSN    string

	// MaxOpenConns caps the pool. Zero keeps the driver default.
	// In-memory SQLite databases must use 1.
	MaxOpenConns int
	// ConnMaxLifetime recycles pooled connections. Zero keeps them forever.
	ConnMaxLifetime time.Duration
}

// PostgresDSN builds a libpq keyword/value connection string.
func PostgresDSN(host string, port int, user, password, name, sslMode string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, name, sslMode)
}

// Open connects with error translation enabled, so unique violations surface as
// gorm.ErrDuplicatedKey on every driver, and verifies the connection with a ping.
func Open(ctx context.Context, opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case DriverPostgres:
		dialector = gormpostgres.Open(opts.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err = sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return db, nil
}

// Migrate brings the schema up to date. Postgres runs the embedded goose migrations;
// SQLite, used for development and tests, is migrated from the GORM models.
func Migrate(ctx context.Context, db *gorm.DB, driver string) error {
	switch driver {
	case DriverPostgres:
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations.FS)
		if err != nil {
			return err
		}
		_, err = provider.Up(ctx)
		return err
	case DriverSQLite:
		return db.WithContext(ctx).AutoMigrate(
			&companyrepo.CompanyDTO{},
			&companyrepo.CompanyRiderDTO{},
			&assignmentrepo.AssignmentDTO{},
		)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// Close releases the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
