package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"

	"dispatch/internal/adapters/out/postgres"
)

const AppEnvDevelopment = "development"

// Config is read from .env (optional), then the environment, then command-line flags.
type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	OpenCellID OpenCellIDConfig
	Fallback   FallbackConfig
	Dispatch   DispatchConfig
	Jobs       JobsConfig

	// MigrateOnly applies migrations and exits; set by --migrate.
	MigrateOnly bool `ignored:"true"`
}

type AppConfig struct {
	Env          string        `envconfig:"APP_ENV" default:"production"`
	HTTPPort     int           `envconfig:"HTTP_PORT" default:"8080"`
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat    string        `envconfig:"LOG_FORMAT" default:"json"`
	LogWarnStack bool          `envconfig:"LOG_WARN_STACK" default:"false"`
	AllowOrigins []string      `envconfig:"HTTP_ALLOW_ORIGINS" default:"*"`
	ShutdownWait time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"15s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDevelopment)
}

type DBConfig struct {
	Driver          string        `envconfig:"DB_DRIVER" default:"postgres"`
	Host            string        `envconfig:"DB_HOST"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER"`
	Password        string        `envconfig:"DB_PASSWORD"`
	Name            string        `envconfig:"DB_NAME"`
	SSLMode         string        `envconfig:"DB_SSLMODE" default:"disable"`
	SQLitePath      string        `envconfig:"DB_SQLITE_PATH" default:"dispatch.db"`
	AutoMigrate     bool          `envconfig:"DB_AUTO_MIGRATE" default:"true"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`
}

// Options translates the settings into database open options.
func (d DBConfig) Options() postgres.Options {
	opts := postgres.Options{
		Driver:          d.Driver,
		MaxOpenConns:    d.MaxOpenConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
	}
	switch d.Driver {
	case postgres.DriverSQLite:
		opts.DSN = d.SQLitePath
		opts.MaxOpenConns = 1
	default:
		opts.DSN = postgres.PostgresDSN(d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
	}
	return opts
}

type RedisConfig struct {
	// URL is optional; without it location snapshots are not kept and jobs run unlocked.
	URL         string        `envconfig:"REDIS_URL"`
	SnapshotTTL time.Duration `envconfig:"REDIS_SNAPSHOT_TTL" default:"24h"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type OpenCellIDConfig struct {
	BaseURL string        `envconfig:"OPENCELLID_BASE_URL" default:"https://opencellid.org/api"`
	APIKey  string        `envconfig:"OPENCELLID_API_KEY"`
	MCC     int           `envconfig:"OPENCELLID_MCC" default:"621"`
	Timeout time.Duration `envconfig:"OPENCELLID_TIMEOUT" default:"3s"`
}

type FallbackConfig struct {
	Latitude      float64 `envconfig:"FALLBACK_LATITUDE" default:"6.5244"`
	Longitude     float64 `envconfig:"FALLBACK_LONGITUDE" default:"3.3792"`
	JitterDegrees float64 `envconfig:"FALLBACK_JITTER_DEGREES" default:"0.05"`
}

type DispatchConfig struct {
	MaxRadiusKm          float64       `envconfig:"DISPATCH_MAX_RADIUS_KM" default:"20"`
	AverageSpeedKmh      float64       `envconfig:"DISPATCH_AVERAGE_SPEED_KMH" default:"30"`
	RequestTimeout       time.Duration `envconfig:"DISPATCH_REQUEST_TIMEOUT" default:"10s"`
	RequireDropoff       bool          `envconfig:"DISPATCH_REQUIRE_DROPOFF" default:"true"`
	MaxConcurrentLookups int           `envconfig:"DISPATCH_MAX_CONCURRENT_LOOKUPS" default:"16"`
}

type JobsConfig struct {
	// StaleAssignmentTTL of zero disables the release job.
	StaleAssignmentTTL      time.Duration `envconfig:"STALE_ASSIGNMENT_TTL" default:"0"`
	StaleAssignmentSchedule string        `envconfig:"STALE_ASSIGNMENT_SCHEDULE" default:"@every 1m"`
	StaleAssignmentBatch    int           `envconfig:"STALE_ASSIGNMENT_BATCH_SIZE" default:"100"`
}

// LoadConfig parses args (without the program name), loads the env file and the environment.
// A missing default .env is ignored; a missing file named with --env-file is an error.
func LoadConfig(args []string) (Config, error) {
	flags := pflag.NewFlagSet("dispatch", pflag.ContinueOnError)
	envFile := flags.String("env-file", ".env", "dotenv file to load before reading the environment")
	port := flags.IntP("port", "p", 0, "HTTP port, overrides HTTP_PORT")
	migrate := flags.Bool("migrate", false, "apply database migrations and exit")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(*envFile); err != nil {
		if flags.Changed("env-file") || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", *envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if *port != 0 {
		cfg.App.HTTPPort = *port
	}
	cfg.MigrateOnly = *migrate

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var problems []error
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	if c.App.HTTPPort <= 0 || c.App.HTTPPort > 65535 {
		add("invalid HTTP_PORT: %d", c.App.HTTPPort)
	}

	switch c.DB.Driver {
	case postgres.DriverPostgres:
		if c.DB.Host == "" || c.DB.Name == "" || c.DB.User == "" {
			add("DB_HOST, DB_NAME and DB_USER are required for the postgres driver")
		}
	case postgres.DriverSQLite:
		if c.DB.SQLitePath == "" {
			add("DB_SQLITE_PATH is required for the sqlite driver")
		}
	default:
		add("unknown DB_DRIVER %q", c.DB.Driver)
	}

	if c.Dispatch.MaxRadiusKm <= 0 {
		add("DISPATCH_MAX_RADIUS_KM must be positive")
	}
	if c.Dispatch.AverageSpeedKmh <= 0 {
		add("DISPATCH_AVERAGE_SPEED_KMH must be positive")
	}
	if c.Dispatch.RequestTimeout <= 0 {
		add("DISPATCH_REQUEST_TIMEOUT must be positive")
	}
	if c.Dispatch.MaxConcurrentLookups < 0 {
		add("DISPATCH_MAX_CONCURRENT_LOOKUPS must not be negative")
	}

	if c.Fallback.Latitude < -90 || c.Fallback.Latitude > 90 {
		add("FALLBACK_LATITUDE out of range: %v", c.Fallback.Latitude)
	}
	if c.Fallback.Longitude < -180 || c.Fallback.Longitude > 180 {
		add("FALLBACK_LONGITUDE out of range: %v", c.Fallback.Longitude)
	}
	if c.Fallback.JitterDegrees < 0 {
		add("FALLBACK_JITTER_DEGREES must not be negative")
	}

	if c.Jobs.StaleAssignmentTTL < 0 {
		add("STALE_ASSIGNMENT_TTL must not be negative")
	}
	if c.Jobs.StaleAssignmentTTL > 0 && c.Jobs.StaleAssignmentBatch <= 0 {
		add("STALE_ASSIGNMENT_BATCH_SIZE must be positive")
	}

	return errors.Join(problems...)
}
