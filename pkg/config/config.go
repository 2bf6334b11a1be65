// Package config loads the application's environment-driven configuration,
// following the teacher's godotenv-for-local-dev convention and
// envconfig-for-typed-struct-binding from the rest of the pack.
package config

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the full set of environment-derived settings shared by
// cmd/api, cmd/bridge, and cmd/reaper.
type Config struct {
	HTTP   HTTPConfig
	Tables TablesConfig
	DB     DBConfig
	JWT    JWTConfig
	Bridge BridgeConfig
	Reaper ReaperConfig
}

type HTTPConfig struct {
	Port string `envconfig:"HTTP_PORT" default:"8080"`
}

// TablesConfig names the four DynamoDB tables the core persists to.
type TablesConfig struct {
	SlotsTable  string `envconfig:"DYNAMODB_SLOTS_TABLE_NAME" required:"true"`
	ConfigTable string `envconfig:"DYNAMODB_CONFIG_TABLE_NAME" required:"true"`
	QueueTable  string `envconfig:"DYNAMODB_INTAKE_QUEUE_TABLE_NAME" required:"true"`
	DLQTable    string `envconfig:"DYNAMODB_INTAKE_DLQ_TABLE_NAME" required:"true"`
}

// DBConfig is the ledger's Postgres connection, reached via pgx rather than
// DynamoDB — see DESIGN.md for why the ledger is a separate datastore.
type DBConfig struct {
	Host     string `envconfig:"LEDGER_DB_HOST" default:"localhost"`
	Port     string `envconfig:"LEDGER_DB_PORT" default:"5432"`
	User     string `envconfig:"LEDGER_DB_USER" required:"true"`
	Password string `envconfig:"LEDGER_DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"LEDGER_DB_NAME" required:"true"`
	SSLMode  string `envconfig:"LEDGER_DB_SSL_MODE" default:"disable"`
}

func (c *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// JWTConfig signs and verifies the bearer credential guarding the Bridge
// trigger and DLQ admin routes.
type JWTConfig struct {
	Secret string `envconfig:"JWT_SECRET" required:"true"`
}

// BridgeConfig bounds one Bridge worker invocation's wall clock.
type BridgeConfig struct {
	WallClockBudget time.Duration `envconfig:"BRIDGE_WALL_CLOCK_BUDGET" default:"50s"`
}

// ReaperConfig tunes the orphan sweep's staleness threshold.
type ReaperConfig struct {
	OrphanThreshold time.Duration `envconfig:"REAPER_ORPHAN_THRESHOLD" default:"20m"`
}

// Load reads .env (if present, for local development) then binds the
// process environment into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, "process env config")
	}
	return cfg, nil
}
