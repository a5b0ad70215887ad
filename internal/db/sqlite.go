package db

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/skinior/skinior-api/internal/logger"
	"gorm.io/gorm"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type openOptions struct {
	log *logger.Logger
}

// Option adjusts how a database is opened.
type Option func(*openOptions)

// WithLogger routes GORM warnings and errors through log.
func WithLogger(log *logger.Logger) Option {
	return func(options *openOptions) {
		options.log = log
	}
}

func resolveOptions(opts []Option) openOptions {
	options := openOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

func OpenSQLite(dbPath string, opts ...Option) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)
	database, err := gorm.Open(sqlite.Open(dsn), newGormConfig(resolveOptions(opts)))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyEmbeddedMigrations(database); err != nil {
		return nil, fmt.Errorf("apply embedded migrations: %w", err)
	}

	return database, nil
}

// Open picks the driver by name; dsn is a file path for sqlite and a URL for postgres.
func Open(driver string, dsn string, opts ...Option) (*gorm.DB, error) {
	switch driver {
	case "", DriverSQLite:
		return OpenSQLite(dsn, opts...)
	case DriverPostgres:
		return OpenPostgres(dsn, opts...)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func newGormConfig(options openOptions) *gorm.Config {
	return &gorm.Config{
		Logger: newGormLogger(options.log),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}
