package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sampleprojects/postandcomments/internal/db/backends/gormdb"
	"github.com/sampleprojects/postandcomments/internal/db/interfaces"
	"go.uber.org/zap"
)

const (
	TypeMemory   = "memory"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Config holds database configuration
type Config struct {
	Type          string        // "memory", "postgres", "sqlite"
	DSN           string        // Data Source Name / Connection String
	MaxOpenConns  int           // Maximum open connections
	MaxIdleConns  int           // Maximum idle connections
	SlowThreshold time.Duration // Queries slower than this are logged
}

// NewDatabase creates a new database instance based on configuration
func NewDatabase(config *Config, logger *zap.SugaredLogger) (interfaces.Database, error) {
	if config == nil {
		config = &Config{Type: TypeMemory}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	cfg := gormdb.Config{
		DSN:           config.DSN,
		MaxOpenConns:  config.MaxOpenConns,
		MaxIdleConns:  config.MaxIdleConns,
		SlowThreshold: config.SlowThreshold,
	}

	switch config.Type {
	case TypeMemory, "":
		// Every connection of the pool must see the same in-memory database.
		cfg.Dialect = gormdb.DialectSQLite
		cfg.DSN = fmt.Sprintf("file:blog-%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
		cfg.MaxOpenConns = 1
		cfg.MaxIdleConns = 1
		logger.Infow("Using in-memory database")
	case TypeSQLite:
		if config.DSN == "" {
			return nil, fmt.Errorf("sqlite database requires a DSN")
		}
		cfg.Dialect = gormdb.DialectSQLite
	case TypePostgres:
		if config.DSN == "" {
			return nil, fmt.Errorf("postgres database requires a DSN")
		}
		cfg.Dialect = gormdb.DialectPostgres
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}

	return gormdb.NewDatabase(cfg, logger), nil
}

// MustNewDatabase creates a new database instance and panics on error
func MustNewDatabase(config *Config, logger *zap.SugaredLogger) interfaces.Database {
	db, err := NewDatabase(config, logger)
	if err != nil {
		panic(fmt.Sprintf("failed to create database: %v", err))
	}
	return db
}

// NewInMemoryDatabase creates a new in-memory database instance
func NewInMemoryDatabase(logger *zap.SugaredLogger) interfaces.Database {
	return MustNewDatabase(&Config{Type: TypeMemory}, logger)
}

// ConnectAndMigrate connects to the database and, when migrate is set,
// creates or updates the blog tables.
func ConnectAndMigrate(ctx context.Context, db interfaces.Database, migrate bool) error {
	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if !db.IsHealthy(ctx) {
		return fmt.Errorf("database health check failed")
	}

	if !migrate {
		return nil
	}
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}
