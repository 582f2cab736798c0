package gormdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sampleprojects/postandcomments/internal/db/entities"
	"github.com/sampleprojects/postandcomments/internal/db/interfaces"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Config holds the connection settings for a GORM backed database
type Config struct {
	Dialect       string
	DSN           string
	MaxOpenConns  int
	MaxIdleConns  int
	SlowThreshold time.Duration
}

// Database implements interfaces.Database on top of GORM
type Database struct {
	cfg    Config
	logger *zap.SugaredLogger

	mu sync.RWMutex
	db *gorm.DB

	posts    *postRepository
	tags     *tagRepository
	comments *commentRepository
	details  *detailsRepository
}

// NewDatabase creates a database that is not yet connected
func NewDatabase(cfg Config, logger *zap.SugaredLogger) *Database {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	d := &Database{cfg: cfg, logger: logger}
	d.posts = newPostRepository(d)
	d.tags = newTagRepository(d)
	d.comments = newCommentRepository(d)
	d.details = newDetailsRepository(d)
	return d
}

func (d *Database) dialector() (gorm.Dialector, error) {
	switch d.cfg.Dialect {
	case DialectPostgres:
		return postgres.Open(d.cfg.DSN), nil
	case DialectSQLite:
		return sqlite.Open(d.cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", d.cfg.Dialect)
	}
}

// Connect establishes a connection to the database
func (d *Database) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db != nil {
		return nil
	}

	dialector, err := d.dialector()
	if err != nil {
		return err
	}

	slow := d.cfg.SlowThreshold
	if slow <= 0 {
		slow = 200 * time.Millisecond
	}
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(zap.NewStdLog(d.logger.Desugar()), gormlogger.Config{
			SlowThreshold:             slow,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return &interfaces.DatabaseError{Op: "open", Err: err}
	}

	if err := gdb.SetupJoinTable(&entities.Post{}, "Tags", &entities.PostTag{}); err != nil {
		return &interfaces.DatabaseError{Op: "open", Err: err}
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return &interfaces.DatabaseError{Op: "open", Err: err}
	}
	if d.cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(d.cfg.MaxOpenConns)
	}
	if d.cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(d.cfg.MaxIdleConns)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return &interfaces.DatabaseError{Op: "ping", Err: err}
	}

	d.db = gdb
	d.logger.Infow("Connected to database", "dialect", d.cfg.Dialect)
	return nil
}

// Disconnect closes the database connection
func (d *Database) Disconnect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return nil
	}
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	d.db = nil
	d.logger.Infow("Disconnected from database", "dialect", d.cfg.Dialect)
	return sqlDB.Close()
}

// IsHealthy pings the underlying connection pool
func (d *Database) IsHealthy(ctx context.Context) bool {
	gdb, err := d.handle()
	if err != nil {
		return false
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(ctx) == nil
}

// Migrate runs GORM's auto migration for the given models, or for every
// blog model when none are given.
func (d *Database) Migrate(ctx context.Context, models ...any) error {
	gdb, err := d.handle()
	if err != nil {
		return err
	}
	if len(models) == 0 {
		models = entities.Models()
	}

	if err := gdb.WithContext(ctx).AutoMigrate(models...); err != nil {
		return &interfaces.DatabaseError{Op: "migrate", Err: err}
	}
	d.logger.Infow("Migration completed", "models", len(models))
	return nil
}

func (d *Database) Posts() interfaces.PostRepository       { return d.posts }
func (d *Database) Tags() interfaces.TagRepository         { return d.tags }
func (d *Database) Comments() interfaces.CommentRepository { return d.comments }
func (d *Database) Details() interfaces.DetailsRepository  { return d.details }

// DB exposes the GORM handle, mainly for tooling and tests.
func (d *Database) DB() (*gorm.DB, error) {
	return d.handle()
}

func (d *Database) handle() (*gorm.DB, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.db == nil {
		return nil, interfaces.ErrDatabaseNotConnected
	}
	return d.db, nil
}
