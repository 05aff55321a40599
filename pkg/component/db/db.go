// Package db provides the GORM-backed relational client for the bot
// registry. MySQL is used in production, SQLite (pure-Go driver) for
// local runs and tests.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	dbopts "github.com/vivekpraj/website-to-chatbot/pkg/options/db"
)

// Client wraps gorm.DB for the configured driver.
type Client struct {
	db   *gorm.DB
	opts *dbopts.Options
}

// New creates a new database client from the provided options.
func New(opts *dbopts.Options) (*Client, error) {
	return NewWithContext(context.Background(), opts)
}

// NewWithContext creates a new database client with context support.
// The context bounds connection establishment and the initial ping.
func NewWithContext(ctx context.Context, opts *dbopts.Options) (*Client, error) {
	if opts == nil {
		return nil, fmt.Errorf("db options cannot be nil")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid db options: %w", err)
	}

	var logLevel gormlogger.LogLevel
	switch opts.LogLevel {
	case 2:
		logLevel = gormlogger.Error
	case 3:
		logLevel = gormlogger.Warn
	case 4:
		logLevel = gormlogger.Info
	default:
		logLevel = gormlogger.Silent
	}

	// TranslateError surfaces driver duplicate-key violations as
	// gorm.ErrDuplicatedKey, which the bot store relies on for
	// idempotent create.
	gormConfig := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	var db *gorm.DB
	var err error
	switch opts.Driver {
	case dbopts.DriverSQLite:
		db, err = gorm.Open(sqlite.Open(opts.Path), gormConfig)
	case dbopts.DriverMySQL:
		db, err = gorm.Open(mysqldriver.Open(opts.DSN()), gormConfig)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", opts.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", opts.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if opts.MaxIdleConnections > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConnections)
	}
	if opts.MaxOpenConnections > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConnections)
	}
	if opts.MaxConnectionLifeTime > 0 {
		sqlDB.SetConnMaxLifetime(opts.MaxConnectionLifeTime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping %s: %w", opts.Driver, err)
	}

	return &Client{
		db:   db,
		opts: opts,
	}, nil
}

// Name returns the storage type identifier.
func (c *Client) Name() string {
	return c.opts.Driver
}

// Ping checks if the database connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection gracefully.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Health returns a health check function for monitoring.
func (c *Client) Health() func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return c.Ping(ctx)
	}
}

// DB returns the underlying gorm.DB instance.
func (c *Client) DB() *gorm.DB {
	return c.db
}
