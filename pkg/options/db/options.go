// Package db provides relational database configuration options.
// MySQL backs production deployments, SQLite backs local development
// and tests.
package db

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
)

// Supported drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Options defines configuration options for the bot registry database.
type Options struct {
	// Driver selects the database driver (mysql, sqlite).
	Driver string `json:"driver" mapstructure:"driver"`

	// Path is the SQLite database file path (sqlite driver only).
	Path string `json:"path" mapstructure:"path"`

	Host     string `json:"host" mapstructure:"host"`
	Port     int    `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"-" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`

	MaxIdleConnections    int           `json:"max-idle-connections" mapstructure:"max-idle-connections"`
	MaxOpenConnections    int           `json:"max-open-connections" mapstructure:"max-open-connections"`
	MaxConnectionLifeTime time.Duration `json:"max-connection-life-time" mapstructure:"max-connection-life-time"`

	// LogLevel maps to gorm log levels: 1 silent, 2 error, 3 warn, 4 info.
	LogLevel int `json:"log-level" mapstructure:"log-level"`
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		Driver:                DriverSQLite,
		Path:                  "sitebot.db",
		Host:                  "127.0.0.1",
		Port:                  3306,
		Username:              "sitebot",
		Database:              "sitebot",
		MaxIdleConnections:    10,
		MaxOpenConnections:    100,
		MaxConnectionLifeTime: time.Hour,
		LogLevel:              2,
	}
}

// String returns a string representation with password redacted.
func (o *Options) String() string {
	if o.Driver == DriverSQLite {
		return fmt.Sprintf("DB{driver=sqlite, path=%s}", o.Path)
	}
	return fmt.Sprintf("DB{driver=%s, host=%s, port=%d, database=%s}",
		o.Driver, o.Host, o.Port, o.Database)
}

// AddFlags adds flags for database options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Driver, "db.driver", o.Driver, "Database driver (mysql, sqlite)")
	fs.StringVar(&o.Path, "db.path", o.Path, "SQLite database file path")
	fs.StringVar(&o.Host, "db.host", o.Host, "MySQL host")
	fs.IntVar(&o.Port, "db.port", o.Port, "MySQL port")
	fs.StringVar(&o.Username, "db.username", o.Username, "MySQL username")
	fs.StringVar(&o.Password, "db.password", o.Password, "MySQL password (DEPRECATED: use DB_PASSWORD env var instead)")
	fs.StringVar(&o.Database, "db.database", o.Database, "MySQL database name")
	fs.IntVar(&o.MaxIdleConnections, "db.max-idle-connections", o.MaxIdleConnections, "Maximum idle connections")
	fs.IntVar(&o.MaxOpenConnections, "db.max-open-connections", o.MaxOpenConnections, "Maximum open connections")
	fs.DurationVar(&o.MaxConnectionLifeTime, "db.max-connection-life-time", o.MaxConnectionLifeTime, "Maximum connection lifetime")
	fs.IntVar(&o.LogLevel, "db.log-level", o.LogLevel, "GORM log level (1 silent, 2 error, 3 warn, 4 info)")
}

// Validate checks if the options are valid.
func (o *Options) Validate() error {
	switch o.Driver {
	case DriverSQLite:
		if o.Path == "" {
			return fmt.Errorf("db.path is required for sqlite driver")
		}
	case DriverMySQL:
		if o.Password == "" {
			o.Password = os.Getenv("DB_PASSWORD")
		}
		if o.Host == "" {
			return fmt.Errorf("db.host is required for mysql driver")
		}
		if o.Port <= 0 || o.Port > 65535 {
			return fmt.Errorf("db.port must be between 1 and 65535")
		}
		if o.Username == "" {
			return fmt.Errorf("db.username is required for mysql driver")
		}
		if o.Database == "" {
			return fmt.Errorf("db.database is required for mysql driver")
		}
	default:
		return fmt.Errorf("unsupported db.driver: %s", o.Driver)
	}
	return nil
}

// DSN builds the MySQL data source name.
func (o *Options) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		o.Username, o.Password, o.Host, o.Port, o.Database)
}
