package db

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds database connection configuration
type Config struct {
	// URL is the connection URL, postgres:// or sqlite://
	URL string
	// Debug enables SQL query logging
	Debug bool
	// Lazy skips the ping on open, so an unreachable database surfaces on
	// first query instead of at connect time
	Lazy bool
}

// Connect opens a gorm connection, choosing the dialect from the URL scheme.
func Connect(cfg Config) (*gorm.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	dialector, err := Dialector(cfg.URL)
	if err != nil {
		return nil, err
	}

	logMode := logger.Silent
	if cfg.Debug {
		logMode = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:               logger.Default.LogMode(logMode),
		DisableAutomaticPing: cfg.Lazy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Dialector returns the gorm dialector for a connection URL.
func Dialector(rawURL string) (gorm.Dialector, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
		return postgres.New(postgres.Config{
			DSN:                  rawURL,
			PreferSimpleProtocol: true, // disables implicit prepared statement usage
		}), nil
	case "sqlite", "sqlite3":
		return sqlite.Open(sqlitePath(u)), nil
	default:
		return nil, fmt.Errorf("unsupported database scheme %q", u.Scheme)
	}
}

// sqlitePath maps sqlite://relative.db, sqlite:///abs/path.db and
// sqlite::memory: to a glebarez/sqlite DSN, keeping the query string.
func sqlitePath(u *url.URL) string {
	path := u.Host + u.Path
	if u.Opaque != "" {
		path = u.Opaque
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return path
}
