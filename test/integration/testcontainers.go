package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/casino-in-go/pkg/authenticator"
	"github.com/doodlesbykumbi/casino-in-go/pkg/authenticator/backends"
	"github.com/doodlesbykumbi/casino-in-go/pkg/config"
	"github.com/doodlesbykumbi/casino-in-go/pkg/db"
	"github.com/doodlesbykumbi/casino-in-go/pkg/server"
	"github.com/doodlesbykumbi/casino-in-go/pkg/server/endpoints"
)

// configTemplate is the casino.yml used by the inline server. The database
// authenticator comes first; the static one catches users it declines.
const configTemplate = `
log_level: error
audit_enabled: false
authenticators:
  users_db:
    authenticator: database
    options:
      connection: %s
      table: users
      extra_attributes:
        email: mail
  fallback:
    authenticator: static
    options:
      users:
        alice:
          password: fallback-secret
          email: alice@fallback.example.com
`

// TestContext holds all the resources needed for integration tests
type TestContext struct {
	DB          *gorm.DB
	Container   testcontainers.Container
	DatabaseURL string
	ServerURL   string
	HTTPClient  *http.Client
	Server      *httptest.Server
	Registry    *authenticator.Registry
}

// NewTestContext starts PostgreSQL in a container, creates the users table
// and runs the casino server in-process against it.
func NewTestContext(ctx context.Context) (*TestContext, error) {
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("casino_test"),
		tcpostgres.WithUsername("casino"),
		tcpostgres.WithPassword("casino"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	database, err := db.Connect(db.Config{URL: connStr})
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.Exec(`
		CREATE TABLE users (
			username text PRIMARY KEY,
			encrypted_password text NOT NULL,
			mail text
		)
	`).Error; err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to create users table: %w", err)
	}

	cfg, err := writeConfig(connStr)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}

	registry := authenticator.NewRegistry(backends.NewResolver(), cfg)
	validator := authenticator.NewValidator(registry, &authenticator.Executor{Logger: zerolog.Nop()})
	s := server.NewServer(cfg, validator, nil, zerolog.Nop())
	endpoints.RegisterAll(s)
	httpServer := httptest.NewServer(s.Handler())

	return &TestContext{
		DB:          database,
		Container:   pgContainer,
		DatabaseURL: connStr,
		ServerURL:   httpServer.URL,
		HTTPClient:  httpServer.Client(),
		Server:      httpServer,
		Registry:    registry,
	}, nil
}

func writeConfig(connStr string) (*config.CasinoConfig, error) {
	dir, err := os.MkdirTemp("", "casino-integration")
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, config.ConfigFileName)
	if err := os.WriteFile(path, []byte(fmt.Sprintf(configTemplate, connStr)), 0o600); err != nil {
		return nil, err
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	if tc.Server != nil {
		tc.Server.Close()
	}
	if tc.Registry != nil {
		_ = tc.Registry.Close()
	}
	if tc.DB != nil {
		if sqlDB, err := tc.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}
