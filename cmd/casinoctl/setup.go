package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/casino-in-go/pkg/audit"
	"github.com/doodlesbykumbi/casino-in-go/pkg/authenticator"
	"github.com/doodlesbykumbi/casino-in-go/pkg/authenticator/backends"
	"github.com/doodlesbykumbi/casino-in-go/pkg/config"
	"github.com/doodlesbykumbi/casino-in-go/pkg/logging"
	"github.com/doodlesbykumbi/casino-in-go/pkg/metrics"
)

// app holds everything built from the configuration
type app struct {
	cfg       *config.CasinoConfig
	logger    zerolog.Logger
	registry  *authenticator.Registry
	validator *authenticator.Validator
	gatherer  prometheus.Gatherer
}

func loadConfig(cmd *cobra.Command) (*config.CasinoConfig, error) {
	path, _ := cmd.Flags().GetString("config")

	var (
		cfg *config.CasinoConfig
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newApp(cfg *config.CasinoConfig) (*app, error) {
	logger, err := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cfg.LogOutput,
	})
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return nil, err
	}

	registry := authenticator.NewRegistry(backends.NewResolver(), cfg)
	registry.Logger = logger
	executor := &authenticator.Executor{
		Logger:  logger,
		Audit:   audit.NewLogger(os.Stderr, cfg.AuditEnabled),
		Metrics: m,
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		registry:  registry,
		validator: authenticator.NewValidator(registry, executor),
		gatherer:  reg,
	}, nil
}

// close releases the backends built while running the command
func (a *app) close() {
	if err := a.registry.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("failed to close authenticators")
	}
}
