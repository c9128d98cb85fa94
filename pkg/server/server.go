package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/doodlesbykumbi/casino-in-go/pkg/authenticator"
	"github.com/doodlesbykumbi/casino-in-go/pkg/config"
)

type Server struct {
	Config    *config.CasinoConfig
	Validator *authenticator.Validator
	Gatherer  prometheus.Gatherer
	Logger    zerolog.Logger
	Router    *mux.Router
	srv       *http.Server
}

func NewServer(
	cfg *config.CasinoConfig,
	validator *authenticator.Validator,
	gatherer prometheus.Gatherer,
	logger zerolog.Logger,
) *Server {

	router := mux.NewRouter()
	srv := &http.Server{
		Handler:      handlers.LoggingHandler(accessLog{logger}, router),
		Addr:         cfg.Address(),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return &Server{
		Config:    cfg,
		Validator: validator,
		Gatherer:  gatherer,
		Logger:    logger,
		Router:    router,
		srv:       srv,
	}
}

// accessLog writes the Apache-style lines of handlers.LoggingHandler at info
// level, so they follow the configured log level.
type accessLog struct {
	logger zerolog.Logger
}

func (a accessLog) Write(p []byte) (int, error) {
	a.logger.Info().Str("component", "http").Msg(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// Registry returns the authenticator registry behind the validator
func (s *Server) Registry() *authenticator.Registry {
	return s.Validator.Registry()
}

// Handler returns the server's root handler, including access logging
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting connections and waits for active requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
