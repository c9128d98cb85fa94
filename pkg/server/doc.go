// Package server provides the HTTP server for casino.
//
// It uses gorilla/mux for routing and wraps the router in
// gorilla/handlers.LoggingHandler so that every request produces an access
// log line on the server's zerolog logger.
//
// # Server Setup
//
//	srv := server.NewServer(cfg, validator, prometheus.DefaultGatherer, logger)
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal().Err(err).Msg("server stopped")
//	}
//
// # Endpoints
//
// Endpoints are registered via the endpoints subpackage:
//
//   - POST /login - local credential validation
//   - GET|POST /login/external - external credential validation
//   - GET /authenticators - configured authenticator names
//   - GET /status - backend health
//   - GET /metrics - Prometheus metrics
package server
