package endpoints

import (
	"github.com/doodlesbykumbi/casino-in-go/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterLoginEndpoints(srv)
	RegisterStatusEndpoints(srv)
	RegisterMetricsEndpoint(srv)
}
