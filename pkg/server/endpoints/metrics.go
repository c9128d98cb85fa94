package endpoints

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/doodlesbykumbi/casino-in-go/pkg/server"
)

// RegisterMetricsEndpoint exposes the server's Prometheus gatherer on /metrics
func RegisterMetricsEndpoint(s *server.Server) {
	if s.Gatherer == nil {
		return
	}
	s.Router.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{})).Methods("GET")
}
