package endpoints

import (
	"context"
	"net/http"
	"time"

	"github.com/doodlesbykumbi/casino-in-go/pkg/authenticator"
	"github.com/doodlesbykumbi/casino-in-go/pkg/server"
)

const statusTimeout = 5 * time.Second

// AuthenticatorsResponse represents the response from /authenticators
type AuthenticatorsResponse struct {
	Installed              []string `json:"installed"`
	Authenticators         []string `json:"authenticators"`
	ExternalAuthenticators []string `json:"external_authenticators"`
}

// StatusResponse represents the response from /status
type StatusResponse struct {
	Status         string            `json:"status"`
	Authenticators map[string]string `json:"authenticators,omitempty"`
	Error          string            `json:"error,omitempty"`
}

// RegisterStatusEndpoints registers the status and info endpoints
func RegisterStatusEndpoints(s *server.Server) {
	registry := s.Registry()

	// GET /authenticators - configured names, nothing is instantiated
	s.Router.HandleFunc("/authenticators", handleAuthenticators(registry)).Methods("GET")

	// GET /status - builds both chains and asks every backend for its health
	s.Router.HandleFunc("/status", handleStatus(registry)).Methods("GET")
}

func handleAuthenticators(registry *authenticator.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := AuthenticatorsResponse{
			Installed:              registry.Resolver().Modules(),
			Authenticators:         nonNil(registry.Names(authenticator.Local)),
			ExternalAuthenticators: nonNil(registry.Names(authenticator.External)),
		}
		respondWithJSON(w, http.StatusOK, response)
	}
}

func handleStatus(registry *authenticator.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), statusTimeout)
		defer cancel()

		response := StatusResponse{Status: "ok", Authenticators: make(map[string]string)}
		for _, chainType := range authenticator.ChainTypes() {
			chain, err := registry.Get(chainType)
			if err != nil {
				respondWithJSON(w, http.StatusServiceUnavailable, StatusResponse{
					Status: "error",
					Error:  err.Error(),
				})
				return
			}

			for _, link := range chain {
				key := chainType.String() + "." + link.Name
				checker, ok := link.Authenticator.(authenticator.StatusChecker)
				if !ok {
					response.Authenticators[key] = "ok"
					continue
				}
				if err := checker.Status(ctx); err != nil {
					response.Status = "error"
					response.Authenticators[key] = err.Error()
					continue
				}
				response.Authenticators[key] = "ok"
			}
		}

		code := http.StatusOK
		if response.Status != "ok" {
			code = http.StatusServiceUnavailable
		}
		respondWithJSON(w, code, response)
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
