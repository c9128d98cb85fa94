package endpoints

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/doodlesbykumbi/casino-in-go/pkg/audit"
	"github.com/doodlesbykumbi/casino-in-go/pkg/authenticator"
	"github.com/doodlesbykumbi/casino-in-go/pkg/server"
)

// ExternalParam is the request parameter naming the external authenticator
const ExternalParam = "external"

// LoginRequest is the JSON body accepted by POST /login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterLoginEndpoints registers the local and external validation endpoints
func RegisterLoginEndpoints(s *server.Server) {
	validator := s.Validator
	logger := s.Logger

	// POST /login - username and password, as a form or JSON
	s.Router.HandleFunc("/login", handleLogin(validator, logger)).Methods("POST")

	// GET|POST /login/external - request parameters and cookies are passed
	// to the authenticator named by the "external" parameter
	s.Router.HandleFunc("/login/external", handleExternalLogin(validator, logger)).Methods("GET", "POST")
}

func handleLogin(validator *authenticator.Validator, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseLoginRequest(r)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Username == "" || req.Password == "" {
			respondWithError(w, http.StatusBadRequest, "username and password are required")
			return
		}

		ctx := audit.WithClientIP(r.Context(), clientIP(r))
		result, err := validator.ValidateLocal(ctx, req.Username, req.Password)
		respondWithResult(w, logger, result, err)
	}
}

func handleExternalLogin(validator *authenticator.Validator, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			respondWithError(w, http.StatusBadRequest, "malformed request parameters")
			return
		}

		discriminator := r.Form.Get(ExternalParam)
		if discriminator == "" {
			respondWithError(w, http.StatusBadRequest, "the external parameter is required")
			return
		}

		cookies := make(map[string]string)
		for _, c := range r.Cookies() {
			cookies[c.Name] = c.Value
		}

		ctx := audit.WithClientIP(r.Context(), clientIP(r))
		result, err := validator.ValidateExternal(ctx, discriminator, authenticator.RequestContext{
			Params:  r.Form,
			Cookies: cookies,
		})
		respondWithResult(w, logger, result, err)
	}
}

func parseLoginRequest(r *http.Request) (LoginRequest, error) {
	var req LoginRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, errors.New("malformed JSON body")
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, errors.New("malformed form body")
	}
	req.Username = r.PostForm.Get("username")
	req.Password = r.PostForm.Get("password")
	return req, nil
}

func respondWithResult(w http.ResponseWriter, logger zerolog.Logger, result *authenticator.Result, err error) {
	if err != nil {
		logger.Error().Err(err).Msg("credential validation failed")

		var resErr *authenticator.ResolutionError
		if errors.As(err, &resErr) {
			respondWithError(w, http.StatusInternalServerError, resErr.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, "internal error while validating credentials")
		return
	}
	if result == nil {
		respondWithError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}
