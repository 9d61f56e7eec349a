// Package server exposes the mobile endpoints over HTTP. It owns the
// listener lifecycle, authentication, access logging and the translation
// between net/http and the endpoint registry.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/amrbasha900/mobile-endpoints/repository"
	"github.com/amrbasha900/mobile-endpoints/repository/models"
	"github.com/amrbasha900/mobile-endpoints/srvreg"
)

// Repository is the slice of the persistence layer the server itself
// needs: API key resolution and liveness.
type Repository interface {
	GetUserByAPIKey(apiKey string) (*models.User, *repository.RepositoryError)
	Ping() error
}

// WebServer handles HTTP requests.
type WebServer struct {
	httpAddr   string
	server     *http.Server
	logger     zerolog.Logger
	registry   *srvreg.ServiceRegistry
	repository Repository
	startTime  time.Time
}

// NewWebServer creates a new web server listening on the given port.
func NewWebServer(httpPort string, registry *srvreg.ServiceRegistry, repo Repository, logger zerolog.Logger) *WebServer {
	mux := http.NewServeMux()

	ws := &WebServer{
		httpAddr: ":" + httpPort,
		server: &http.Server{
			Addr:              ":" + httpPort,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:     logger,
		registry:   registry,
		repository: repo,
		startTime:  time.Now(),
	}

	mux.HandleFunc("/", ws.handleRoot)
	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/api/", ws.handleAPI)

	return ws
}

// Start starts the web server.
func (ws *WebServer) Start() {
	ws.logger.Info().Str("addr", ws.httpAddr).Msg("starting web server")
	go func() {
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			ws.logger.Error().Err(err).Msg("web server error")
		}
	}()
}

// Shutdown gracefully shuts down the web server.
func (ws *WebServer) Shutdown(ctx context.Context) error {
	ws.logger.Info().Msg("shutting down web server")
	return ws.server.Shutdown(ctx)
}

// handleRoot shows a short service banner.
func (ws *WebServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		JSONError(w, "Not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		JSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "mobile-endpoints",
		"uptime":  time.Since(ws.startTime).String(),
	})
}

// handleHealth reports process and database liveness.
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		JSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	status := "ok"
	code := http.StatusOK
	if err := ws.repository.Ping(); err != nil {
		status = "degraded: " + err.Error()
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{
		"status": status,
		"uptime": time.Since(ws.startTime).String(),
	})
}

// handleAPI authenticates the caller and dispatches to the endpoint
// registry.
func (ws *WebServer) handleAPI(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	started := time.Now()

	request, err := srvreg.ConvertHTTPRequest(r, requestID)
	if err != nil {
		JSONError(w, "Failed to read request: "+err.Error(), http.StatusUnprocessableEntity)
		ws.logger.Error().Err(err).Str("request_id", requestID).Msg("failed to convert HTTP request")
		return
	}

	apiKey := extractAPIKey(r)
	if apiKey == "" {
		JSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	user, repoErr := ws.repository.GetUserByAPIKey(apiKey)
	if repoErr != nil {
		if repoErr.Code == repository.ErrCodeEntityNotFound {
			JSONError(w, "Invalid API key", http.StatusUnauthorized)
		} else {
			JSONError(w, "Internal server error", http.StatusInternalServerError)
			ws.logger.Error().Str("code", repoErr.Code).Str("detail", repoErr.Detail).Msg("API key lookup failed")
		}
		return
	}
	request.User = user

	response := ws.registry.Dispatch(request)

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}
	w.Header().Set("X-Request-Id", requestID)
	w.WriteHeader(response.StatusCode)
	if _, err := w.Write([]byte(response.Body)); err != nil {
		ws.logger.Error().Err(err).Str("request_id", requestID).Msg("failed to write response")
	}

	ws.logger.Info().
		Str("request_id", requestID).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("user", user.Email).
		Int("status", response.StatusCode).
		Dur("duration", time.Since(started)).
		Msg("request served")
}

// extractAPIKey pulls the API key from "Authorization: token <key>" or the
// X-API-Key header.
func extractAPIKey(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "token "); ok {
		return strings.TrimSpace(token)
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// JSONError sends a JSON formatted error response with the given status
// code and message.
func JSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
