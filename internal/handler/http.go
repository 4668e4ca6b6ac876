package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/playerboard/internal/domain"
	"github.com/playerboard/internal/service"
	"github.com/playerboard/internal/websocket"
)

// apiKeyHeader is the request header carrying the delete secret
const apiKeyHeader = "API_KEY"

// Handler provides HTTP handlers for the player API
type Handler struct {
	service    *service.PlayerService
	hub        *websocket.Hub
	apiKey     string
	corsOrigin string
	logger     *slog.Logger
}

// NewHandler creates a new HTTP handler. apiKey is the shared delete
// secret; when empty, every delete attempt is rejected.
func NewHandler(service *service.PlayerService, hub *websocket.Hub, apiKey, corsOrigin string, logger *slog.Logger) *Handler {
	return &Handler{
		service:    service,
		hub:        hub,
		apiKey:     apiKey,
		corsOrigin: corsOrigin,
		logger:     logger,
	}
}

// messageResponse is the body of every non-record response
type messageResponse struct {
	Message string `json:"message"`
}

// listResponse wraps the full player list
type listResponse struct {
	Data []domain.Player `json:"data"`
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(corsMiddleware(h.corsOrigin))

	// Health check
	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)

	// WebSocket endpoint
	r.Get("/ws", h.HandleWebSocket)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/players/", h.ListPlayers)
		r.Post("/players/", h.SubmitScore)
		r.Delete("/player/{playerID}/", h.DeletePlayer)

		r.Get("/ranks/live", h.LiveRanks)
	})

	return r
}

// corsMiddleware restricts cross-origin access to a single origin
func corsMiddleware(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, X-Request-ID, "+apiKeyHeader)

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeMessage writes a {"message": ...} response
func (h *Handler) writeMessage(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, messageResponse{Message: message})
}

// HandleWebSocket handles WebSocket upgrade requests
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.hub, h.logger, w, r)
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ReadyCheck returns service readiness status
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// ListPlayers returns all players ordered by score descending
func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.service.ListPlayers(r.Context())
	if err != nil {
		h.logger.Error("failed to list players", "error", err)
		h.writeMessage(w, http.StatusInternalServerError, domain.ErrInternalError.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, listResponse{Data: players})
}

// SubmitScore creates a new player record from the request body
func (h *Handler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	var submission domain.ScoreSubmission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		h.writeMessage(w, http.StatusBadRequest, domain.ErrInvalidRequest.Error())
		return
	}

	if !submission.Valid() {
		h.writeMessage(w, http.StatusBadRequest, domain.ErrMissingFields.Error())
		return
	}

	player, err := h.service.SubmitScore(r.Context(), *submission.Username, *submission.Score)
	if err != nil {
		h.logger.Error("failed to submit score", "error", err)
		h.writeMessage(w, http.StatusInternalServerError, domain.ErrInternalError.Error())
		return
	}

	h.writeJSON(w, http.StatusCreated, player)
}

// DeletePlayer removes a player behind the shared-secret check. The key
// comparison is plain equality and an unset server key rejects everything.
func (h *Handler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	provided := r.Header.Get(apiKeyHeader)
	if h.apiKey == "" || provided != h.apiKey {
		h.writeMessage(w, http.StatusUnauthorized, domain.ErrInvalidAPIKey.Error())
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "playerID"), 10, 64)
	if err != nil {
		h.writeMessage(w, http.StatusNotFound, domain.ErrPlayerNotFound.Error())
		return
	}

	found, err := h.service.DeletePlayer(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete player", "player_id", id, "error", err)
		h.writeMessage(w, http.StatusInternalServerError, domain.ErrInternalError.Error())
		return
	}
	if !found {
		h.writeMessage(w, http.StatusNotFound, domain.ErrPlayerNotFound.Error())
		return
	}

	h.writeMessage(w, http.StatusOK,
		fmt.Sprintf("Player with the ID of %d has been deleted successfully", id))
}

// LiveRanks returns the top N entries from the realtime mirror
func (h *Handler) LiveRanks(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	entries, err := h.service.LiveRanks(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to get live ranks", "error", err)
		h.writeMessage(w, http.StatusInternalServerError, domain.ErrInternalError.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, listWrap(entries))
}

// listWrap keeps the live-rank payload under the same "data" key as the
// canonical list endpoint.
func listWrap(entries []domain.RankEntry) map[string]interface{} {
	return map[string]interface{}{"data": entries}
}
