package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"spendsense-go/internal/api"
	"spendsense-go/internal/insights"
	"spendsense-go/internal/models"
	"spendsense-go/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler provides HTTP handlers for the API.
type Handler struct {
	service *api.InsightsService
}

// NewHandler creates a new handler instance.
func NewHandler(svc *api.InsightsService) *Handler {
	return &Handler{service: svc}
}

// Routes mounts every endpoint on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Route("/users/{user_id}", func(r chi.Router) {
		r.Get("/insights", h.GetInsights)
		r.Get("/transactions", h.ListTransactions)
		r.Get("/profile", h.GetProfile)
	})
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.service.HealthCheck(r.Context()); err != nil {
		zap.L().Warn("Health check failed", zap.Error(err))
		h.respondError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// GetInsights handles GET /users/{user_id}/insights?period=30d|90d
func (h *Handler) GetInsights(w http.ResponseWriter, r *http.Request) {
	response, err := h.service.GetInsights(r.Context(), chi.URLParam(r, "user_id"), r.URL.Query().Get("period"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, response)
}

// ListTransactions handles GET /users/{user_id}/transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	response, err := h.service.ListTransactions(r.Context(), chi.URLParam(r, "user_id"), r.URL.Query())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, response)
}

// GetProfile handles GET /users/{user_id}/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	response, err := h.service.GetProfile(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, response)
}

// respondServiceError maps classified service errors to status codes. Causes
// of 500s are logged by the service and never echoed to the client.
func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	var vErr *api.ValidationError
	switch {
	case errors.As(err, &vErr):
		h.respondError(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, insights.ErrInvalidPeriod):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrProfileNotFound):
		h.respondError(w, http.StatusNotFound, "profile not found")
	default:
		h.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// respondJSON sends a JSON response with the given status code.
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("Failed to encode response", zap.Error(err))
	}
}

// respondError sends an error response with the given status code and message.
func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, models.ErrorResponse{Error: message})
}
