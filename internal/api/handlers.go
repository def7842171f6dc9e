package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/geoinsight/vizrec/internal/engine"
	"github.com/geoinsight/vizrec/internal/models"
	"github.com/geoinsight/vizrec/internal/services"
)

// RecommenderAPI is the service surface the HTTP layer depends on.
type RecommenderAPI interface {
	Recommend(ctx context.Context, req models.RecommendationRequest) (models.RecommendationResponse, error)
	AddFeedback(entry models.FeedbackEntry)
	StartTracking(userID string)
	TrackInteraction(userID string, req models.InteractionRequest)
	RecordUserFeedback(userID string, req models.UserFeedbackRequest)
	Preferences(userID string) map[models.VisualizationType]float64
}

// Handler exposes the recommendation engine over HTTP/JSON.
type Handler struct {
	service RecommenderAPI
	logger  *slog.Logger
}

// NewHandler constructs the HTTP handler set.
func NewHandler(service RecommenderAPI, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes builds the request mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/recommendations", h.recommend)
	mux.HandleFunc("POST /api/v1/feedback", h.addFeedback)
	mux.HandleFunc("POST /api/v1/users/{id}/interactions", h.trackInteraction)
	mux.HandleFunc("POST /api/v1/users/{id}/feedback", h.recordUserFeedback)
	mux.HandleFunc("GET /api/v1/users/{id}/preferences", h.preferences)
	mux.HandleFunc("GET /healthz", h.health)
	return mux
}

func (h *Handler) recommend(w http.ResponseWriter, r *http.Request) {
	var req models.RecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.service.Recommend(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if isConfigurationError(err) {
			status = http.StatusBadRequest
		}
		h.writeError(w, status, err.Error())
		return
	}

	if req.UserID != "" {
		h.service.StartTracking(req.UserID)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) addFeedback(w http.ResponseWriter, r *http.Request) {
	var entry models.FeedbackEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if entry.VisualizationType == "" {
		h.writeError(w, http.StatusBadRequest, "visualization_type is required")
		return
	}
	if entry.Score < 0 || entry.Score > 5 {
		h.writeError(w, http.StatusBadRequest, "score must be between 0 and 5")
		return
	}

	h.service.AddFeedback(entry)
	h.writeJSON(w, http.StatusAccepted, map[string]bool{"accepted": true})
}

func (h *Handler) trackInteraction(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	var req models.InteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Kind == "" && req.Seconds <= 0 {
		h.writeError(w, http.StatusBadRequest, "kind or seconds is required")
		return
	}

	h.service.TrackInteraction(userID, req)
	h.writeJSON(w, http.StatusAccepted, map[string]bool{"accepted": true})
}

func (h *Handler) recordUserFeedback(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	var req models.UserFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.VisualizationType == "" {
		h.writeError(w, http.StatusBadRequest, "visualization_type is required")
		return
	}
	if req.Rating != nil && (*req.Rating < 0 || *req.Rating > 1) {
		h.writeError(w, http.StatusBadRequest, "rating must be between 0 and 1")
		return
	}

	h.service.RecordUserFeedback(userID, req)
	h.writeJSON(w, http.StatusAccepted, map[string]bool{"accepted": true})
}

func (h *Handler) preferences(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	prefs := h.service.Preferences(userID)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"user_id":     userID,
		"preferences": prefs,
	})
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func isConfigurationError(err error) bool {
	return errors.Is(err, services.ErrNoLayers) ||
		errors.Is(err, engine.ErrMissingLayerConfig) ||
		errors.Is(err, engine.ErrNoNumericFieldsConfigured) ||
		errors.Is(err, engine.ErrFieldsNotInAttributes)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("write response failed", slog.Any("error", err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
