package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/survivalcast/survivalcast-go/internal/middleware"
	"github.com/survivalcast/survivalcast-go/internal/model"
	"github.com/survivalcast/survivalcast-go/internal/service"
)

// PredictionHandler handles HTTP requests for predictions and their history.
type PredictionHandler struct {
	service *service.PredictionService
	logger  *slog.Logger
}

// NewPredictionHandler creates a new PredictionHandler.
func NewPredictionHandler(svc *service.PredictionService, logger *slog.Logger) *PredictionHandler {
	return &PredictionHandler{service: svc, logger: logger}
}

// HandlePredict handles POST /predict requests.
func (h *PredictionHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.UserEmailFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("Could not validate credentials"))
		return
	}

	var req model.PredictionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Predict(r.Context(), email, req)
	if err != nil {
		switch {
		case service.IsValidationError(err):
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse(err.Error()))
		case errors.Is(err, service.ErrModelUnavailable):
			h.logger.Error("model artifact unavailable", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse("Model file not found"))
		default:
			h.logger.Error("prediction failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleListPredictions handles GET /predictions requests.
func (h *PredictionHandler) HandleListPredictions(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.UserEmailFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("Could not validate credentials"))
		return
	}

	predictions, err := h.service.History(r.Context(), email)
	if err != nil {
		h.logger.Error("listing predictions failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	h.logger.Debug("fetched predictions", "count", len(predictions))
	writeJSON(w, http.StatusOK, predictions)
}

// HandleStats handles GET /stats requests. The endpoint is public.
func (h *PredictionHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.logger.Error("computing stats failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
