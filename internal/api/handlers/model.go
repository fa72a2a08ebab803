package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"maizecast/internal/core"
	"maizecast/internal/types"
)

// ModelHandler serves metadata about the active prediction model.
type ModelHandler struct {
	predictor types.Predictor
	logger    *slog.Logger
}

// NewModelHandler creates a ModelHandler.
func NewModelHandler(predictor types.Predictor, l *slog.Logger) *ModelHandler {
	if l == nil {
		l = slog.Default()
	}
	return &ModelHandler{predictor: predictor, logger: l}
}

// RegisterRoutes mounts the model route on the provided chi.Router.
func (h *ModelHandler) RegisterRoutes(r chi.Router) {
	r.Get("/model", h.Get)
}

// Get handles GET /v1/model via the predictor's metadata endpoint.
func (h *ModelHandler) Get(w http.ResponseWriter, r *http.Request) {
	info, err := h.predictor.ModelInfo(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: info})
}
