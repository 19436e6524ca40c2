package segments

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/segmenter/pkg/handlers"
	"github.com/JaimeStill/segmenter/pkg/routes"
)

// Handler provides HTTP endpoints for predictions.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "segments"),
	}
}

// Routes returns the route group definition for prediction endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "",
		Tags:   []string{"Predictions"},
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/predict", Handler: h.Predict, OpenAPI: predictOp},
			{Method: "GET", Pattern: "/model", Handler: h.Model, OpenAPI: modelOp},
		},
	}
}

// Predict decodes a Request body and returns the assigned segment. An
// unloaded model surfaces as ErrUnavailable from the system.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %w", ErrValidation, err))
		return
	}

	p, err := h.sys.Predict(r.Context(), req)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, p)
}

// Model returns the metadata of the loaded artifact.
func (h *Handler) Model(w http.ResponseWriter, r *http.Request) {
	md, err := h.sys.Metadata()
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, md)
}
