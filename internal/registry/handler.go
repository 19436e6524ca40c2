package registry

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/segmenter/pkg/handlers"
	"github.com/JaimeStill/segmenter/pkg/pagination"
	"github.com/JaimeStill/segmenter/pkg/routes"
	"github.com/JaimeStill/segmenter/pkg/validation"
)

// Handler provides HTTP endpoints for registry operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "registry"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for registry endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/models",
		Tags:   []string{"Registry"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: listOp},
			{Method: "GET", Pattern: "/{name}/versions/latest", Handler: h.Latest, OpenAPI: latestOp},
			{Method: "GET", Pattern: "/{name}/versions/{version}", Handler: h.Find, OpenAPI: findOp},
			{Method: "GET", Pattern: "/{name}/versions/{version}/artifact", Handler: h.Artifact, OpenAPI: artifactOp},
			{Method: "PUT", Pattern: "/{name}/versions/{version}/stage", Handler: h.SetStage, OpenAPI: stageOp},
		},
	}
}

// List returns a paginated list of model versions matching the query filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters, err := FiltersFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Latest returns the highest version of the named model across all stages.
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	v, err := h.sys.Latest(r.Context(), r.PathValue("name"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, v)
}

// Find returns a single model version by name and version number.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	v, ok := h.find(w, r)
	if !ok {
		return
	}

	handlers.RespondJSON(w, http.StatusOK, v)
}

// Artifact streams the artifact document of a model version.
func (h *Handler) Artifact(w http.ResponseWriter, r *http.Request) {
	v, ok := h.find(w, r)
	if !ok {
		return
	}

	rc, err := h.sys.Open(r.Context(), v)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%s-v%d.json", v.Name, v.Version)),
	)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, rc)
}

// SetStage moves a model version to the stage in a StageCommand JSON body.
func (h *Handler) SetStage(w http.ResponseWriter, r *http.Request) {
	version, err := strconv.Atoi(r.PathValue("version"))
	if err != nil || version < 1 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrBadVersion)
		return
	}

	var cmd StageCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if err := validation.Struct(cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %w", ErrInvalidStage, err))
		return
	}

	v, err := h.sys.SetStage(r.Context(), r.PathValue("name"), version, Stage(cmd.Stage))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, v)
}

func (h *Handler) find(w http.ResponseWriter, r *http.Request) (*Version, bool) {
	version, err := strconv.Atoi(r.PathValue("version"))
	if err != nil || version < 1 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrBadVersion)
		return nil, false
	}

	v, err := h.sys.Find(r.Context(), r.PathValue("name"), version)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return nil, false
	}
	return v, true
}
