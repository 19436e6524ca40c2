// Package app serves the interactive segment prediction form.
package app

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/segmenter/internal/segments"
	"github.com/JaimeStill/segmenter/pkg/module"
	"github.com/JaimeStill/segmenter/pkg/web"
)

//go:embed templates
var templateFS embed.FS

//go:embed public
var publicFS embed.FS

const layout = "app"

var (
	formView     = web.ViewDef{Template: "form.html", Title: "Customer Segmentation"}
	notFoundView = web.ViewDef{Template: "404.html", Title: "Not Found"}
)

// Form is the state rendered by the form view.
type Form struct {
	RecencyDays string
	TotalOrders string
	TotalPrice  string
	TenureDays  string

	Prediction *segments.Prediction
	Action     *segments.Action
	Error      string
	Ready      bool
}

func defaultForm() Form {
	return Form{
		RecencyDays: "30",
		TotalOrders: "5",
		TotalPrice:  "1500.50",
		TenureDays:  "500",
	}
}

type handler struct {
	sys    segments.System
	views  *web.TemplateSet
	logger *slog.Logger
}

// NewModule creates the form module mounted at basePath.
func NewModule(basePath string, sys segments.System, logger *slog.Logger) (*module.Module, error) {
	views, err := web.NewTemplateSet(
		templateFS,
		templateFS,
		"templates/layouts/*.html",
		"templates/views",
		basePath,
		nil,
		[]web.ViewDef{formView, notFoundView},
	)
	if err != nil {
		return nil, fmt.Errorf("app templates: %w", err)
	}

	h := &handler{
		sys:    sys,
		views:  views,
		logger: logger.With("handler", "app"),
	}

	router := web.NewRouter()
	router.HandleFunc("GET /{$}", h.form)
	router.HandleFunc("POST /{$}", h.predict)
	for _, route := range web.PublicFileRoutes(publicFS, "public", "app.css") {
		router.HandleFunc(route.Method+" "+route.Pattern, route.Handler)
	}
	router.SetFallback(views.ErrorHandler(layout, notFoundView, http.StatusNotFound))

	return module.New(basePath, router), nil
}

func (h *handler) form(w http.ResponseWriter, r *http.Request) {
	f := defaultForm()
	f.Ready = h.sys.Ready()
	h.render(w, http.StatusOK, f)
}

func (h *handler) predict(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		f := defaultForm()
		f.Ready = h.sys.Ready()
		f.Error = "could not read form"
		h.render(w, http.StatusBadRequest, f)
		return
	}

	f := Form{
		RecencyDays: r.PostFormValue("recency_days"),
		TotalOrders: r.PostFormValue("total_orders"),
		TotalPrice:  r.PostFormValue("total_price"),
		TenureDays:  r.PostFormValue("tenure_days"),
		Ready:       h.sys.Ready(),
	}

	req, err := parseRequest(f)
	if err != nil {
		f.Error = err.Error()
		h.render(w, http.StatusBadRequest, f)
		return
	}

	p, err := h.sys.Predict(r.Context(), req)
	if err != nil {
		status := segments.MapHTTPStatus(err)
		if status >= http.StatusInternalServerError && !errors.Is(err, segments.ErrUnavailable) {
			h.logger.Error("prediction failed", "error", err)
		}
		f.Error = err.Error()
		h.render(w, status, f)
		return
	}

	f.Prediction = p
	if a, ok := segments.RecommendedAction(p.ClusterID); ok {
		f.Action = &a
	}
	h.render(w, http.StatusOK, f)
}

func (h *handler) render(w http.ResponseWriter, status int, f Form) {
	if err := h.views.Render(w, status, layout, formView.Template, h.views.Data(formView, f)); err != nil {
		h.logger.Error("render failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func parseRequest(f Form) (segments.Request, error) {
	var req segments.Request
	var err error

	if req.RecencyDays, err = strconv.Atoi(f.RecencyDays); err != nil {
		return req, fmt.Errorf("recency_days must be a whole number")
	}
	if req.TotalOrders, err = strconv.Atoi(f.TotalOrders); err != nil {
		return req, fmt.Errorf("total_orders must be a whole number")
	}
	if req.TotalPrice, err = strconv.ParseFloat(f.TotalPrice, 64); err != nil {
		return req, fmt.Errorf("total_price must be a number")
	}
	if req.TenureDays, err = strconv.Atoi(f.TenureDays); err != nil {
		return req, fmt.Errorf("tenure_days must be a whole number")
	}
	return req, nil
}
