package app_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"gonum.org/v1/gonum/mat"

	"github.com/JaimeStill/segmenter/internal/model"
	"github.com/JaimeStill/segmenter/internal/segments"
	"github.com/JaimeStill/segmenter/pkg/module"
	"github.com/JaimeStill/segmenter/web/app"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// singleCluster places every customer in cluster 0.
func singleCluster() *model.Artifact {
	return &model.Artifact{
		Pipeline: &model.Pipeline{
			Scaler: &model.Scaler{
				Mean:  []float64{0, 0, 0, 0},
				Scale: []float64{1, 1, 1, 1},
			},
			KMeans: &model.KMeans{K: 1, Centroids: mat.NewDense(1, 4, nil)},
		},
		Metadata: model.Metadata{
			Name:     "FloSegmentationModel",
			Version:  "FloSegmentationModel v2",
			K:        1,
			Features: model.FeatureColumns,
		},
	}
}

func newRouter(t *testing.T, artifact *model.Artifact) *module.Router {
	t.Helper()

	sys := segments.New(artifact, segments.DefaultLabels, discard(), prometheus.NewRegistry())
	m, err := app.NewModule("/app", sys, discard())
	if err != nil {
		t.Fatalf("NewModule: %v", err)
	}

	router := module.NewRouter()
	router.Mount(m)
	return router
}

func TestForm(t *testing.T) {
	router := newRouter(t, singleCluster())

	for _, path := range []string{"/app", "/app/"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: status %d", path, rec.Code)
		}
		body := rec.Body.String()
		for _, want := range []string{`name="recency_days"`, `value="1500.50"`, `action="/app/"`} {
			if !strings.Contains(body, want) {
				t.Errorf("GET %s: body missing %q", path, want)
			}
		}
		if strings.Contains(body, "not loaded") {
			t.Errorf("GET %s: ready model reported as not loaded", path)
		}
	}
}

func post(router http.Handler, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/app/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func validValues() url.Values {
	return url.Values{
		"recency_days": {"30"},
		"total_orders": {"5"},
		"total_price":  {"1500.50"},
		"tenure_days":  {"500"},
	}
}

func TestPredict(t *testing.T) {
	rec := post(newRouter(t, singleCluster()), validValues())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Hibernating (Cluster 0)", "FloSegmentationModel v2", "We Miss You"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestPredictErrors(t *testing.T) {
	tests := []struct {
		name       string
		artifact   *model.Artifact
		mutate     func(url.Values)
		wantStatus int
		wantBody   string
	}{
		{
			"not a number",
			singleCluster(),
			func(v url.Values) { v.Set("total_orders", "five") },
			http.StatusBadRequest,
			"total_orders must be a whole number",
		},
		{
			"zero tenure",
			singleCluster(),
			func(v url.Values) { v.Set("tenure_days", "0") },
			http.StatusBadRequest,
			"tenure_days must be greater than 0",
		},
		{
			"infinite price",
			singleCluster(),
			func(v url.Values) { v.Set("total_price", "Inf") },
			http.StatusBadRequest,
			"total_price must be a finite number",
		},
		{
			"nan price",
			singleCluster(),
			func(v url.Values) { v.Set("total_price", "NaN") },
			http.StatusBadRequest,
			"total_price must be a finite number",
		},
		{
			"no model",
			nil,
			func(url.Values) {},
			http.StatusServiceUnavailable,
			"model not loaded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := validValues()
			tt.mutate(values)
			rec := post(newRouter(t, tt.artifact), values)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			body := rec.Body.String()
			if !strings.Contains(body, tt.wantBody) {
				t.Errorf("body missing %q", tt.wantBody)
			}
			if strings.Contains(body, "Cluster 0") {
				t.Error("rejected input still produced a segment")
			}
			if !strings.Contains(body, `value="`+values.Get("recency_days")+`"`) {
				t.Error("submitted values not echoed back")
			}
		})
	}
}

func TestStylesheet(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t, singleCluster()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/app.css", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "font-family") {
		t.Error("stylesheet not served")
	}
}

func TestNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t, singleCluster()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "does not exist") {
		t.Error("404 page not rendered")
	}
}
