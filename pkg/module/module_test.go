package module_test

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/JaimeStill/segmenter/pkg/module"
)

// echo replies with its name and the path it received.
func echo(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(name + " " + r.URL.Path))
	})
}

func TestNewPrefix(t *testing.T) {
	tests := []struct {
		prefix    string
		wantPanic bool
	}{
		{"/api", false},
		{"/app", false},
		{"", true},
		{"api", true},
		{"/", true},
		{"/api/v1", true},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			defer func() {
				if r := recover(); (r != nil) != tt.wantPanic {
					t.Errorf("panic: got %v, want %v", r, tt.wantPanic)
				}
			}()
			if m := module.New(tt.prefix, http.NewServeMux()); m.Prefix() != tt.prefix {
				t.Errorf("prefix: got %s, want %s", m.Prefix(), tt.prefix)
			}
		})
	}
}

func TestRouter(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", echo("api")))
	router.Mount(module.New("/app", echo("app")))
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	router.Handle("GET /metrics", echo("metrics"))

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"module strips prefix", "/api/predict", http.StatusOK, "api /predict"},
		{"module root", "/api", http.StatusOK, "api /"},
		{"nested module path", "/api/models/FloSegmentationModel/versions/3", http.StatusOK, "api /models/FloSegmentationModel/versions/3"},
		{"trailing slash", "/api/model/", http.StatusOK, "api /model"},
		{"second module", "/app", http.StatusOK, "app /"},
		{"native func", "/healthz", http.StatusOK, "ok"},
		{"native handler", "/metrics", http.StatusOK, "metrics /metrics"},
		{"prefix lookalike", "/apiary", http.StatusNotFound, ""},
		{"unknown", "/unknown", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body: got %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestModuleMiddleware(t *testing.T) {
	m := module.New("/api", echo("api"))

	var calls []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls = append(calls, name+" "+r.URL.Path)
				next.ServeHTTP(w, r)
			})
		}
	}

	m.Use(tag("logger"))
	m.Serve(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/predict", nil))

	m.Use(tag("limit"))
	m.Serve(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/model", nil))

	want := []string{"logger /predict", "logger /model", "limit /model"}
	if !slices.Equal(calls, want) {
		t.Errorf("calls: got %v, want %v", calls, want)
	}
}

func TestRouterDuplicateMountPanics(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", http.NewServeMux()))

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for duplicate prefix")
		}
	}()
	router.Mount(module.New("/api", http.NewServeMux()))
}

func TestRouterPrefixes(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/app", http.NewServeMux()))
	router.Mount(module.New("/api", http.NewServeMux()))

	if got := router.Prefixes(); !slices.Equal(got, []string{"/api", "/app"}) {
		t.Errorf("prefixes: got %v, want [/api /app]", got)
	}
}
