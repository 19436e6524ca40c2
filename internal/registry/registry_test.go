package registry_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/segmenter/internal/registry"
	"github.com/JaimeStill/segmenter/pkg/pagination"
	"github.com/JaimeStill/segmenter/pkg/routes"
	"github.com/JaimeStill/segmenter/pkg/storage"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSystem holds versions in memory keyed by name and version.
type fakeSystem struct {
	versions  []registry.Version
	artifacts map[string]string
	lastPage  pagination.PageRequest
	lastQuery registry.Filters
}

func newFake() *fakeSystem {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f := &fakeSystem{artifacts: map[string]string{}}
	for i := 1; i <= 3; i++ {
		v := registry.Version{
			ID:         uuid.New(),
			Name:       "FloSegmentationModel",
			Version:    i,
			Stage:      registry.StageNone,
			RunID:      uuid.New(),
			StorageKey: registry.StorageKey("FloSegmentationModel", i),
			K:          i + 2,
			CreatedAt:  created,
		}
		f.versions = append(f.versions, v)
		if i != 2 {
			f.artifacts[v.StorageKey] = `{"format_version":1}`
		}
	}
	return f
}

func (f *fakeSystem) Handler() *registry.Handler {
	return registry.NewHandler(f, discard(), pagination.Config{DefaultPageSize: 10, MaxPageSize: 50})
}

func (f *fakeSystem) Register(ctx context.Context, cmd registry.RegisterCommand) (*registry.Version, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeSystem) Latest(ctx context.Context, name string) (*registry.Version, error) {
	var latest *registry.Version
	for i := range f.versions {
		if f.versions[i].Name == name && (latest == nil || f.versions[i].Version > latest.Version) {
			latest = &f.versions[i]
		}
	}
	if latest == nil {
		return nil, registry.ErrNotFound
	}
	return latest, nil
}

func (f *fakeSystem) Find(ctx context.Context, name string, version int) (*registry.Version, error) {
	for i := range f.versions {
		if f.versions[i].Name == name && f.versions[i].Version == version {
			return &f.versions[i], nil
		}
	}
	return nil, registry.ErrNotFound
}

func (f *fakeSystem) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters registry.Filters,
) (*pagination.PageResult[registry.Version], error) {
	f.lastPage = page
	f.lastQuery = filters
	result := pagination.NewPageResult(f.versions, len(f.versions), page.Page, page.PageSize)
	return &result, nil
}

func (f *fakeSystem) SetStage(ctx context.Context, name string, version int, stage registry.Stage) (*registry.Version, error) {
	v, err := f.Find(ctx, name, version)
	if err != nil {
		return nil, err
	}
	v.Stage = stage
	return v, nil
}

func (f *fakeSystem) Open(ctx context.Context, v *registry.Version) (io.ReadCloser, error) {
	body, ok := f.artifacts[v.StorageKey]
	if !ok {
		return nil, registry.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (f *fakeSystem) Download(ctx context.Context, v *registry.Version, destDir string) (string, error) {
	return "", errors.New("not implemented")
}

func serve(sys registry.System) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())
	return mux
}

func TestParseStage(t *testing.T) {
	for _, s := range []string{"None", "Staging", "Production", "Archived"} {
		got, err := registry.ParseStage(s)
		if err != nil {
			t.Errorf("ParseStage(%q): %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStage(%q) = %q", s, got)
		}
	}

	for _, s := range []string{"", "production", "Live"} {
		if _, err := registry.ParseStage(s); !errors.Is(err, registry.ErrInvalidStage) {
			t.Errorf("ParseStage(%q) err = %v, want ErrInvalidStage", s, err)
		}
	}
}

func TestStorageKey(t *testing.T) {
	got := registry.StorageKey("FloSegmentationModel", 4)
	if got != "models/FloSegmentationModel/v4/model.json" {
		t.Errorf("StorageKey = %q", got)
	}
}

func TestVersionTag(t *testing.T) {
	v := registry.Version{Name: "FloSegmentationModel", Version: 2}
	if got := v.Tag(); got != "FloSegmentationModel v2" {
		t.Errorf("Tag() = %q", got)
	}
}

func TestFiltersFromQuery(t *testing.T) {
	runID := uuid.MustParse("9f1c2a3b-4d5e-4f60-8a7b-0c1d2e3f4a5b")

	tests := []struct {
		name    string
		query   string
		want    registry.Filters
		wantErr error
	}{
		{"empty", "", registry.Filters{}, nil},
		{"name only", "name=FloSegmentationModel", registry.Filters{Name: ptr("FloSegmentationModel")}, nil},
		{
			"stages",
			"name=m&stage=Staging, Production",
			registry.Filters{Name: ptr("m"), Stages: []registry.Stage{registry.StageStaging, registry.StageProduction}},
			nil,
		},
		{
			"scores",
			"run_id=" + runID.String() + "&k=4&min_silhouette=0.35",
			registry.Filters{RunID: &runID, K: ptr(4), MinSilhouette: ptr(0.35)},
			nil,
		},
		{"bad stage", "stage=Production,Live", registry.Filters{}, registry.ErrInvalidStage},
		{"bad run id", "run_id=abc", registry.Filters{}, registry.ErrInvalidFilter},
		{"zero k", "k=0", registry.Filters{}, registry.ErrInvalidFilter},
		{"silhouette out of range", "min_silhouette=1.5", registry.Filters{}, registry.ErrInvalidFilter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			got, err := registry.FiltersFromQuery(values)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{registry.ErrNotFound, http.StatusNotFound},
		{registry.ErrDuplicate, http.StatusConflict},
		{registry.ErrInvalidStage, http.StatusBadRequest},
		{registry.ErrBadVersion, http.StatusBadRequest},
		{registry.ErrInvalidFilter, http.StatusBadRequest},
		{fmt.Errorf("upload: %w", storage.ErrInvalidKey), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := registry.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestHandlerGet(t *testing.T) {
	mux := serve(newFake())

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"list", "/models?page_size=2&name=FloSegmentationModel", http.StatusOK, `"total":3`},
		{"list bad stage", "/models?stage=Live", http.StatusBadRequest, "invalid model stage"},
		{"list bad k", "/models?k=x", http.StatusBadRequest, "invalid filter"},
		{"latest", "/models/FloSegmentationModel/versions/latest", http.StatusOK, `"version":3`},
		{"latest unknown", "/models/Other/versions/latest", http.StatusNotFound, "not found"},
		{"find", "/models/FloSegmentationModel/versions/2", http.StatusOK, `"k":4`},
		{"find missing", "/models/FloSegmentationModel/versions/9", http.StatusNotFound, "not found"},
		{"find bad version", "/models/FloSegmentationModel/versions/two", http.StatusBadRequest, "positive integer"},
		{"find zero version", "/models/FloSegmentationModel/versions/0", http.StatusBadRequest, "positive integer"},
		{"artifact", "/models/FloSegmentationModel/versions/1/artifact", http.StatusOK, `"format_version":1`},
		{"artifact blob missing", "/models/FloSegmentationModel/versions/2/artifact", http.StatusNotFound, "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want to contain %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestHandlerListPassesQuery(t *testing.T) {
	fake := newFake()
	mux := serve(fake)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/models?page=2&page_size=500&stage=Production", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if fake.lastPage.Page != 2 || fake.lastPage.PageSize != 50 {
		t.Errorf("page = %+v, want page 2 size 50", fake.lastPage)
	}
	if !slices.Equal(fake.lastQuery.Stages, []registry.Stage{registry.StageProduction}) {
		t.Errorf("stage filter = %v", fake.lastQuery.Stages)
	}
}

func TestHandlerArtifactHeaders(t *testing.T) {
	mux := serve(newFake())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/models/FloSegmentationModel/versions/3/artifact", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "FloSegmentationModel-v3.json") {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestHandlerSetStage(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"promote", "/models/FloSegmentationModel/versions/3/stage", `{"stage":"Production"}`, http.StatusOK, `"stage":"Production"`},
		{"unknown stage", "/models/FloSegmentationModel/versions/3/stage", `{"stage":"Live"}`, http.StatusBadRequest, "stage must be one of"},
		{"missing stage", "/models/FloSegmentationModel/versions/3/stage", `{}`, http.StatusBadRequest, "stage is required"},
		{"malformed", "/models/FloSegmentationModel/versions/3/stage", `{`, http.StatusBadRequest, `"error"`},
		{"missing version", "/models/FloSegmentationModel/versions/7/stage", `{"stage":"Staging"}`, http.StatusNotFound, "not found"},
		{"bad version", "/models/FloSegmentationModel/versions/x/stage", `{"stage":"Staging"}`, http.StatusBadRequest, "positive integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := serve(newFake())
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, tt.path, bytes.NewBufferString(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want to contain %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestSchemas(t *testing.T) {
	schemas := registry.Schemas()
	for _, name := range []string{"ModelVersion", "ModelVersionPage", "StageCommand"} {
		if schemas[name] == nil {
			t.Errorf("missing schema %s", name)
		}
	}
	if got := len(schemas["StageCommand"].Properties["stage"].Enum); got != len(registry.Stages) {
		t.Errorf("stage enum has %d values, want %d", got, len(registry.Stages))
	}
}
