package registry_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/JaimeStill/segmenter/internal/model"
	"github.com/JaimeStill/segmenter/internal/registry"
	"github.com/JaimeStill/segmenter/pkg/pagination"
	"github.com/JaimeStill/segmenter/pkg/storage"
)

const modelName = "FloSegmentationModel"

var versionColumns = []string{
	"id", "name", "version", "stage", "run_id", "storage_key", "k",
	"silhouette", "calinski_harabasz", "params", "created_at",
}

func trainedArtifact() *model.Artifact {
	return &model.Artifact{
		Pipeline: &model.Pipeline{
			Scaler: &model.Scaler{Mean: []float64{0, 0, 0, 0}, Scale: []float64{1, 1, 1, 1}},
			KMeans: &model.KMeans{K: 2, Centroids: mat.NewDense(2, 4, []float64{0, 0, 0, 0, 1, 1, 1, 1})},
		},
		Metadata: model.Metadata{
			RunID:      uuid.NewString(),
			K:          2,
			Features:   model.FeatureColumns,
			Silhouette: 0.42,
		},
	}
}

func newStore(t *testing.T) storage.System {
	t.Helper()
	store, err := storage.New(&storage.Config{
		Provider:      storage.ProviderFilesystem,
		ContainerName: "models",
		Root:          t.TempDir(),
	}, discard())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func newMockRepo(t *testing.T, store storage.System) (registry.System, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return registry.New(db, store, discard(), pagination.Config{DefaultPageSize: 10, MaxPageSize: 50}), mock
}

func expectAllocate(mock sqlmock.Sqlmock, next int) {
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO registered_models`).
		WithArgs(modelName).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(version\), 0\) \+ 1`).
		WithArgs(modelName).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(next))
}

func insertedRow(a *model.Artifact, version int) *sqlmock.Rows {
	return sqlmock.NewRows(versionColumns).AddRow(
		uuid.NewString(), modelName, version, "None", a.Metadata.RunID,
		registry.StorageKey(modelName, version), a.Metadata.K,
		a.Metadata.Silhouette, 0.0, []byte(`{}`), time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	)
}

func blobExists(t *testing.T, store storage.System, key string) bool {
	t.Helper()
	ok, err := store.Exists(context.Background(), key)
	if err != nil {
		t.Fatalf("exists %s: %v", key, err)
	}
	return ok
}

func TestRegister(t *testing.T) {
	store := newStore(t)
	repo, mock := newMockRepo(t, store)
	a := trainedArtifact()

	expectAllocate(mock, 3)
	mock.ExpectQuery(`RETURNING id`).WillReturnRows(insertedRow(a, 3))
	mock.ExpectCommit()

	v, err := repo.Register(context.Background(), registry.RegisterCommand{Name: modelName, Artifact: a})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if v.Version != 3 || v.Stage != registry.StageNone {
		t.Errorf("version = %+v", v)
	}
	if a.Metadata.Version != "FloSegmentationModel v3" || a.Metadata.Name != modelName {
		t.Errorf("artifact metadata = %q / %q, want stamped tag", a.Metadata.Name, a.Metadata.Version)
	}
	if !blobExists(t, store, registry.StorageKey(modelName, 3)) {
		t.Error("artifact blob missing after register")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRegisterFailureLeavesNoTrace(t *testing.T) {
	tests := []struct {
		name   string
		expect func(mock sqlmock.Sqlmock, a *model.Artifact)
	}{
		{
			"insert fails",
			func(mock sqlmock.Sqlmock, a *model.Artifact) {
				mock.ExpectQuery(`RETURNING id`).WillReturnError(errors.New("insert rejected"))
				mock.ExpectRollback()
			},
		},
		{
			"commit fails",
			func(mock sqlmock.Sqlmock, a *model.Artifact) {
				mock.ExpectQuery(`RETURNING id`).WillReturnRows(insertedRow(a, 1))
				mock.ExpectCommit().WillReturnError(sql.ErrConnDone)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(t)
			repo, mock := newMockRepo(t, store)
			a := trainedArtifact()

			expectAllocate(mock, 1)
			tt.expect(mock, a)

			if _, err := repo.Register(context.Background(), registry.RegisterCommand{Name: modelName, Artifact: a}); err == nil {
				t.Fatal("expected register error")
			}
			if a.Metadata.Version != "" || a.Metadata.Name != "" {
				t.Errorf("artifact stamped %q / %q after failed register", a.Metadata.Name, a.Metadata.Version)
			}
			if blobExists(t, store, registry.StorageKey(modelName, 1)) {
				t.Error("uploaded artifact left behind")
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}

func upload(t *testing.T, store storage.System, key, body string) {
	t.Helper()
	if err := store.Upload(context.Background(), key, strings.NewReader(body), "application/json"); err != nil {
		t.Fatal(err)
	}
}

func TestDownload(t *testing.T) {
	store := newStore(t)
	repo, _ := newMockRepo(t, store)

	a := trainedArtifact()
	a.Metadata.Name = modelName
	a.Metadata.Version = model.VersionTag(modelName, 2)
	var buf strings.Builder
	if err := a.Save(&buf); err != nil {
		t.Fatal(err)
	}
	key := registry.StorageKey(modelName, 2)
	upload(t, store, key, buf.String())

	dest := filepath.Join(t.TempDir(), "model_files")
	if err := os.MkdirAll(dest, 0o755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(dest, "old.json")
	if err := os.WriteFile(stale, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	path, err := repo.Download(context.Background(), &registry.Version{Name: modelName, Version: 2, StorageKey: key}, dest)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if path != filepath.Join(dest, model.FileName) {
		t.Errorf("path = %s", path)
	}

	loaded, err := model.LoadFile(path)
	if err != nil {
		t.Fatalf("load installed artifact: %v", err)
	}
	if loaded.Metadata.Version != a.Metadata.Version {
		t.Errorf("installed version = %q", loaded.Metadata.Version)
	}
	if _, err := os.Stat(stale); !errors.Is(err, os.ErrNotExist) {
		t.Error("stale file survived download")
	}
}

func TestDownloadCorruptKeepsServingModel(t *testing.T) {
	store := newStore(t)
	repo, _ := newMockRepo(t, store)

	key := registry.StorageKey(modelName, 4)
	upload(t, store, key, `{"format_version":`)

	dest := filepath.Join(t.TempDir(), "model_files")
	if err := os.MkdirAll(dest, 0o755); err != nil {
		t.Fatal(err)
	}
	current := filepath.Join(dest, model.FileName)
	if err := os.WriteFile(current, []byte("serving"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := repo.Download(context.Background(), &registry.Version{Name: modelName, Version: 4, StorageKey: key}, dest)
	if !errors.Is(err, model.ErrCorrupt) {
		t.Fatalf("error = %v, want ErrCorrupt", err)
	}

	data, err := os.ReadFile(current)
	if err != nil {
		t.Fatalf("serving artifact removed: %v", err)
	}
	if string(data) != "serving" {
		t.Errorf("serving artifact replaced with %q", data)
	}

	entries, err := os.ReadDir(filepath.Dir(dest))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("staging left behind: %d entries beside model dir", len(entries))
	}
}
