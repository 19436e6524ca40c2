package registry

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/JaimeStill/segmenter/internal/model"
	"github.com/JaimeStill/segmenter/pkg/pagination"
	"github.com/JaimeStill/segmenter/pkg/query"
	"github.com/JaimeStill/segmenter/pkg/repository"
	"github.com/JaimeStill/segmenter/pkg/storage"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a registry repository implementing the System interface.
func New(
	db *sql.DB,
	storage storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    storage,
		logger:     logger.With("system", "registry"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

// Register allocates the next version of cmd.Name, stamps the artifact's
// version tag, uploads it and records the version. The model row is locked
// for the transaction so concurrent registrations get distinct versions.
func (r *repo) Register(ctx context.Context, cmd RegisterCommand) (*Version, error) {
	if err := validateName(cmd.Name); err != nil {
		return nil, err
	}
	if cmd.Artifact == nil {
		return nil, fmt.Errorf("register %s: no artifact", cmd.Name)
	}

	md := cmd.Artifact.Metadata
	runID, err := uuid.Parse(md.RunID)
	if err != nil {
		return nil, fmt.Errorf("register %s: invalid run id: %w", cmd.Name, err)
	}

	params, err := json.Marshal(md.Params)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}

	lockQ := `
		INSERT INTO registered_models(name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET updated_at = NOW()`

	nextQ := `SELECT COALESCE(MAX(version), 0) + 1 FROM ` + projection.Table() + ` WHERE name = $1`

	insertQ := `
		INSERT INTO ` + projection.Table() + `(
			name, version, stage, run_id, storage_key, k,
			silhouette, calinski_harabasz, params
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		` + returning

	// the upload is outside the transaction; uploaded is the key to remove
	// when the insert or the commit fails
	var uploaded string
	var stamped model.Artifact

	v, err := repository.WithTx(ctx, r.db, nil, func(tx *sql.Tx) (Version, error) {
		if _, err := tx.ExecContext(ctx, lockQ, cmd.Name); err != nil {
			return Version{}, fmt.Errorf("lock model: %w", err)
		}

		var next int
		if err := tx.QueryRowContext(ctx, nextQ, cmd.Name).Scan(&next); err != nil {
			return Version{}, fmt.Errorf("allocate version: %w", err)
		}

		stamped = *cmd.Artifact
		stamped.Metadata.Name = cmd.Name
		stamped.Metadata.Version = model.VersionTag(cmd.Name, next)

		var buf bytes.Buffer
		if err := stamped.Save(&buf); err != nil {
			return Version{}, err
		}

		key := StorageKey(cmd.Name, next)
		if err := r.storage.Upload(ctx, key, &buf, "application/json"); err != nil {
			return Version{}, fmt.Errorf("upload artifact: %w", err)
		}
		uploaded = key

		args := []any{
			cmd.Name, next, string(StageNone), runID, key, md.K,
			md.Silhouette, md.CalinskiHarabasz, params,
		}

		v, err := repository.QueryOne(ctx, tx, insertQ, args, scanVersion)
		if err != nil {
			return Version{}, fmt.Errorf("insert version: %w", err)
		}
		return v, nil
	})

	if err != nil {
		if uploaded != "" {
			if delErr := r.storage.Delete(context.WithoutCancel(ctx), uploaded); delErr != nil {
				r.logger.Warn("orphaned artifact", "key", uploaded, "error", delErr)
			}
		}
		return nil, dbErrors.Map(err)
	}

	cmd.Artifact.Metadata = stamped.Metadata

	r.logger.Info("model version registered",
		"name", v.Name,
		"version", v.Version,
		"key", v.StorageKey,
		"k", v.K,
	)
	return &v, nil
}

func (r *repo) Latest(ctx context.Context, name string) (*Version, error) {
	q, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("Name", name).
		BuildPage(1, 1)

	v, err := repository.QueryOne(ctx, r.db, q, args, scanVersion)
	if err != nil {
		return nil, dbErrors.Map(err)
	}
	return &v, nil
}

func (r *repo) Find(ctx context.Context, name string, version int) (*Version, error) {
	q, args := query.
		NewBuilder(projection).
		WhereEquals("Name", name).
		WhereEquals("Version", version).
		BuildSingleOrNull()

	v, err := repository.QueryOne(ctx, r.db, q, args, scanVersion)
	if err != nil {
		return nil, dbErrors.Map(err)
	}
	return &v, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Version], error) {
	page.Normalize(r.pagination)

	qb := filters.Apply(query.NewBuilder(projection, defaultSort)).OrderByFields(page.Sort)

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.Count(ctx, r.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count model versions: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanVersion)
	if err != nil {
		return nil, fmt.Errorf("query model versions: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) SetStage(ctx context.Context, name string, version int, stage Stage) (*Version, error) {
	if _, err := ParseStage(string(stage)); err != nil {
		return nil, err
	}

	q := `
		UPDATE ` + projection.Table() + `
		SET stage = $1
		WHERE name = $2 AND version = $3
		` + returning

	v, err := repository.QueryOne(ctx, r.db, q, []any{string(stage), name, version}, scanVersion)
	if err != nil {
		return nil, dbErrors.WithInvalid(ErrInvalidStage).Map(err)
	}

	r.logger.Info("model version stage changed", "name", name, "version", version, "stage", stage)
	return &v, nil
}

func (r *repo) Open(ctx context.Context, v *Version) (io.ReadCloser, error) {
	rc, err := r.storage.Download(ctx, v.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: artifact %s", ErrNotFound, v.StorageKey)
		}
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	return rc, nil
}

// Download replaces destDir with a directory holding only the version's
// artifact and returns the artifact path. The artifact is staged and decoded
// first; a corrupt blob is reported and destDir is left untouched.
func (r *repo) Download(ctx context.Context, v *Version, destDir string) (string, error) {
	rc, err := r.Open(ctx, v)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	if err := os.MkdirAll(filepath.Dir(filepath.Clean(destDir)), 0o755); err != nil {
		return "", fmt.Errorf("create parent of %s: %w", destDir, err)
	}

	// stage the artifact beside destDir and swap it in only once it decodes
	staging, err := os.MkdirTemp(filepath.Dir(filepath.Clean(destDir)), ".fetch-*")
	if err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)
	if err := os.Chmod(staging, 0o755); err != nil {
		return "", fmt.Errorf("chmod %s: %w", staging, err)
	}

	staged := filepath.Join(staging, model.FileName)
	f, err := os.Create(staged)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", staged, err)
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", staged, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	if _, err := model.LoadFile(staged); err != nil {
		return "", err
	}

	if err := os.RemoveAll(destDir); err != nil {
		return "", fmt.Errorf("clear %s: %w", destDir, err)
	}
	if err := os.Rename(staging, destDir); err != nil {
		return "", fmt.Errorf("install %s: %w", destDir, err)
	}
	path := filepath.Join(destDir, model.FileName)

	r.logger.Info("model version downloaded", "name", v.Name, "version", v.Version, "path", path)
	return path, nil
}
