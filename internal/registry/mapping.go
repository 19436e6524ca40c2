package registry

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/segmenter/pkg/query"
	"github.com/JaimeStill/segmenter/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "model_versions", "v").
	Project("id", "ID").
	Project("name", "Name").
	Project("version", "Version").
	Project("stage", "Stage").
	Project("run_id", "RunID").
	Project("storage_key", "StorageKey").
	Project("k", "K").
	Project("silhouette", "Silhouette").
	Project("calinski_harabasz", "CalinskiHarabasz").
	Project("params", "Params").
	Project("created_at", "CreatedAt")

const returning = `RETURNING id, name, version, stage, run_id, storage_key, k,
		silhouette, calinski_harabasz, params, created_at`

var defaultSort = query.SortField{
	Field:      "Version",
	Descending: true,
}

// Filters contains optional filtering criteria for version queries.
// Nil and empty fields are ignored.
type Filters struct {
	Name          *string    `json:"name,omitempty"`
	Stages        []Stage    `json:"stages,omitempty"`
	RunID         *uuid.UUID `json:"run_id,omitempty"`
	K             *int       `json:"k,omitempty"`
	MinSilhouette *float64   `json:"min_silhouette,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	stages := make([]any, len(f.Stages))
	for i, st := range f.Stages {
		stages[i] = string(st)
	}

	return b.
		WhereEquals("Name", f.Name).
		WhereIn("Stage", stages).
		WhereEquals("RunID", f.RunID).
		WhereEquals("K", f.K).
		WhereCompare("Silhouette", query.OpGreaterOrEqual, f.MinSilhouette)
}

// FiltersFromQuery extracts filter values from URL query parameters:
// name, stage (comma-separated), run_id, k and min_silhouette.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}

	if s := values.Get("stage"); s != "" {
		for part := range strings.SplitSeq(s, ",") {
			st, err := ParseStage(strings.TrimSpace(part))
			if err != nil {
				return f, err
			}
			f.Stages = append(f.Stages, st)
		}
	}

	if s := values.Get("run_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return f, fmt.Errorf("%w: run_id: %w", ErrInvalidFilter, err)
		}
		f.RunID = &id
	}

	if s := values.Get("k"); s != "" {
		k, err := strconv.Atoi(s)
		if err != nil || k < 1 {
			return f, fmt.Errorf("%w: k must be a positive integer", ErrInvalidFilter)
		}
		f.K = &k
	}

	if s := values.Get("min_silhouette"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < -1 || v > 1 {
			return f, fmt.Errorf("%w: min_silhouette must be in [-1, 1]", ErrInvalidFilter)
		}
		f.MinSilhouette = &v
	}

	return f, nil
}

func scanVersion(s repository.Scanner) (Version, error) {
	var v Version
	var params []byte

	err := s.Scan(
		&v.ID,
		&v.Name,
		&v.Version,
		&v.Stage,
		&v.RunID,
		&v.StorageKey,
		&v.K,
		&v.Silhouette,
		&v.CalinskiHarabasz,
		&params,
		&v.CreatedAt,
	)
	if err != nil {
		return v, err
	}

	if len(params) > 0 {
		v.Params = params
	}
	return v, nil
}
