package registry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/segmenter/internal/model"
)

// Stage is a model version's lifecycle stage.
type Stage string

// Lifecycle stages.
const (
	StageNone       Stage = "None"
	StageStaging    Stage = "Staging"
	StageProduction Stage = "Production"
	StageArchived   Stage = "Archived"
)

// Stages lists every valid stage.
var Stages = []Stage{StageNone, StageStaging, StageProduction, StageArchived}

// ParseStage validates s as a Stage.
func ParseStage(s string) (Stage, error) {
	for _, st := range Stages {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStage, s)
}

// Version is a registered model version.
type Version struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Version          int             `json:"version"`
	Stage            Stage           `json:"stage"`
	RunID            uuid.UUID       `json:"run_id"`
	StorageKey       string          `json:"storage_key"`
	K                int             `json:"k"`
	Silhouette       float64         `json:"silhouette"`
	CalinskiHarabasz float64         `json:"calinski_harabasz"`
	Params           json.RawMessage `json:"params"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Tag returns the version tag stamped on the version's artifact.
func (v *Version) Tag() string {
	return model.VersionTag(v.Name, v.Version)
}

// RegisterCommand registers an artifact under a model name.
type RegisterCommand struct {
	Name     string
	Artifact *model.Artifact
}

// StageCommand moves a version to a new lifecycle stage.
type StageCommand struct {
	Stage string `json:"stage" validate:"required,oneof=None Staging Production Archived"`
}

// StorageKey returns the blob key of a version's artifact.
func StorageKey(name string, version int) string {
	return fmt.Sprintf("models/%s/v%d/%s", name, version, model.FileName)
}
