// Package registry stores versioned model artifacts: version metadata in
// PostgreSQL and artifact documents in blob storage.
package registry

import (
	"context"
	"fmt"
	"io"
	"regexp"

	"github.com/JaimeStill/segmenter/pkg/pagination"
)

// System defines the public contract for model registry operations.
type System interface {
	Handler() *Handler

	Register(ctx context.Context, cmd RegisterCommand) (*Version, error)
	Latest(ctx context.Context, name string) (*Version, error)
	Find(ctx context.Context, name string, version int) (*Version, error)
	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Version], error)
	SetStage(ctx context.Context, name string, version int, stage Stage) (*Version, error)
	Open(ctx context.Context, v *Version) (io.ReadCloser, error)
	Download(ctx context.Context, v *Version, destDir string) (string, error)
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

func validateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid model name %q", name)
	}
	return nil
}
