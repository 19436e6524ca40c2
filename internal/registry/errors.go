package registry

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/segmenter/pkg/repository"
	"github.com/JaimeStill/segmenter/pkg/storage"
)

// Domain errors for registry operations.
var (
	ErrNotFound      = errors.New("model version not found")
	ErrDuplicate     = errors.New("model version already exists")
	ErrInvalidStage  = errors.New("invalid model stage")
	ErrBadVersion    = errors.New("version must be a positive integer")
	ErrInvalidFilter = errors.New("invalid filter")
)

var dbErrors = repository.Errors{NotFound: ErrNotFound, Duplicate: ErrDuplicate}

// MapHTTPStatus maps registry domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidStage) ||
		errors.Is(err, ErrBadVersion) ||
		errors.Is(err, ErrInvalidFilter) {
		return http.StatusBadRequest
	}
	return storage.MapHTTPStatus(err)
}
