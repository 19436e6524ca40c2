package segments

import (
	"errors"
	"net/http"
)

// Domain errors for prediction operations.
var (
	ErrUnavailable = errors.New("model not loaded")
	ErrValidation  = errors.New("invalid prediction request")
	ErrPrediction  = errors.New("prediction failed")
)

// MapHTTPStatus maps prediction errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrUnavailable) {
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
