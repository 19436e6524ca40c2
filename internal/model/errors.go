package model

import "errors"

var (
	// ErrNotFound indicates no artifact exists at the given location.
	ErrNotFound = errors.New("model artifact not found")
	// ErrCorrupt indicates an artifact that cannot be decoded or whose
	// parameters are inconsistent.
	ErrCorrupt = errors.New("model artifact corrupt")
	// ErrShape indicates input whose width does not match the fitted feature count.
	ErrShape = errors.New("feature dimension mismatch")
	// ErrNonFinite indicates a feature value that is NaN or infinite.
	ErrNonFinite = errors.New("non-finite feature value")
)
