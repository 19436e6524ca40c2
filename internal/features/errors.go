package features

import "errors"

var (
	// ErrSourceMissing indicates the raw customer data file does not exist.
	ErrSourceMissing = errors.New("raw data source not found")
	// ErrDataFormat indicates a malformed source row or an invalid derived feature.
	ErrDataFormat = errors.New("invalid data format")
	// ErrUnknownColumn indicates an outlier column name that is not monitored.
	ErrUnknownColumn = errors.New("unknown outlier column")
)
