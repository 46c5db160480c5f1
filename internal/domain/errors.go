package domain

import "errors"

var (
	// ErrInvalidFilter signals a malformed screening filter.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrInvalidRequest signals invalid screening parameters.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrPresetNotFound signals an unknown preset name.
	ErrPresetNotFound = errors.New("preset not found")
	// ErrScannerError signals an upstream scanner failure.
	ErrScannerError = errors.New("scanner error")
	// ErrScanTimeout signals an upstream scanner timeout.
	ErrScanTimeout = errors.New("request timeout")
)
