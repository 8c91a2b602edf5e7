package documents

import "errors"

var (
	// ErrNotFound signals a missing or foreign-owned document.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidInput signals a request the pipeline cannot start on.
	ErrInvalidInput = errors.New("invalid input")
)
