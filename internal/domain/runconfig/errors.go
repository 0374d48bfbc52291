package runconfig

import "errors"

var (
	// ErrNotFound is returned by callers that require a configuration to exist.
	ErrNotFound = errors.New("run configuration not found")

	// ErrUnknownMessage is returned for editor messages other than save/cancel.
	ErrUnknownMessage = errors.New("unknown editor message")
)
