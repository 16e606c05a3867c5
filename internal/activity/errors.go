package activity

import "errors"

var (
	// ErrInvalidWindow is returned when an explicit window start lies after now
	ErrInvalidWindow = errors.New("invalid window: start is after now")
	// ErrSourceUnconfigured may be returned by a source that has no target configured.
	// The collector reports it as SourceNotConfigured rather than a failure.
	ErrSourceUnconfigured = errors.New("source not configured")
)
