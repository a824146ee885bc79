package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Media acquisition errors, handled locally before a submission starts
	ErrInvalidMedia       = fmt.Errorf("invalid media file")
	ErrCaptureUnavailable = fmt.Errorf("camera capture unavailable")

	// Submission errors, terminate the active submission
	ErrTransport = fmt.Errorf("transport failure")
	ErrService   = fmt.Errorf("inspection service error")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrSessionNotFound  = fmt.Errorf("session not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
