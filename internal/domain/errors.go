package domain

import "fmt"

// ValidationError rejects a malformed job spec before any work starts.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConfigurationError means no connector is registered for the platform.
type ConfigurationError struct {
	Platform Platform
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unknown platform %q: no connector registered", e.Platform)
}

// SourceError is a failed connector call on a known platform.
type SourceError struct {
	Platform Platform
	Op       string
	Err      error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Platform, e.Op, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

func NewSourceError(platform Platform, op string, err error) *SourceError {
	return &SourceError{Platform: platform, Op: op, Err: err}
}

// PersistenceError is a single item that could not be stored.
type PersistenceError struct {
	Platform   Platform
	PlatformID string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s/%s: %v", e.Platform, e.PlatformID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
