package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by manager operations.
var (
	ErrEmptyLocation      = errors.New("lifecycle: location cannot be empty")
	ErrEmptyProjectID     = errors.New("lifecycle: project ID cannot be empty")
	ErrInvalidProjectID   = errors.New("lifecycle: invalid project ID")
	ErrNoActiveProject    = errors.New("lifecycle: no active project")
	ErrNotRegistered      = errors.New("lifecycle: project is not registered")
	ErrSingleDocumentMode = errors.New("lifecycle: a project is already loaded in single-document mode")
	ErrWriteRejected      = errors.New("lifecycle: writer rejected the project")
	ErrLoadRejected       = errors.New("lifecycle: validator rejected the load")
)

// ConfigError reports missing collaborator wiring: no reader or writer could
// be resolved for a location. It is fatal by design; the manager returns it
// directly instead of translating it into a failed event.
type ConfigError struct {
	// What names the missing collaborator ("reader" or "writer").
	What string
	// Location is the location the collaborator was requested for.
	Location string
}

// Error returns a formatted error message.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("lifecycle: no %s resolvable for %q", e.What, e.Location)
}

// ValidationResult accumulates validator findings for one gate.
type ValidationResult struct {
	// Errors holds the findings; empty means the gate passed.
	Errors []string
}

// OK reports whether the gate passed.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Add appends a finding.
func (r *ValidationResult) Add(msg string) {
	r.Errors = append(r.Errors, msg)
}

// ValidationError carries a failed ValidationResult on operation returns and
// failed events.
type ValidationError struct {
	Result ValidationResult
}

// Error returns the joined findings.
func (e *ValidationError) Error() string {
	return "lifecycle: validation failed: " + strings.Join(e.Result.Errors, "; ")
}
