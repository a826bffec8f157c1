// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"errors"
	"fmt"

	"github.com/pdiddy/content-engine/pkg/types"
)

// ErrorKind classifies a backend call failure per the endpoint contract.
type ErrorKind string

const (
	KindTimeout        ErrorKind = "timeout"
	KindUnavailable    ErrorKind = "unavailable"
	KindInvalidRequest ErrorKind = "invalid_request"
)

// CallError is a classified failure from a single backend call.
type CallError struct {
	// Kind is the contract-level error classification.
	Kind ErrorKind

	// Message is the backend's human-readable description.
	Message string

	// Err is the underlying transport error, if any.
	Err error
}

func (e *CallError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("backend %s: %v", e.Kind, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// BackendUnavailableError signals that the multi-agent backend could not
// serve the request. It is raised at most once per request and triggers
// the whole-request demotion to direct mode.
type BackendUnavailableError struct {
	// Mode is the backend mode the failure occurred in.
	Mode types.BackendMode

	// Role is the agent role whose call hit the failure.
	Role types.Role

	// Err is the classified call failure.
	Err error
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("%s backend unavailable during %s call: %v", e.Mode, e.Role, e.Err)
}

func (e *BackendUnavailableError) Unwrap() error { return e.Err }

// IsBackendUnavailable reports whether err carries a BackendUnavailableError.
func IsBackendUnavailable(err error) bool {
	var target *BackendUnavailableError
	return errors.As(err, &target)
}

// availabilityFailure reports whether err indicates the backend cannot be
// reached at all (connection failure, per-call timeout exhaustion, or an
// explicit unavailable signal), as opposed to a failure of this particular
// request.
func availabilityFailure(err error) bool {
	var call *CallError
	if errors.As(err, &call) {
		return call.Kind == KindUnavailable || call.Kind == KindTimeout
	}
	return false
}
