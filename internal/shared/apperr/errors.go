// Package apperr holds the error categories shared by every module.
//
// Services wrap one of these sentinels with operation context
// (fmt.Errorf("update task %s: %w", id, apperr.ErrNotFound)); the HTTP layer
// maps them to status codes through httputil.ErrorMapper.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a request missing a required field or carrying a malformed value.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an unknown board, group, task, comment or user identifier.
	ErrNotFound = errors.New("not found")
	// ErrAuthentication marks bad credentials or a missing/invalid login token.
	ErrAuthentication = errors.New("not authenticated")
	// ErrAuthorization marks an authenticated caller acting on something it does not own.
	ErrAuthorization = errors.New("not authorized")
	// ErrStore marks a failure of the underlying document store.
	ErrStore = errors.New("store failure")
	// ErrExternalService marks a failure of an external dependency such as the board generator.
	ErrExternalService = errors.New("external service failure")
)

// Validation wraps ErrValidation with a formatted reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound wraps ErrNotFound naming the missing entity kind and id.
func NotFound(kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
}

// Store wraps a driver error as ErrStore while keeping the cause reachable.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}

// Authentication wraps ErrAuthentication with a reason safe to show the caller.
func Authentication(reason string) error {
	return fmt.Errorf("%w: %s", ErrAuthentication, reason)
}

// Authorization wraps ErrAuthorization with a formatted reason.
func Authorization(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAuthorization, fmt.Sprintf(format, args...))
}

// External wraps a failure of a remote dependency as ErrExternalService.
func External(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrExternalService, op, err)
}
