// SPDX-FileCopyrightText: 2025 The Wingboard Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import (
	"errors"
	"fmt"
)

// Precondition violations. These are handled synchronously by the reducer and
// surface as a transient status line, never as a failed operation.
var (
	// ErrOperationInFlight is returned when an operation of the same kind is
	// already running for the package. The request is rejected, not queued.
	ErrOperationInFlight = errors.New("operation already running for this package")
	// ErrNoSelection is returned when an action needs a selected package and
	// the visible list is empty.
	ErrNoSelection = errors.New("no package selected")
	// ErrEmptyQuery is returned when a search is submitted with no text.
	ErrEmptyQuery = errors.New("search query is empty")
)

// BackendErrorKind classifies backend failures for display and testing.
type BackendErrorKind int

// Backend failure classes.
const (
	// BackendSpawnFailed means the winget process could not be started.
	BackendSpawnFailed BackendErrorKind = iota
	// BackendExitFailure means winget exited non-zero with no usable output.
	BackendExitFailure
	// BackendParseFailed means winget produced output the parser rejected.
	BackendParseFailed
	// BackendTimeout means the call exceeded the configured deadline.
	BackendTimeout
)

// String returns a short label for the failure class.
func (k BackendErrorKind) String() string {
	switch k {
	case BackendSpawnFailed:
		return "spawn failed"
	case BackendExitFailure:
		return "exit failure"
	case BackendParseFailed:
		return "parse failed"
	default:
		return "timeout"
	}
}

// BackendError is the single error type the backend port returns. It carries
// a human-readable cause; the interactive loop turns it into a failed
// Operation and keeps running.
type BackendError struct {
	Kind   BackendErrorKind
	Op     string // winget verb, e.g. "list", "install"
	Err    error
	Output string // trailing stderr/stdout, trimmed, may be empty
}

func (e *BackendError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("winget %s: %s: %s", e.Op, e.Kind, e.Output)
	}

	if e.Err != nil {
		return fmt.Sprintf("winget %s: %s: %v", e.Op, e.Kind, e.Err)
	}

	return fmt.Sprintf("winget %s: %s", e.Op, e.Kind)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// NewBackendError builds a BackendError for the given winget verb.
func NewBackendError(kind BackendErrorKind, op string, err error, output string) *BackendError {
	return &BackendError{Kind: kind, Op: op, Err: err, Output: output}
}

// IsBackendError reports whether err is a BackendError of the given kind.
func IsBackendError(err error, kind BackendErrorKind) bool {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Kind == kind
	}

	return false
}
