package service

import "errors"

// Business error taxonomy. Handlers map these onto HTTP status codes in
// exactly one place; wrap with fmt.Errorf("%w: reason", ...) to attach a
// human-readable reason.
var (
	// ErrUnauthenticated means the bearer token is missing or invalid (401).
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden means the caller is authenticated but not entitled (403).
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound covers both absent entities and access denied without
	// leaking existence (404).
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument means a malformed request body or parameter (400).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrShareLinkExpired means the share token is past its expiry (410).
	ErrShareLinkExpired = errors.New("share link expired")

	// ErrConflict means a duplicate unique field, e.g. username (409).
	ErrConflict = errors.New("conflict")
)
