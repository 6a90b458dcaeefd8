package logic

import "errors"

// Error kinds returned by the logic layer. Controllers map these to HTTP
// statuses in one place; everything else becomes a 500.
var (
	// ErrNotFound: referenced entity does not exist or is outside the course.
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied: an authorization predicate said no.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrConflict: a uniqueness or single-group invariant would be violated.
	ErrConflict = errors.New("conflict")
	// ErrPolicyViolation: forbidden by course settings or membership
	// protection rules (owner role pinned, no self role edits).
	ErrPolicyViolation = errors.New("policy violation")
	// ErrBadRequest: structurally invalid request despite valid types.
	ErrBadRequest = errors.New("bad request")
)
