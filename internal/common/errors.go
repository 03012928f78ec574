// Package common defines shared sentinel errors and small helpers used across
// client and server layers of Vitrine. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Storage-level errors. "No matching document" is not an error anywhere
	// in the store layer: absence is a normal return value. ErrStorageFailure
	// means the persistence substrate itself broke (I/O fault, serialization
	// error) and must be surfaced to the user, never treated as an empty
	// result.
	ErrStorageFailure = errors.New("storage failure")

	// Account errors. ErrInvalidCredentials deliberately covers both
	// "unknown email" and "wrong password" so callers cannot enumerate
	// accounts.
	ErrDuplicateAccount   = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrLastAdmin          = errors.New("cannot revoke admin role from the last admin")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Connectivity errors, used to classify failed remote probes.
	ErrTimeout            = errors.New("request timed out")
	ErrNetworkUnreachable = errors.New("network unreachable")
	ErrRemoteUnavailable  = errors.New("remote backend error")

	// Validation errors for the content API.
	ErrValidation = errors.New("validation error")
)
