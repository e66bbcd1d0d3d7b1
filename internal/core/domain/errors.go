package domain

import "errors"

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrRegistrationRejected = errors.New("registration rejected")
	ErrUserExists           = errors.New("user already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrForbidden            = errors.New("access forbidden")
	ErrUnknownRole          = errors.New("unknown role")

	// ErrBackendUnavailable means the academy API could not be reached at all.
	ErrBackendUnavailable = errors.New("academy api unavailable")
	// ErrBackendFailure means the academy API answered with a server error or
	// an unusable payload.
	ErrBackendFailure = errors.New("academy api failure")

	ErrSessionNotFound = errors.New("session not found")
	ErrStorageCorrupt  = errors.New("session entry corrupt")
)
