package daho

import "errors"

var (
	// ErrMissingFields is an exported constant or variable used by the authentication engine.
	ErrMissingFields = errors.New("missing required fields")
	// ErrPasswordMismatch is an exported constant or variable used by the authentication engine.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrPasswordPolicy is an exported constant or variable used by the authentication engine.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrPasswordReuse is an exported constant or variable used by the authentication engine.
	ErrPasswordReuse = errors.New("new password must be different from current password")

	// ErrDuplicateIdentity wraps every registration collision. The text is
	// deliberately generic: it must not disclose whether the email or the
	// username collided.
	ErrDuplicateIdentity = errors.New("registration failed")

	// ErrInvalidCredentials covers both "no such user" and "wrong password".
	// Callers must surface one fixed message and status for both cases.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrAccountLocked is an exported constant or variable used by the authentication engine.
	ErrAccountLocked = errors.New("too many failed attempts")

	// ErrHashingFailure is an exported constant or variable used by the authentication engine.
	ErrHashingFailure = errors.New("password hashing failed")
	// ErrEngineNotReady is an exported constant or variable used by the authentication engine.
	ErrEngineNotReady = errors.New("engine not fully initialized")
)
