package domain

import "errors"

// Sentinel errors raised by the core services. The transport layer maps them
// to HTTP status codes in the central error handler.
var (
	// ErrInvalidCredentials covers every login failure: unknown email, missing
	// password hash, or password mismatch. Callers must not be able to tell
	// which factor was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken signals a duplicate email at registration. This is a
	// conflict, not an authentication failure.
	ErrEmailTaken = errors.New("email already registered")

	// ErrDocumentTaken signals a duplicate (document type, document number) pair.
	ErrDocumentTaken = errors.New("document already registered")

	ErrUserNotFound      = errors.New("user not found")
	ErrUserNotPersisted  = errors.New("user has no assigned id")
	ErrBirthDateInFuture = errors.New("birth date must be in the past")
	ErrEmptyPassword     = errors.New("password must not be empty")
)
