package domain

import "errors"

var (
	// ErrDuplicateUser indicates that the username or email is already registered.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrInvalidCredentials is returned for both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated indicates that a protected operation was attempted without a session.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrInvalidFeedback indicates that a feedback record violates the storage schema.
	ErrInvalidFeedback = errors.New("invalid feedback")
)
