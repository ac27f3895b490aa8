package domain

import "errors"

var (
	// ErrDuplicateEmail is returned when a registration collides with an
	// existing account on the normalized email.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserNotFound is returned by lookups that miss.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmptyText is returned when an analysis is requested with neither
	// text nor a file.
	ErrEmptyText = errors.New("no text provided or file is empty")

	// ErrUnreachable signals a request that never produced a usable server
	// response: connection refused, timeout, or a malformed body.
	ErrUnreachable = errors.New("backend connection error")
)
