package auth

import "errors"

var (
	ErrHashing       = errors.New("failed to hash password")
	ErrMalformedHash = errors.New("malformed password hash")
	ErrEmptyPassword = errors.New("password cannot be empty")
)
