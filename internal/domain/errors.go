package domain

import "errors"

var (
	ErrDuplicateEmail     = errors.New("contact email already exists")
	ErrUserExists         = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrInvalidToken       = errors.New("invalid token")
	ErrStorageDisabled    = errors.New("avatar storage not configured")
)
