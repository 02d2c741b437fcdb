// Package common defines shared constants and sentinel errors used across
// the betterimg client layers. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal    = errors.New("internal error")
	ErrorPersistence = errors.New("persistence failure")
	ErrorUnavailable = errors.New("service unavailable")

	// Local validation errors. These never reach a collaborator. The
	// specific values wrap ErrorValidation so errors.Is matches either.
	ErrorValidation       = errors.New("validation error")
	ErrorPasswordMismatch = fmt.Errorf("%w: passwords do not match", ErrorValidation)
	ErrorEmptyFields      = fmt.Errorf("%w: email and password are required", ErrorValidation)

	// Auth errors. ErrorInvalidCredentials is deliberately generic: the
	// store must not reveal whether the email exists or the password is
	// wrong.
	ErrorInvalidCredentials = errors.New("invalid email or password")
	ErrorEmailTaken         = errors.New("email already registered")
	ErrInvalidToken         = errors.New("invalid token")
	ErrorNoActiveSession    = errors.New("no active session")
)
