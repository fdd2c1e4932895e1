// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

// Common sentinels across store/service/transport layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a uniqueness violation (e.g., username or email taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthorized indicates failed authentication. Token failures wrap it.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidArgument indicates input rejected before reaching storage.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInternal indicates a failed critical section or crypto primitive.
	ErrInternal = errors.New("internal fault")
)

// Token verification failures. All of them satisfy errors.Is(err, ErrUnauthorized).
var (
	ErrTokenInvalid   = fmt.Errorf("token invalid: %w", ErrUnauthorized)
	ErrTokenExpired   = fmt.Errorf("token expired: %w", ErrUnauthorized)
	ErrWrongTokenKind = fmt.Errorf("wrong token kind: %w", ErrUnauthorized)
)
