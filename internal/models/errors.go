package models

import (
	"errors"
	"fmt"
)

// Stable error kinds surfaced to the transport layer. Handlers map these to
// status codes with errors.Is / errors.As; nothing below this taxonomy leaks
// unclassified.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrAccessDenied     = errors.New("access denied")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ConflictError reports a short-code collision, custom or generated. Code
// carries the colliding value so the caller can echo it back.
type ConflictError struct {
	Code string
}

func (err ConflictError) Error() string {
	return fmt.Sprintf("code already in use: %s", err.Code)
}
