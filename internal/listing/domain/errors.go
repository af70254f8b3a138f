package domain

import "errors"

var (
	ErrNotFound          = errors.New("listing not found")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrValidation        = errors.New("invalid listing data")
	ErrForbidden         = errors.New("caller is not the owner of this listing")
)
