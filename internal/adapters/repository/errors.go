package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrOpen          = errors.New("open store failed")
)
