package filedrop

import "errors"

var (
	// ErrNotFound is returned when a stored file does not exist or cannot be opened
	ErrNotFound = errors.New("not found")
	// ErrInvalidName is returned when a requested or storage name fails validation
	ErrInvalidName = errors.New("invalid name")
)
