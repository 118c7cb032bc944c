package images

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidID is returned when a caller-supplied image id is malformed
	ErrInvalidID = errors.New("invalid image id")

	// ErrInvalidStatus is returned when a status is not queued, active or deleted
	ErrInvalidStatus = errors.New("invalid image status")

	// ErrInvalidProperty is returned when a property key is empty or too long
	ErrInvalidProperty = errors.New("invalid image property")

	// ErrInvalidSource is returned when the source reference cannot be parsed
	ErrInvalidSource = errors.New("invalid image source reference")

	// ErrInvalidSize is returned for negative sizes
	ErrInvalidSize = errors.New("invalid image size")
)

// ErrReservedID is returned for ids that collide with a registry route
var ErrReservedID = fmt.Errorf("%w: reserved", ErrInvalidID)
