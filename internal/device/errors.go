package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrReadFailed) {
//	    // skip this reading, keep polling
//	}
var (
	// ErrNotFound is returned when a device ID is not attached.
	ErrNotFound = errors.New("device: not found")

	// ErrExists is returned when attaching a device whose ID is taken.
	ErrExists = errors.New("device: already attached")

	// ErrUnknownProperty is returned when a device does not report the
	// requested property.
	ErrUnknownProperty = errors.New("device: unknown property")

	// ErrReadFailed is returned when a device cannot produce a value.
	ErrReadFailed = errors.New("device: read failed")
)
