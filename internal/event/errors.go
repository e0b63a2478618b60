package event

import "errors"

// Domain errors for the event package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, event.ErrRuleNotFound) {
//	    // rule was already unregistered
//	}
var (
	// ErrRuleNotFound is returned when a rule ID does not exist.
	ErrRuleNotFound = errors.New("event: rule not found")

	// ErrNilDevice is returned when registering a rule without a device.
	ErrNilDevice = errors.New("event: nil device")

	// ErrNilCallback is returned when registering a rule without a callback.
	ErrNilCallback = errors.New("event: nil callback")

	// ErrEmptyProperty is returned when a change rule names no property.
	ErrEmptyProperty = errors.New("event: empty property name")

	// ErrInvalidPeriod is returned when an interval rule's period is zero.
	ErrInvalidPeriod = errors.New("event: interval period must be positive")

	// ErrInvalidInterval is returned when a scheduler's tick interval is
	// not positive.
	ErrInvalidInterval = errors.New("event: tick interval must be positive")

	// ErrAlreadyRunning is returned by Run when the scheduler loop is
	// already executing on another goroutine.
	ErrAlreadyRunning = errors.New("event: scheduler already running")
)
