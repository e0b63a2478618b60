package units

import (
	"errors"
	"fmt"
)

// Domain errors for the units package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, units.ErrUnknownUnit) {
//	    // handle unrecognised suffix
//	}
var (
	// ErrNoNumber is returned when a literal lacks a numeric prefix.
	ErrNoNumber = errors.New("units: missing numeric value")

	// ErrUnknownUnit is returned when a unit suffix is not recognised.
	ErrUnknownUnit = errors.New("units: unknown unit")
)

// IncompatibleUnitsError reports a conversion or comparison between two
// unrelated unit categories.
type IncompatibleUnitsError struct {
	From Category
	To   Category
}

// Error implements the error interface.
func (e *IncompatibleUnitsError) Error() string {
	return fmt.Sprintf("units: incompatible categories %s and %s", e.From, e.To)
}
