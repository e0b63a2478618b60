package rulestore

import "errors"

// Sentinel errors for rule persistence.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, rulestore.ErrNotFound) {
//	    // rule declaration does not exist
//	}
var (
	// ErrNotFound indicates the rule declaration does not exist.
	ErrNotFound = errors.New("rulestore: rule not found")

	// ErrExists indicates a declaration with the same ID already exists.
	ErrExists = errors.New("rulestore: rule already exists")

	// ErrInvalidRecord indicates the record fails validation.
	ErrInvalidRecord = errors.New("rulestore: invalid rule record")
)
