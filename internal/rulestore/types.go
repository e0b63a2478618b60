package rulestore

import (
	"fmt"
	"time"

	"github.com/bitbound/bitbound-core/internal/event"
)

// RuleRecord is a persisted rule declaration.
//
// Expression is set for threshold rules, Property for change rules and
// Period for interval rules; the other fields are zero.
type RuleRecord struct {
	ID       event.RuleID
	Kind     event.RuleKind
	DeviceID string

	Expression string
	Property   string
	Period     time.Duration
	Debounce   time.Duration

	CreatedAt time.Time
}

// Validate checks the record is internally consistent for its kind.
func (r RuleRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRecord)
	}
	if r.DeviceID == "" {
		return fmt.Errorf("%w: empty device id", ErrInvalidRecord)
	}
	switch r.Kind {
	case event.KindThreshold:
		if r.Expression == "" {
			return fmt.Errorf("%w: threshold rule without expression", ErrInvalidRecord)
		}
	case event.KindChange:
		if r.Property == "" {
			return fmt.Errorf("%w: change rule without property", ErrInvalidRecord)
		}
	case event.KindInterval:
		if r.Period <= 0 {
			return fmt.Errorf("%w: interval rule without positive period", ErrInvalidRecord)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRecord, r.Kind)
	}
	return nil
}
