package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/bitbound/bitbound-core/internal/device"
	"github.com/bitbound/bitbound-core/internal/expr"
	"github.com/bitbound/bitbound-core/internal/units"
)

// RuleID uniquely identifies a registered rule.
type RuleID string

// GenerateRuleID creates a new unique rule identifier.
func GenerateRuleID() RuleID {
	return RuleID(uuid.New().String())
}

// RuleKind distinguishes the three rule state machines.
type RuleKind string

const (
	KindThreshold RuleKind = "threshold"
	KindChange    RuleKind = "change"
	KindInterval  RuleKind = "interval"
)

// Event is the payload delivered to rule callbacks.
//
// Old and New are set for change events (previous and current reading);
// New alone is set for threshold events when the triggering expression
// references a single property. Interval events carry neither.
type Event struct {
	Kind      RuleKind
	RuleID    RuleID
	DeviceID  string
	Property  string
	Old       *units.Value
	New       *units.Value
	Timestamp time.Time
}

// Callback is invoked synchronously on the tick goroutine when a rule
// fires. Return values are not modelled; a panicking callback is
// recovered per rule and reported through the scheduler's logger without
// aborting the tick. A slow callback delays evaluation of subsequent
// rules within the same tick.
type Callback func(Event)

// Logger defines the logging interface used by the Registry and
// Scheduler. This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Recorder receives every successful property reading taken during a
// tick. It backs the optional data logging pipeline.
type Recorder interface {
	Record(deviceID, property string, value units.Value, at time.Time)
}

// rule is a registered rule plus its mutable firing state. State fields
// are touched only by the scheduler during ticks; the removed flag is
// the only field written from other goroutines, under the registry lock.
type rule struct {
	id       RuleID
	kind     RuleKind
	dev      device.Device
	callback Callback
	debounce time.Duration

	// Threshold
	ast      expr.Node
	exprText string
	props    []string // distinct properties referenced by ast

	// Change
	property string

	// Interval
	period time.Duration

	// Firing state (scheduler-owned)
	lastPredicate bool
	lastValue     *units.Value
	accumulated   time.Duration
	lastFiredAt   time.Time

	// Deferred removal, applied at the next tick boundary.
	removed bool
}

// debounceElapsed reports whether the debounce window has passed since
// the rule last fired. A rule that has never fired is always eligible.
func (r *rule) debounceElapsed(now time.Time) bool {
	if r.lastFiredAt.IsZero() {
		return true
	}
	return now.Sub(r.lastFiredAt) >= r.debounce
}
