package event

import (
	"fmt"
	"sync"
	"time"

	"github.com/bitbound/bitbound-core/internal/device"
	"github.com/bitbound/bitbound-core/internal/expr"
)

// Registry owns the set of registered rules in registration order.
//
// Registration and unregistration are safe from any goroutine while the
// scheduler loop runs. Unregistration is deferred: the rule is marked and
// dropped at the next tick boundary, so a tick already in progress still
// evaluates (and may still fire) it. Registering a rule whose referenced
// property does not exist on the device is not an error here; the
// device's property set may change, so the mismatch surfaces as an
// evaluation error at the tick where the rule is first evaluated.
//
// All public methods are thread-safe.
type Registry struct {
	mu     sync.Mutex
	rules  []*rule
	byID   map[RuleID]*rule
	logger Logger
}

// NewRegistry creates an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[RuleID]*rule),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if logger != nil {
		r.logger = logger
	}
}

// RegisterThreshold compiles the expression eagerly and registers an
// edge-triggered rule. A malformed expression fails here with a
// *expr.ParseError, never silently at evaluation time.
//
// The debounce window is the minimum elapsed time between consecutive
// firings; a rising edge inside the window is dropped, not deferred.
func (r *Registry) RegisterThreshold(dev device.Device, expression string, cb Callback, debounce time.Duration) (RuleID, error) {
	if dev == nil {
		return "", ErrNilDevice
	}
	if cb == nil {
		return "", ErrNilCallback
	}

	ast, err := expr.Parse(expression)
	if err != nil {
		return "", fmt.Errorf("compiling threshold expression: %w", err)
	}

	rl := &rule{
		id:       GenerateRuleID(),
		kind:     KindThreshold,
		dev:      dev,
		callback: cb,
		debounce: debounce,
		ast:      ast,
		exprText: expression,
		props:    expr.Properties(ast),
	}
	r.add(rl)

	r.logger.Debug("threshold rule registered",
		"rule_id", rl.id,
		"device_id", dev.ID(),
		"expression", expression,
	)
	return rl.id, nil
}

// RegisterChange registers a rule that fires whenever the property's
// value differs from the previous tick's reading. The first reading only
// records the baseline and never fires.
func (r *Registry) RegisterChange(dev device.Device, property string, cb Callback, debounce time.Duration) (RuleID, error) {
	if dev == nil {
		return "", ErrNilDevice
	}
	if cb == nil {
		return "", ErrNilCallback
	}
	if property == "" {
		return "", ErrEmptyProperty
	}

	rl := &rule{
		id:       GenerateRuleID(),
		kind:     KindChange,
		dev:      dev,
		callback: cb,
		debounce: debounce,
		property: property,
	}
	r.add(rl)

	r.logger.Debug("change rule registered",
		"rule_id", rl.id,
		"device_id", dev.ID(),
		"property", property,
	)
	return rl.id, nil
}

// RegisterInterval registers a rule that fires every time the accumulated
// tick time reaches period. The accumulator resets to zero on firing
// rather than anchoring to the wall clock, which prevents drift but means
// firing can lag the nominal period by up to one tick interval.
func (r *Registry) RegisterInterval(dev device.Device, period time.Duration, cb Callback) (RuleID, error) {
	if dev == nil {
		return "", ErrNilDevice
	}
	if cb == nil {
		return "", ErrNilCallback
	}
	if period <= 0 {
		return "", ErrInvalidPeriod
	}

	rl := &rule{
		id:       GenerateRuleID(),
		kind:     KindInterval,
		dev:      dev,
		callback: cb,
		period:   period,
	}
	r.add(rl)

	r.logger.Debug("interval rule registered",
		"rule_id", rl.id,
		"device_id", dev.ID(),
		"period", period,
	)
	return rl.id, nil
}

// Unregister marks a rule for removal at the next tick boundary. The
// rule still evaluates, and may still fire, for a tick already in
// progress.
func (r *Registry) Unregister(id RuleID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rl, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRuleNotFound, id)
	}
	rl.removed = true
	delete(r.byID, id)

	r.logger.Debug("rule unregistered", "rule_id", id)
	return nil
}

// DetachDevice marks every rule owned by the device for removal at the
// next tick boundary. Returns the number of rules removed.
func (r *Registry) DetachDevice(deviceID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, rl := range r.rules {
		if !rl.removed && rl.dev.ID() == deviceID {
			rl.removed = true
			delete(r.byID, rl.id)
			n++
		}
	}
	if n > 0 {
		r.logger.Debug("device rules unregistered", "device_id", deviceID, "count", n)
	}
	return n
}

// Count returns the number of active (not yet removed) rules.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// add appends a rule preserving registration order.
func (r *Registry) add(rl *rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rl)
	r.byID[rl.id] = rl
}

// snapshot compacts pending removals and returns a consistent copy of the
// active rule list in registration order. Called by the scheduler at each
// tick boundary; registrations made after the snapshot take effect the
// next tick.
func (r *Registry) snapshot() []*rule {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.rules[:0]
	for _, rl := range r.rules {
		if !rl.removed {
			kept = append(kept, rl)
		}
	}
	// Release references past the compaction point.
	for i := len(kept); i < len(r.rules); i++ {
		r.rules[i] = nil
	}
	r.rules = kept

	out := make([]*rule, len(kept))
	copy(out, kept)
	return out
}
