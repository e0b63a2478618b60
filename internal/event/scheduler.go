package event

import (
	"context"
	"sync"
	"time"

	"github.com/bitbound/bitbound-core/internal/device"
	"github.com/bitbound/bitbound-core/internal/expr"
	"github.com/bitbound/bitbound-core/internal/units"
)

// Scheduler is the cooperative event loop that polls devices, evaluates
// rules and dispatches callbacks.
//
// The tick loop runs on exactly one goroutine at a time: either a
// background goroutine created by Start, or the caller's goroutine under
// Run, never both. Stop signals cooperative cancellation checked between
// ticks; a tick already in progress completes, and no new tick begins
// after Stop returns.
type Scheduler struct {
	registry *Registry
	interval time.Duration
	logger   Logger
	recorder Recorder

	// now is the clock source; replaced in tests.
	now func() time.Time

	mu            sync.Mutex
	running       bool
	stopRequested bool
	dispatching   int
	stopCh        chan struct{}
	doneCh        chan struct{}
}

// NewScheduler creates a scheduler polling the registry's rules every
// tickInterval. A non-positive interval fails with ErrInvalidInterval.
func NewScheduler(registry *Registry, tickInterval time.Duration) (*Scheduler, error) {
	if tickInterval <= 0 {
		return nil, ErrInvalidInterval
	}
	return &Scheduler{
		registry: registry,
		interval: tickInterval,
		logger:   noopLogger{},
		now:      time.Now,
	}, nil
}

// SetLogger sets the logger used for tick-time error reporting.
func (s *Scheduler) SetLogger(logger Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetRecorder sets an optional sink receiving every successful property
// reading taken during ticks.
func (s *Scheduler) SetRecorder(rec Recorder) {
	s.recorder = rec
}

// TickInterval returns the configured tick interval.
func (s *Scheduler) TickInterval() time.Duration {
	return s.interval
}

// Running reports whether the tick loop is currently active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start begins ticking on a background goroutine. It is idempotent: a
// second Start while running is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopRequested = false
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stop, done := s.stopCh, s.doneCh
	s.mu.Unlock()

	s.logger.Info("scheduler started", "tick_interval", s.interval)
	go s.loop(context.Background(), stop, done)
}

// Run executes the tick loop synchronously on the caller's goroutine,
// blocking until Stop is invoked from elsewhere or ctx is cancelled.
//
// Calling Run while the loop is already active (via Start or another
// Run) fails with ErrAlreadyRunning.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	s.stopRequested = false
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stop, done := s.stopCh, s.doneCh
	s.mu.Unlock()

	s.logger.Info("scheduler running", "tick_interval", s.interval)
	s.loop(ctx, stop, done)
	return nil
}

// Stop requests cooperative cancellation and waits for the loop to
// finish its current tick. It is callable from any goroutine, including
// a rule callback, and is a no-op when the loop is not running.
//
// When Stop arrives while a callback is being dispatched it signals
// cancellation and returns without waiting: the caller may be the tick
// goroutine itself, and joining it from inside its own tick would
// deadlock. The loop still exits before the next tick.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	done := s.doneCh
	if !s.stopRequested {
		s.stopRequested = true
		close(s.stopCh)
	}
	dispatching := s.dispatching > 0
	s.mu.Unlock()

	if dispatching {
		return
	}

	<-done
	s.logger.Info("scheduler stopped")
}

// loop ticks until stopped or the context is cancelled.
func (s *Scheduler) loop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(s.now())
		}
	}
}

// readResult caches one device property read within a tick.
type readResult struct {
	value units.Value
	err   error
}

// tickReads coalesces property reads so each distinct (device, property)
// pair is read at most once per tick, no matter how many rules use it.
type tickReads struct {
	scheduler *Scheduler
	at        time.Time
	cache     map[string]map[string]readResult
}

func (tr *tickReads) get(dev device.Device, property string) (units.Value, error) {
	byProp, ok := tr.cache[dev.ID()]
	if !ok {
		byProp = make(map[string]readResult)
		tr.cache[dev.ID()] = byProp
	}
	if res, ok := byProp[property]; ok {
		return res.value, res.err
	}

	value, err := dev.Read(property)
	byProp[property] = readResult{value: value, err: err}
	if err == nil && tr.scheduler.recorder != nil {
		tr.scheduler.recorder.Record(dev.ID(), property, value, tr.at)
	}
	return value, err
}

// tick runs one poll-evaluate-dispatch cycle over a snapshot of the rule
// set. Per-rule failures are logged and never abort the tick.
func (s *Scheduler) tick(now time.Time) {
	rules := s.registry.snapshot()
	if len(rules) == 0 {
		return
	}

	reads := &tickReads{scheduler: s, at: now, cache: make(map[string]map[string]readResult)}

	for _, rl := range rules {
		switch rl.kind {
		case KindThreshold:
			s.tickThreshold(rl, reads, now)
		case KindChange:
			s.tickChange(rl, reads, now)
		case KindInterval:
			s.tickInterval(rl, now)
		}
	}
}

// tickThreshold evaluates an edge-triggered rule. It fires only on the
// rising edge (previous predicate false, current true) and only when the
// debounce window has elapsed; an edge inside the window is dropped, not
// queued. A predicate that stays true does not refire until it has gone
// false and risen again. On evaluation failure the rule is skipped for
// this tick and its state left untouched.
func (s *Scheduler) tickThreshold(rl *rule, reads *tickReads, now time.Time) {
	lookup := func(name string) (units.Value, error) {
		return reads.get(rl.dev, name)
	}

	predicate, err := expr.Evaluate(rl.ast, lookup)
	if err != nil {
		s.logger.Warn("threshold evaluation failed",
			"rule_id", rl.id,
			"device_id", rl.dev.ID(),
			"expression", rl.exprText,
			"error", err,
		)
		return
	}

	if predicate && !rl.lastPredicate && rl.debounceElapsed(now) {
		ev := Event{
			Kind:      KindThreshold,
			RuleID:    rl.id,
			DeviceID:  rl.dev.ID(),
			Timestamp: now,
		}
		// Single-property expressions carry the triggering reading.
		if len(rl.props) == 1 {
			if v, rerr := reads.get(rl.dev, rl.props[0]); rerr == nil {
				ev.Property = rl.props[0]
				ev.New = &v
			}
		}
		s.dispatch(rl, ev)
		rl.lastFiredAt = now
	}
	rl.lastPredicate = predicate
}

// tickChange compares the property against the previous tick's reading.
// The baseline updates every tick regardless of firing; the first
// reading records the baseline without firing.
func (s *Scheduler) tickChange(rl *rule, reads *tickReads, now time.Time) {
	value, err := reads.get(rl.dev, rl.property)
	if err != nil {
		s.logger.Warn("change rule read failed",
			"rule_id", rl.id,
			"device_id", rl.dev.ID(),
			"property", rl.property,
			"error", err,
		)
		return
	}

	if rl.lastValue != nil {
		if changedSince(*rl.lastValue, value) && rl.debounceElapsed(now) {
			old := *rl.lastValue
			current := value
			s.dispatch(rl, Event{
				Kind:      KindChange,
				RuleID:    rl.id,
				DeviceID:  rl.dev.ID(),
				Property:  rl.property,
				Old:       &old,
				New:       &current,
				Timestamp: now,
			})
			rl.lastFiredAt = now
		}
	}

	baseline := value
	rl.lastValue = &baseline
}

// changedSince reports whether two readings differ using the same
// epsilon rule as the != operator. A device that switches unit category
// between ticks counts as changed.
func changedSince(previous, current units.Value) bool {
	equal, err := previous.Equal(current)
	if err != nil {
		return true
	}
	return !equal
}

// tickInterval accumulates tick time and fires when the period is
// reached, then resets the accumulator to zero.
func (s *Scheduler) tickInterval(rl *rule, now time.Time) {
	rl.accumulated += s.interval
	if rl.accumulated < rl.period {
		return
	}

	s.dispatch(rl, Event{
		Kind:      KindInterval,
		RuleID:    rl.id,
		DeviceID:  rl.dev.ID(),
		Timestamp: now,
	})
	rl.lastFiredAt = now
	rl.accumulated = 0
}

// dispatch invokes the rule's callback synchronously, recovering panics
// so a failing callback cannot abort the tick or the loop. The
// dispatching counter lets Stop detect a re-entrant call from inside
// the callback.
func (s *Scheduler) dispatch(rl *rule, ev Event) {
	s.mu.Lock()
	s.dispatching++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.dispatching--
		s.mu.Unlock()
		if rec := recover(); rec != nil {
			s.logger.Error("callback panicked",
				"rule_id", rl.id,
				"device_id", rl.dev.ID(),
				"kind", rl.kind,
				"panic", rec,
			)
		}
	}()
	rl.callback(ev)
}
