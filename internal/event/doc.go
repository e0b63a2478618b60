// Package event provides the rule registry and tick scheduler for
// BitBound Core: the runtime that turns declared threshold, change and
// interval rules into callback invocations.
//
// Architecture:
//
//	┌────────────────────────────────────────────────────────┐
//	│                Scheduler (scheduler.go)                 │
//	│  One tick loop per instance (Start/Stop or Run)         │
//	│  ┌──────────────┐     ┌───────────────┐               │
//	│  │   Registry   │◀────│  Register*/   │               │
//	│  │(registry.go) │     │  Unregister   │  (any thread) │
//	│  └──────────────┘     └───────────────┘               │
//	│        │ snapshot at tick start                        │
//	│        ▼                                               │
//	│  ┌──────────────────────────────────────────────┐     │
//	│  │  Tick pipeline                                │     │
//	│  │  1. Snapshot rule set (removals applied)      │     │
//	│  │  2. Read each device property once            │     │
//	│  │  3. Evaluate rules in registration order      │     │
//	│  │  4. Edge/debounce/interval state machines     │     │
//	│  │  5. Dispatch callbacks synchronously          │     │
//	│  └──────────────────────────────────────────────┘     │
//	└────────────────────────────────────────────────────────┘
//
// # Rule Kinds
//
//   - Threshold: edge-triggered boolean expression over device
//     properties; fires on the rising edge only, gated by a debounce
//     window.
//   - Change: fires when a single property's value differs from the
//     previous tick's reading (epsilon-aware), same debounce gate.
//   - Interval: fires every time the accumulated tick time reaches the
//     configured period.
//
// # Concurrency
//
// The tick loop runs on exactly one goroutine at a time: either the
// background goroutine created by Start or the caller's goroutine under
// Run, never both. Registration and unregistration are safe from any
// goroutine while the loop runs; each tick operates on a snapshot taken
// at tick start, so registrations take effect the next tick and
// unregistrations are deferred to the next tick boundary.
//
// Tick-time failures (device reads, evaluation, callbacks) are recovered
// per rule, logged, and never abort the tick or the loop.
package event
