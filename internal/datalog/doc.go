// Package datalog provides the in-memory data logging pipeline for
// BitBound Core: a fixed-capacity ring buffer of property readings plus
// a Recorder that feeds the buffer from scheduler ticks and forwards
// readings to an optional time-series sink.
//
// Architecture:
//
//	Scheduler tick ──▶ Recorder.Record ──▶ RingBuffer (bounded history)
//	                         │
//	                         └──────────▶ MetricWriter (e.g. InfluxDB)
//
// The ring buffer keeps the most recent N readings and overwrites the
// oldest entry when full, giving bounded memory regardless of uptime.
// Aggregates (Average, Min, Max) operate over the buffered window only.
//
// All types in this package are safe for concurrent use.
package datalog
