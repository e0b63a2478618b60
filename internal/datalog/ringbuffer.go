package datalog

import (
	"sync"
	"time"

	"github.com/bitbound/bitbound-core/internal/units"
)

// Entry is a single buffered property reading.
type Entry struct {
	Timestamp time.Time
	DeviceID  string
	Property  string
	Value     units.Value
}

// RingBuffer is a fixed-capacity circular buffer of property readings.
// When full, appending overwrites the oldest entry.
//
// All methods are safe for concurrent use.
type RingBuffer struct {
	mu      sync.RWMutex
	entries []Entry
	head    int // next write position
	count   int
}

// defaultCapacity is used when NewRingBuffer is given a non-positive
// capacity.
const defaultCapacity = 100

// NewRingBuffer creates a buffer holding at most capacity entries.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &RingBuffer{
		entries: make([]Entry, capacity),
	}
}

// Append adds an entry, overwriting the oldest when the buffer is full.
func (b *RingBuffer) Append(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.head] = e
	b.head = (b.head + 1) % len(b.entries)
	if b.count < len(b.entries) {
		b.count++
	}
}

// Len returns the number of buffered entries.
func (b *RingBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// Cap returns the buffer capacity.
func (b *RingBuffer) Cap() int {
	return len(b.entries)
}

// Clear removes all entries.
func (b *RingBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.head = 0
	b.count = 0
}

// Latest returns up to n most recent entries, newest first.
func (b *RingBuffer) Latest(n int) []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n > b.count {
		n = b.count
	}
	if n <= 0 {
		return nil
	}

	out := make([]Entry, 0, n)
	idx := b.head - 1
	for i := 0; i < n; i++ {
		if idx < 0 {
			idx += len(b.entries)
		}
		out = append(out, b.entries[idx])
		idx--
	}
	return out
}

// Oldest returns up to n oldest entries, oldest first.
func (b *RingBuffer) Oldest(n int) []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n > b.count {
		n = b.count
	}
	if n <= 0 {
		return nil
	}

	start := 0
	if b.count == len(b.entries) {
		start = b.head
	}

	out := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, b.entries[(start+i)%len(b.entries)])
	}
	return out
}

// All returns every buffered entry, oldest first.
func (b *RingBuffer) All() []Entry {
	return b.Oldest(b.Len())
}

// Since returns entries with Timestamp at or after t, oldest first.
func (b *RingBuffer) Since(t time.Time) []Entry {
	all := b.All()
	out := make([]Entry, 0, len(all))
	for _, e := range all {
		if !e.Timestamp.Before(t) {
			out = append(out, e)
		}
	}
	return out
}

// Average returns the mean SI magnitude of buffered readings for the
// given device property. The second return is false when no matching
// entries exist.
func (b *RingBuffer) Average(deviceID, property string) (float64, bool) {
	sum, n := 0.0, 0
	for _, e := range b.All() {
		if e.DeviceID == deviceID && e.Property == property {
			sum += e.Value.SI()
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Min returns the buffered entry with the smallest SI magnitude for the
// given device property. The second return is false when no matching
// entries exist.
func (b *RingBuffer) Min(deviceID, property string) (Entry, bool) {
	return b.extreme(deviceID, property, func(candidate, best float64) bool {
		return candidate < best
	})
}

// Max returns the buffered entry with the largest SI magnitude for the
// given device property. The second return is false when no matching
// entries exist.
func (b *RingBuffer) Max(deviceID, property string) (Entry, bool) {
	return b.extreme(deviceID, property, func(candidate, best float64) bool {
		return candidate > best
	})
}

func (b *RingBuffer) extreme(deviceID, property string, better func(candidate, best float64) bool) (Entry, bool) {
	var best Entry
	found := false
	for _, e := range b.All() {
		if e.DeviceID != deviceID || e.Property != property {
			continue
		}
		if !found || better(e.Value.SI(), best.Value.SI()) {
			best = e
			found = true
		}
	}
	return best, found
}
