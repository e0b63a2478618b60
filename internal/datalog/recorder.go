package datalog

import (
	"time"

	"github.com/bitbound/bitbound-core/internal/units"
)

// MetricWriter is the downstream sink for recorded readings. The
// InfluxDB client satisfies this; writes are expected to be
// non-blocking.
type MetricWriter interface {
	WritePropertyReading(deviceID, property string, si float64, at time.Time)
}

// Recorder buffers every reading it receives and optionally forwards it
// to a MetricWriter. It satisfies the scheduler's Recorder interface and
// is called from the tick goroutine, so both paths must stay cheap.
type Recorder struct {
	buffer *RingBuffer
	writer MetricWriter
}

// NewRecorder creates a recorder over the given buffer. writer may be
// nil, in which case readings are buffered only.
func NewRecorder(buffer *RingBuffer, writer MetricWriter) *Recorder {
	return &Recorder{
		buffer: buffer,
		writer: writer,
	}
}

// Record appends the reading to the ring buffer and forwards its
// SI-normalised magnitude to the metric writer.
func (r *Recorder) Record(deviceID, property string, value units.Value, at time.Time) {
	r.buffer.Append(Entry{
		Timestamp: at,
		DeviceID:  deviceID,
		Property:  property,
		Value:     value,
	})
	if r.writer != nil {
		r.writer.WritePropertyReading(deviceID, property, value.SI(), at)
	}
}

// Buffer returns the underlying ring buffer for querying history.
func (r *Recorder) Buffer() *RingBuffer {
	return r.buffer
}
