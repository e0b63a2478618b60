package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WritePropertyReading writes one SI-normalised property reading.
//
// This is the primary telemetry method and satisfies the
// datalog.MetricWriter interface, so the scheduler's recorder streams
// readings here without blocking the tick loop. The write is
// non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - deviceID: Device identifier (e.g., "greenhouse-sensor")
//   - property: Property name (e.g., "temperature")
//   - si: The reading's magnitude in the category's SI unit
//   - at: Timestamp of the reading (tick time, not write time)
//
// Example:
//
//	client.WritePropertyReading("greenhouse-sensor", "temperature", 294.65, tickTime)
func (c *Client) WritePropertyReading(deviceID, property string, si float64, at time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"property_readings",
		map[string]string{
			"device_id": deviceID,
			"property":  property,
		},
		map[string]interface{}{
			"value": si,
		},
		at,
	)

	c.writeAPI.WritePoint(point)
}

// WriteRuleEvent records a fired rule for event-rate dashboards.
//
// Parameters:
//   - kind: Rule kind ("threshold", "change" or "interval")
//   - ruleID: The rule that fired
//   - deviceID: Device the rule observes
//   - at: Firing timestamp
func (c *Client) WriteRuleEvent(kind, ruleID, deviceID string, at time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"rule_events",
		map[string]string{
			"kind":      kind,
			"device_id": deviceID,
		},
		map[string]interface{}{
			"rule_id": ruleID,
			"count":   1,
		},
		at,
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
