// Package influxdb provides the time-series sink for property readings.
//
// It wraps the InfluxDB v2 client with:
//   - Connection management and health checks
//   - Non-blocking batched writes of property readings
//   - Async write error reporting via callback
//
// The *Client satisfies the datalog.MetricWriter interface, so readings
// taken by the scheduler flow through the Recorder into InfluxDB without
// blocking the tick loop.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
package influxdb
