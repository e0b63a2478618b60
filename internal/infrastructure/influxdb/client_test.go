package influxdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bitbound/bitbound-core/internal/infrastructure/config"
)

// Connection-dependent behaviour (writes, flush, async errors) is
// exercised against a live InfluxDB instance in integration
// environments; these tests cover everything that does not need one.

func TestConnect_Disabled(t *testing.T) {
	cfg := config.InfluxDBConfig{
		Enabled: false,
		URL:     "http://localhost:8086",
	}

	_, err := Connect(cfg)
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestClose_NilClient(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on zero client error = %v, want nil", err)
	}
}

func TestIsConnected_InitialState(t *testing.T) {
	client := &Client{}
	if client.IsConnected() {
		t.Error("IsConnected() = true on zero client, want false")
	}
}

func TestHealthCheck_Disconnected(t *testing.T) {
	client := &Client{}
	if err := client.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestWrites_DisconnectedAreNoOps(t *testing.T) {
	client := &Client{}

	// Must not panic or block while disconnected.
	client.WritePropertyReading("sensor-1", "temperature", 294.65, time.Now())
	client.WriteRuleEvent("threshold", "rule-1", "sensor-1", time.Now())
	client.WritePoint("custom", map[string]string{"k": "v"}, map[string]interface{}{"value": 1.0})
	client.Flush()
}
