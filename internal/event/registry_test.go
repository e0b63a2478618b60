package event

import (
	"errors"
	"testing"
	"time"

	"github.com/bitbound/bitbound-core/internal/device"
	"github.com/bitbound/bitbound-core/internal/expr"
	"github.com/bitbound/bitbound-core/internal/units"
)

func newTestDevice(t *testing.T, id string) *device.SimDevice {
	t.Helper()
	dev := device.NewSimDevice(id)
	dev.Set("temperature", units.Value{Magnitude: 20, Unit: units.Celsius})
	dev.Set("humidity", units.Value{Magnitude: 50, Unit: units.PercentSign})
	return dev
}

func nopCallback(Event) {}

func TestRegisterThreshold(t *testing.T) {
	reg := NewRegistry()
	dev := newTestDevice(t, "sensor-1")

	id, err := reg.RegisterThreshold(dev, "temperature > 25°C", nopCallback, 0)
	if err != nil {
		t.Fatalf("RegisterThreshold failed: %v", err)
	}
	if id == "" {
		t.Error("expected non-empty rule ID")
	}
	if reg.Count() != 1 {
		t.Errorf("Count = %d, want 1", reg.Count())
	}
}

func TestRegisterThresholdParseError(t *testing.T) {
	reg := NewRegistry()
	dev := newTestDevice(t, "sensor-1")

	_, err := reg.RegisterThreshold(dev, "temperature >", nopCallback, 0)
	if err == nil {
		t.Fatal("expected parse error for malformed expression")
	}
	var parseErr *expr.ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("expected *expr.ParseError in chain, got %T: %v", err, err)
	}
	if reg.Count() != 0 {
		t.Errorf("Count = %d after failed registration, want 0", reg.Count())
	}
}

func TestRegisterValidation(t *testing.T) {
	reg := NewRegistry()
	dev := newTestDevice(t, "sensor-1")

	if _, err := reg.RegisterThreshold(nil, "temperature > 25", nopCallback, 0); !errors.Is(err, ErrNilDevice) {
		t.Errorf("nil device: got %v, want ErrNilDevice", err)
	}
	if _, err := reg.RegisterThreshold(dev, "temperature > 25", nil, 0); !errors.Is(err, ErrNilCallback) {
		t.Errorf("nil callback: got %v, want ErrNilCallback", err)
	}
	if _, err := reg.RegisterChange(dev, "", nopCallback, 0); !errors.Is(err, ErrEmptyProperty) {
		t.Errorf("empty property: got %v, want ErrEmptyProperty", err)
	}
	if _, err := reg.RegisterInterval(dev, 0, nopCallback); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("zero period: got %v, want ErrInvalidPeriod", err)
	}
	if _, err := reg.RegisterInterval(dev, -time.Second, nopCallback); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("negative period: got %v, want ErrInvalidPeriod", err)
	}
}

func TestUnregister(t *testing.T) {
	reg := NewRegistry()
	dev := newTestDevice(t, "sensor-1")

	id, err := reg.RegisterChange(dev, "temperature", nopCallback, 0)
	if err != nil {
		t.Fatalf("RegisterChange failed: %v", err)
	}

	if err := reg.Unregister(id); err != nil {
		t.Fatalf("Unregister failed: %v", err)
	}
	if reg.Count() != 0 {
		t.Errorf("Count = %d after unregister, want 0", reg.Count())
	}

	// Second unregister of the same ID fails.
	if err := reg.Unregister(id); !errors.Is(err, ErrRuleNotFound) {
		t.Errorf("double unregister: got %v, want ErrRuleNotFound", err)
	}
}

func TestUnregisterUnknownID(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Unregister("no-such-rule"); !errors.Is(err, ErrRuleNotFound) {
		t.Errorf("got %v, want ErrRuleNotFound", err)
	}
}

func TestDetachDevice(t *testing.T) {
	reg := NewRegistry()
	keep := newTestDevice(t, "sensor-keep")
	drop := newTestDevice(t, "sensor-drop")

	if _, err := reg.RegisterChange(keep, "temperature", nopCallback, 0); err != nil {
		t.Fatalf("RegisterChange failed: %v", err)
	}
	if _, err := reg.RegisterChange(drop, "temperature", nopCallback, 0); err != nil {
		t.Fatalf("RegisterChange failed: %v", err)
	}
	if _, err := reg.RegisterInterval(drop, time.Second, nopCallback); err != nil {
		t.Fatalf("RegisterInterval failed: %v", err)
	}

	if n := reg.DetachDevice("sensor-drop"); n != 2 {
		t.Errorf("DetachDevice removed %d rules, want 2", n)
	}
	if reg.Count() != 1 {
		t.Errorf("Count = %d after detach, want 1", reg.Count())
	}
	if n := reg.DetachDevice("sensor-drop"); n != 0 {
		t.Errorf("second DetachDevice removed %d rules, want 0", n)
	}
}

func TestSnapshotCompactsRemovals(t *testing.T) {
	reg := NewRegistry()
	dev := newTestDevice(t, "sensor-1")

	first, _ := reg.RegisterChange(dev, "temperature", nopCallback, 0)
	second, _ := reg.RegisterChange(dev, "humidity", nopCallback, 0)
	third, _ := reg.RegisterInterval(dev, time.Second, nopCallback)

	if err := reg.Unregister(second); err != nil {
		t.Fatalf("Unregister failed: %v", err)
	}

	rules := reg.snapshot()
	if len(rules) != 2 {
		t.Fatalf("snapshot returned %d rules, want 2", len(rules))
	}
	if rules[0].id != first || rules[1].id != third {
		t.Errorf("snapshot order = [%s %s], want [%s %s]",
			rules[0].id, rules[1].id, first, third)
	}
}

func TestSnapshotPreservesRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	dev := newTestDevice(t, "sensor-1")

	var want []RuleID
	for i := 0; i < 5; i++ {
		id, err := reg.RegisterInterval(dev, time.Second, nopCallback)
		if err != nil {
			t.Fatalf("RegisterInterval failed: %v", err)
		}
		want = append(want, id)
	}

	rules := reg.snapshot()
	if len(rules) != len(want) {
		t.Fatalf("snapshot returned %d rules, want %d", len(rules), len(want))
	}
	for i, rl := range rules {
		if rl.id != want[i] {
			t.Errorf("rules[%d].id = %s, want %s", i, rl.id, want[i])
		}
	}
}
