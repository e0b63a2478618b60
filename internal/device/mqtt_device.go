package device

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/bitbound/bitbound-core/internal/units"
)

// MQTTDevice is a device whose property values arrive over retained MQTT
// state topics published by an external bridge:
//
//	bitbound/state/{device_id}/{property}
//
// Payloads are either a JSON object {"value": 21.5, "unit": "°C"} or a
// plain literal the units package can parse ("21.5°C", "55%", "42").
//
// The device serves the last value received per property; reading a
// property before its first state message fails with ErrReadFailed.
// Wiring the handler to the broker is the caller's job:
//
//	dev := device.NewMQTTDevice("greenhouse", []string{"temperature", "humidity"})
//	for _, topic := range dev.StateTopics() {
//	    client.Subscribe(topic, 1, dev.HandleState)
//	}
type MQTTDevice struct {
	id         string
	properties []string

	mu     sync.RWMutex
	values map[string]units.Value
}

// statePayload is the JSON form of a bridge state message.
type statePayload struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// NewMQTTDevice creates an MQTT-backed device declaring the given
// property set.
func NewMQTTDevice(id string, properties []string) *MQTTDevice {
	props := make([]string, len(properties))
	copy(props, properties)
	return &MQTTDevice{
		id:         id,
		properties: props,
		values:     make(map[string]units.Value),
	}
}

// ID returns the device identifier.
func (d *MQTTDevice) ID() string {
	return d.id
}

// StateTopics returns the state topic for each declared property.
func (d *MQTTDevice) StateTopics() []string {
	topics := make([]string, len(d.properties))
	for i, prop := range d.properties {
		topics[i] = fmt.Sprintf("bitbound/state/%s/%s", d.id, prop)
	}
	return topics
}

// HandleState ingests a state message. The property name is the final
// topic segment. Suitable as an MQTT message handler.
func (d *MQTTDevice) HandleState(topic string, payload []byte) error {
	idx := strings.LastIndexByte(topic, '/')
	if idx < 0 || idx == len(topic)-1 {
		return fmt.Errorf("%w: malformed state topic %q", ErrReadFailed, topic)
	}
	property := topic[idx+1:]

	if !d.declares(property) {
		return fmt.Errorf("%w: %q", ErrUnknownProperty, property)
	}

	value, err := parseStatePayload(payload)
	if err != nil {
		return fmt.Errorf("state payload for %s/%s: %w", d.id, property, err)
	}

	d.mu.Lock()
	d.values[property] = value
	d.mu.Unlock()
	return nil
}

// parseStatePayload decodes either the JSON object form or a plain
// unit-suffixed literal.
func parseStatePayload(payload []byte) (units.Value, error) {
	trimmed := strings.TrimSpace(string(payload))
	if strings.HasPrefix(trimmed, "{") {
		var sp statePayload
		if err := json.Unmarshal(payload, &sp); err != nil {
			return units.Value{}, fmt.Errorf("decoding state payload: %w", err)
		}
		unit, ok := units.Lookup(sp.Unit)
		if !ok {
			return units.Value{}, fmt.Errorf("%w: %q", units.ErrUnknownUnit, sp.Unit)
		}
		return units.Value{Magnitude: sp.Value, Unit: unit}, nil
	}
	return units.ParseValue(trimmed)
}

// Read returns the last received value for the property.
func (d *MQTTDevice) Read(property string) (units.Value, error) {
	if !d.declares(property) {
		return units.Value{}, fmt.Errorf("%w: %q", ErrUnknownProperty, property)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	v, ok := d.values[property]
	if !ok {
		return units.Value{}, fmt.Errorf("%w: no state received yet for %q", ErrReadFailed, property)
	}
	return v, nil
}

// Properties returns the declared property names.
func (d *MQTTDevice) Properties() []string {
	out := make([]string, len(d.properties))
	copy(out, d.properties)
	return out
}

func (d *MQTTDevice) declares(property string) bool {
	for _, p := range d.properties {
		if p == property {
			return true
		}
	}
	return false
}
