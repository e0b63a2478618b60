package device

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bitbound/bitbound-core/internal/units"
)

// SimDevice is an in-memory device with settable property values and
// per-property fault injection. It backs tests and the demo daemon's
// simulated sensors.
type SimDevice struct {
	id string

	mu       sync.RWMutex
	props    map[string]units.Value
	failures map[string]error
}

// NewSimDevice creates a simulated device with no properties.
func NewSimDevice(id string) *SimDevice {
	return &SimDevice{
		id:       id,
		props:    make(map[string]units.Value),
		failures: make(map[string]error),
	}
}

// ID returns the device identifier.
func (d *SimDevice) ID() string {
	return d.id
}

// Set assigns a property value, creating the property if needed.
func (d *SimDevice) Set(property string, value units.Value) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.props[property] = value
}

// Remove deletes a property from the device's property set.
func (d *SimDevice) Remove(property string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.props, property)
}

// FailReads makes subsequent reads of the property return the given
// error (wrapped in ErrReadFailed if it is not already a device error).
// Passing nil clears the failure.
func (d *SimDevice) FailReads(property string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.failures, property)
		return
	}
	d.failures[property] = err
}

// Read returns the property's current value or the injected failure.
func (d *SimDevice) Read(property string) (units.Value, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if err, ok := d.failures[property]; ok {
		return units.Value{}, fmt.Errorf("%w: %s: %w", ErrReadFailed, property, err)
	}
	v, ok := d.props[property]
	if !ok {
		return units.Value{}, fmt.Errorf("%w: %q", ErrUnknownProperty, property)
	}
	return v, nil
}

// Properties returns the current property names sorted alphabetically.
func (d *SimDevice) Properties() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]string, 0, len(d.props))
	for name := range d.props {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
