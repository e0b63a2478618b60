package device

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bitbound/bitbound-core/internal/units"
)

// Device is the contract the core requires from any attached hardware
// collaborator. Implementations must be safe for concurrent use.
type Device interface {
	// ID returns the stable device identifier.
	ID() string

	// Read returns the current value of the named property. A device may
	// report dimensionless values; such values participate only in
	// comparisons against dimensionless literals.
	//
	// Read fails with ErrUnknownProperty if the property is not part of
	// the device's current property set, or ErrReadFailed if the device
	// cannot produce a value.
	Read(property string) (units.Value, error)

	// Properties returns the names of the properties the device
	// currently reports. The set may change over the device's lifetime.
	Properties() []string
}

// Registry tracks attached devices by ID.
//
// All public methods are thread-safe.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]Device
}

// NewRegistry creates an empty device registry.
func NewRegistry() *Registry {
	return &Registry{devices: make(map[string]Device)}
}

// Attach adds a device. Fails with ErrExists if the ID is already taken.
func (r *Registry) Attach(dev Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.devices[dev.ID()]; ok {
		return fmt.Errorf("%w: %q", ErrExists, dev.ID())
	}
	r.devices[dev.ID()] = dev
	return nil
}

// Detach removes a device by ID. Fails with ErrNotFound if absent.
func (r *Registry) Detach(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.devices[id]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	delete(r.devices, id)
	return nil
}

// Get returns the device with the given ID.
func (r *Registry) Get(id string) (Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dev, ok := r.devices[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return dev, nil
}

// List returns all attached devices sorted by ID.
func (r *Registry) List() []Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Device, 0, len(r.devices))
	for _, dev := range r.devices {
		out = append(out, dev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Count returns the number of attached devices.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}
