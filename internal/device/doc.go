// Package device defines the collaborator contract between BitBound Core
// and the hardware layer, plus the device registry the scheduler polls.
//
// The core does not talk to buses or sensor registers. Anything that can
// answer "what is the current value of property X" is a Device:
//
//	type Device interface {
//	    ID() string
//	    Read(property string) (units.Value, error)
//	    Properties() []string
//	}
//
// Reads are treated as synchronous and bounded; a device that cannot
// produce a value promptly is a defect in that device, not something the
// core works around beyond reporting the failed read.
//
// Two implementations ship with the core:
//
//   - SimDevice: an in-memory device with settable values and fault
//     injection, used by tests and the demo daemon.
//   - MQTTDevice: a device fed by retained MQTT state topics published by
//     an external bridge (bitbound/state/{device}/{property}).
//
// # Thread Safety
//
// Registry, SimDevice and MQTTDevice are safe for concurrent use.
package device
