package mqtt

import "fmt"

// Topic prefixes for the BitBound MQTT hierarchy.
const (
	// TopicPrefix is the base for all BitBound topics.
	TopicPrefix = "bitbound"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "bitbound/system"
)

// Topics provides builders for BitBound MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.DeviceState("greenhouse-sensor", "temperature")
//	// Returns: "bitbound/state/greenhouse-sensor/temperature"
type Topics struct{}

// DeviceState returns the topic carrying one device property's readings.
//
// Example: bitbound/state/greenhouse-sensor/temperature
func (Topics) DeviceState(deviceID, property string) string {
	return fmt.Sprintf("%s/state/%s/%s", TopicPrefix, deviceID, property)
}

// DeviceStateWildcard returns the pattern matching every property of a device.
//
// Example: bitbound/state/greenhouse-sensor/+
func (Topics) DeviceStateWildcard(deviceID string) string {
	return fmt.Sprintf("%s/state/%s/+", TopicPrefix, deviceID)
}

// AllDeviceStates returns the pattern matching every state topic.
//
// Example: bitbound/state/+/+
func (Topics) AllDeviceStates() string {
	return TopicPrefix + "/state/+/+"
}

// Event returns the topic for fired rule events of one kind.
//
// Example: bitbound/event/threshold
func (Topics) Event(kind string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefix, kind)
}

// SystemStatus returns the daemon status topic (retained, also used for LWT).
//
// Example: bitbound/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
