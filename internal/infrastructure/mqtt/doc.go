// Package mqtt provides MQTT connectivity for BitBound Core.
//
// It wraps paho.mqtt.golang with:
//   - Connection management and automatic reconnection
//   - Subscription tracking with restoration on reconnect
//   - Last Will and Testament for offline detection
//   - Panic recovery around message handlers
//
// Topic hierarchy:
//
//	bitbound/state/{device}/{property}   device property readings (retained)
//	bitbound/event/{kind}                fired rule events
//	bitbound/system/status               daemon online/offline status (retained)
//
// Devices backed by MQTT subscribe to their state topics and cache the
// latest reading; fired events are published for external consumers.
//
// Thread Safety:
//   - All Client methods are safe for concurrent use.
//   - Message handlers run on paho's goroutines; keep them short.
package mqtt
