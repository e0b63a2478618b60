package mqtt

import (
	"errors"
	"strings"
	"testing"
)

// Broker-dependent behaviour (connect, publish/subscribe roundtrips,
// reconnection) is exercised against a live Mosquitto instance in
// integration environments; these tests cover everything that does not
// need a broker.

func TestCloseNil(t *testing.T) {
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

func TestPublishValidation(t *testing.T) {
	client := &Client{}

	if err := client.Publish("", []byte("x"), 1, false); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic: got %v, want ErrInvalidTopic", err)
	}
	if err := client.Publish("bitbound/event/threshold", []byte("x"), 3, false); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("QoS 3: got %v, want ErrInvalidQoS", err)
	}
	oversized := make([]byte, maxPayloadSize+1)
	if err := client.Publish("bitbound/event/threshold", oversized, 1, false); !errors.Is(err, ErrPublishFailed) {
		t.Errorf("oversized payload: got %v, want ErrPublishFailed", err)
	}
	if err := client.Publish("bitbound/event/threshold", []byte("x"), 1, false); !errors.Is(err, ErrNotConnected) {
		t.Errorf("disconnected: got %v, want ErrNotConnected", err)
	}
}

func TestSubscribeValidation(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}
	handler := func(string, []byte) error { return nil }

	if err := client.Subscribe("", 1, handler); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic: got %v, want ErrInvalidTopic", err)
	}
	if err := client.Subscribe("bitbound/state/+/+", 3, handler); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("QoS 3: got %v, want ErrInvalidQoS", err)
	}
	if err := client.Subscribe("bitbound/state/+/+", 1, nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("nil handler: got %v, want ErrSubscribeFailed", err)
	}
	if err := client.Subscribe("bitbound/state/+/+", 1, handler); !errors.Is(err, ErrNotConnected) {
		t.Errorf("disconnected: got %v, want ErrNotConnected", err)
	}
}

func TestUnsubscribeValidation(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}

	if err := client.Unsubscribe(""); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic: got %v, want ErrInvalidTopic", err)
	}
	if err := client.Unsubscribe("bitbound/state/+/+"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("disconnected: got %v, want ErrNotConnected", err)
	}
}

func TestTopicBuilders(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "DeviceState",
			got:  topics.DeviceState("greenhouse-sensor", "temperature"),
			want: "bitbound/state/greenhouse-sensor/temperature",
		},
		{
			name: "DeviceStateWildcard",
			got:  topics.DeviceStateWildcard("greenhouse-sensor"),
			want: "bitbound/state/greenhouse-sensor/+",
		},
		{
			name: "AllDeviceStates",
			got:  topics.AllDeviceStates(),
			want: "bitbound/state/+/+",
		},
		{
			name: "Event",
			got:  topics.Event("threshold"),
			want: "bitbound/event/threshold",
		},
		{
			name: "SystemStatus",
			got:  topics.SystemStatus(),
			want: "bitbound/system/status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestStatusPayloads(t *testing.T) {
	online := buildOnlinePayload("bitbound-test")
	if !strings.Contains(online, `"status":"online"`) || !strings.Contains(online, "bitbound-test") {
		t.Errorf("online payload = %s", online)
	}

	offline := buildOfflinePayload("bitbound-test")
	if !strings.Contains(offline, `"status":"offline"`) || !strings.Contains(offline, "graceful_shutdown") {
		t.Errorf("offline payload = %s", offline)
	}
}
