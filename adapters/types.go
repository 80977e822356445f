package adapters

import (
	"errors"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

// ErrUnknownEvent is returned when an event name is not part of the fixed set.
var ErrUnknownEvent = errors.New("unknown event name")

// EventName identifies a push event emitted by the native SDK.
type EventName string

const (
	EventNotificationReceived                  EventName = "notification_received"
	EventNotificationInfoReceived              EventName = "notification_info_received"
	EventSystemNotificationReceived            EventName = "system_notification_received"
	EventUnknownNotificationReceived           EventName = "unknown_notification_received"
	EventNotificationOpened                    EventName = "notification_opened"
	EventUnknownNotificationOpened             EventName = "unknown_notification_opened"
	EventNotificationActionOpened              EventName = "notification_action_opened"
	EventUnknownNotificationActionOpened       EventName = "unknown_notification_action_opened"
	EventNotificationSettingsChanged           EventName = "notification_settings_changed"
	EventShouldOpenNotificationSettings        EventName = "should_open_notification_settings"
	EventFailedToRegisterForRemoteNotifications EventName = "failed_to_register_for_remote_notifications"
)

// EventNames lists every event name in declaration order.
var EventNames = []EventName{
	EventNotificationReceived,
	EventNotificationInfoReceived,
	EventSystemNotificationReceived,
	EventUnknownNotificationReceived,
	EventNotificationOpened,
	EventUnknownNotificationOpened,
	EventNotificationActionOpened,
	EventUnknownNotificationActionOpened,
	EventNotificationSettingsChanged,
	EventShouldOpenNotificationSettings,
	EventFailedToRegisterForRemoteNotifications,
}

// Valid reports whether n is one of the known event names.
func (n EventName) Valid() bool {
	for _, name := range EventNames {
		if n == name {
			return true
		}
	}
	return false
}

// Event represents a push event travelling from the native SDK to the host.
// Events are built with NewEvent and never modified afterwards.
type Event struct {
	ID           string    `json:"id"`
	Name         EventName `json:"name"`
	Payload      Payload   `json:"payload,omitempty"`
	DispatchedAt time.Time `json:"dispatchedAt"`
}

// NewEvent creates an event with a fresh identifier.
func NewEvent(name EventName, payload Payload) Event {
	return Event{
		ID:           uuid.NewString(),
		Name:         name,
		Payload:      payload,
		DispatchedAt: time.Now(),
	}
}

// Message returns the boundary representation of the event.
func (e Event) Message() EventMessage {
	return EventMessage{Name: e.Name, Data: e.Payload}
}

// EventMessage is the shape an event takes when crossing the bridge.
// Data is omitted when the event carries no payload.
type EventMessage struct {
	Name EventName `json:"name"`
	Data Payload   `json:"data,omitempty"`
}

// UnmarshalJSON decodes the message, keeping integers and fractions apart.
func (m *EventMessage) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name EventName           `json:"name"`
		Data jsoniter.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Name = raw.Name
	m.Data = nil
	if len(raw.Data) > 0 {
		payload, err := DecodePayload(raw.Data)
		if err != nil {
			return err
		}
		m.Data = payload
	}
	return nil
}

// Status is the outcome of a plugin command.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// PluginResult is produced by the native command dispatcher for one callback.
// Message is encoded by the transport.
type PluginResult struct {
	Status       Status
	Message      any
	KeepCallback bool
}

// Result is a plugin result as received by the host side of the bridge.
type Result struct {
	Status       Status              `json:"status"`
	Message      jsoniter.RawMessage `json:"message,omitempty"`
	KeepCallback bool                `json:"keepCallback"`
}

// OK reports whether the command succeeded.
func (r Result) OK() bool {
	return r.Status == StatusOK
}

// EncodeResult converts a plugin result into its host-side representation.
func EncodeResult(result PluginResult) (Result, error) {
	encoded := Result{Status: result.Status, KeepCallback: result.KeepCallback}
	if result.Message == nil {
		return encoded, nil
	}
	data, err := json.Marshal(result.Message)
	if err != nil {
		return Result{}, err
	}
	encoded.Message = data
	return encoded, nil
}

// CommandFrame is a command sent from the host to the native side.
type CommandFrame struct {
	CallbackID string `json:"callbackId"`
	Action     string `json:"action"`
	Args       []any  `json:"args"`
}

// ResultFrame carries a Result back to the caller identified by CallbackID.
type ResultFrame struct {
	CallbackID string `json:"callbackId"`
	Result
}
