package pushbridge

import (
	"errors"
	"fmt"

	"github.com/Tap30/pushbridge-go/adapters"
)

// Re-export adapter types for convenience
type (
	Event              = adapters.Event
	EventName          = adapters.EventName
	EventMessage       = adapters.EventMessage
	Payload            = adapters.Payload
	PluginResult       = adapters.PluginResult
	Result             = adapters.Result
	Status             = adapters.Status
	LoggerAdapter      = adapters.LoggerAdapter
	LogLevel           = adapters.LogLevel
	MetricsAdapter     = adapters.MetricsAdapter
	PreferencesAdapter = adapters.PreferencesAdapter
	TransportAdapter   = adapters.TransportAdapter
	ResultHandler      = adapters.ResultHandler
)

const (
	EventNotificationReceived                   = adapters.EventNotificationReceived
	EventNotificationInfoReceived               = adapters.EventNotificationInfoReceived
	EventSystemNotificationReceived             = adapters.EventSystemNotificationReceived
	EventUnknownNotificationReceived            = adapters.EventUnknownNotificationReceived
	EventNotificationOpened                     = adapters.EventNotificationOpened
	EventUnknownNotificationOpened              = adapters.EventUnknownNotificationOpened
	EventNotificationActionOpened               = adapters.EventNotificationActionOpened
	EventUnknownNotificationActionOpened        = adapters.EventUnknownNotificationActionOpened
	EventNotificationSettingsChanged            = adapters.EventNotificationSettingsChanged
	EventShouldOpenNotificationSettings         = adapters.EventShouldOpenNotificationSettings
	EventFailedToRegisterForRemoteNotifications = adapters.EventFailedToRegisterForRemoteNotifications

	HoldEventsUntilReadyPreference = adapters.HoldEventsUntilReadyPreference
)

var (
	// ErrUnknownEvent is returned when dispatching a name outside the fixed set.
	ErrUnknownEvent = adapters.ErrUnknownEvent
	// ErrTransportClosed is returned when the bridge connection is gone.
	ErrTransportClosed = adapters.ErrTransportClosed
	// ErrNilConsumer is returned by Setup when no consumer is given.
	ErrNilConsumer = errors.New("consumer is required")
)

// CommandError is returned by Facade methods when the native side rejected
// the command.
type CommandError struct {
	Action  string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Action, e.Message)
}

// BrokerConfig configures an EventBroker.
type BrokerConfig struct {
	// ReadySignal reports whether the push SDK finished launching. Required.
	ReadySignal ReadySignal
	// Scheduler runs deferred work on the next tick. Required.
	Scheduler      Scheduler
	LoggerAdapter  LoggerAdapter
	MetricsAdapter MetricsAdapter
}

// PluginConfig configures a Plugin.
type PluginConfig struct {
	Broker        *EventBroker
	Push          PushService
	Preferences   PreferencesAdapter
	LoggerAdapter LoggerAdapter
}

// FacadeConfig configures a Facade.
type FacadeConfig struct {
	Transport     TransportAdapter
	LoggerAdapter LoggerAdapter
}

// BridgeConfig configures a Bridge.
type BridgeConfig struct {
	// Push is the platform implementation of the command surface. Required.
	Push PushService
	// Preferences holds the host's plugin preferences. Defaults to empty.
	Preferences PreferencesAdapter
	// ReadySignal defaults to a new ReadyNotifier.
	ReadySignal ReadySignal
	// Scheduler defaults to a new Looper owned by the bridge.
	Scheduler      Scheduler
	LoggerAdapter  LoggerAdapter
	MetricsAdapter MetricsAdapter
}
