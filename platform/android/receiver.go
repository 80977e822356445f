// Package android forwards the Android push SDK callbacks to the event broker
// and implements the plugin commands on top of the Android runtime.
package android

import (
	"github.com/Tap30/pushbridge-go/adapters"
	"github.com/Tap30/pushbridge-go/platform"
)

// DeliveryMechanism tells how a notification reached the device.
type DeliveryMechanism string

const (
	DeliveryStandard DeliveryMechanism = "standard"
	DeliverySilent   DeliveryMechanism = "silent"
)

// Receiver is the push intent receiver. Every callback turns into one
// dispatch, except OnNotificationReceived which also emits the legacy
// notification_received event.
type Receiver struct {
	dispatcher platform.Dispatcher
	logger     adapters.LoggerAdapter
}

// NewReceiver creates a receiver emitting into dispatcher.
func NewReceiver(dispatcher platform.Dispatcher, logger adapters.LoggerAdapter) *Receiver {
	if logger == nil {
		logger = adapters.NewPrintLoggerAdapter(adapters.LogLevelWarn)
	}
	return &Receiver{dispatcher: dispatcher, logger: logger}
}

func (r *Receiver) emit(name adapters.EventName, build func() (any, error)) {
	platform.Emit(r.dispatcher, r.logger, name, build)
}

// OnNotificationReceived emits both the received and the info received
// events for one notification.
func (r *Receiver) OnNotificationReceived(notification platform.Model, mechanism DeliveryMechanism) {
	// Kept for hosts that still listen to the legacy event.
	r.emit(adapters.EventNotificationReceived, func() (any, error) {
		return platform.ModelJSON(notification)
	})

	r.emit(adapters.EventNotificationInfoReceived, func() (any, error) {
		n, err := platform.ModelJSON(notification)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"notification":      n,
			"deliveryMechanism": string(mechanism),
		}, nil
	})
}

// OnSystemNotificationReceived forwards a system notification.
func (r *Receiver) OnSystemNotificationReceived(notification platform.Model) {
	r.emit(adapters.EventSystemNotificationReceived, func() (any, error) {
		return platform.ModelJSON(notification)
	})
}

// OnUnknownNotificationReceived forwards a notification not sent through the
// push SDK.
func (r *Receiver) OnUnknownNotificationReceived(notification platform.Model) {
	r.emit(adapters.EventUnknownNotificationReceived, func() (any, error) {
		return platform.ModelJSON(notification)
	})
}

// OnNotificationOpened forwards the user opening a notification.
func (r *Receiver) OnNotificationOpened(notification platform.Model) {
	r.emit(adapters.EventNotificationOpened, func() (any, error) {
		return platform.ModelJSON(notification)
	})
}

// OnActionOpened forwards the user picking an action of notification.
func (r *Receiver) OnActionOpened(notification, action platform.Model) {
	r.emit(adapters.EventNotificationActionOpened, func() (any, error) {
		return platform.Fields(map[string]platform.Model{
			"notification": notification,
			"action":       action,
		})
	})
}

// OnAllowedUIChanged observes the SDK's allowed-UI value. A nil value means
// the observable has not been populated yet and is ignored.
func (r *Receiver) OnAllowedUIChanged(allowedUI *bool) {
	if allowedUI == nil {
		return
	}
	r.emit(adapters.EventNotificationSettingsChanged, platform.Value(*allowedUI))
}
