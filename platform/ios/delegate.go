// Package ios forwards the iOS push SDK delegate callbacks to the event broker
// and implements the plugin commands on top of the iOS notification center.
package ios

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

// Delegate receives the push SDK delegate callbacks. Each callback turns into
// exactly one dispatch.
type Delegate struct {
	dispatcher platform.Dispatcher
	logger     adapters.LoggerAdapter
}

// NewDelegate creates a delegate emitting into dispatcher.
func NewDelegate(dispatcher platform.Dispatcher, logger adapters.LoggerAdapter) *Delegate {
	if logger == nil {
		logger = adapters.NewPrintLoggerAdapter(adapters.LogLevelWarn)
	}
	return &Delegate{dispatcher: dispatcher, logger: logger}
}

func (d *Delegate) emit(name adapters.EventName, build func() (any, error)) {
	platform.Emit(d.dispatcher, d.logger, name, build)
}

func model(m platform.Model) func() (any, error) {
	return func() (any, error) {
		return platform.ModelJSON(m)
	}
}

// DidReceiveNotification forwards a notification received while the app runs.
func (d *Delegate) DidReceiveNotification(notification platform.Model) {
	d.emit(adapters.EventNotificationReceived, model(notification))
}

// DidReceiveNotificationWithDeliveryMechanism forwards the notification
// together with how it was delivered.
func (d *Delegate) DidReceiveNotificationWithDeliveryMechanism(notification platform.Model, mechanism DeliveryMechanism) {
	d.emit(adapters.EventNotificationInfoReceived, func() (any, error) {
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

func (d *Delegate) DidReceiveSystemNotification(notification platform.Model) {
	d.emit(adapters.EventSystemNotificationReceived, model(notification))
}

// DidReceiveUnknownNotification forwards the raw user info. Entries with
// non-string keys are dropped.
func (d *Delegate) DidReceiveUnknownNotification(userInfo map[any]any) {
	d.emit(adapters.EventUnknownNotificationReceived, platform.Value(platform.StringKeys(userInfo)))
}

// DidOpenNotification forwards the user opening a notification.
func (d *Delegate) DidOpenNotification(notification platform.Model) {
	d.emit(adapters.EventNotificationOpened, model(notification))
}

func (d *Delegate) DidOpenUnknownNotification(userInfo map[any]any) {
	d.emit(adapters.EventUnknownNotificationOpened, platform.Value(platform.StringKeys(userInfo)))
}

// DidOpenAction forwards the user picking action on notification.
func (d *Delegate) DidOpenAction(action, notification platform.Model) {
	d.emit(adapters.EventNotificationActionOpened, func() (any, error) {
		return platform.Fields(map[string]platform.Model{
			"notification": notification,
			"action":       action,
		})
	})
}

// DidOpenUnknownAction forwards an action of a notification the SDK does not
// know. responseText is only included when the user typed one.
func (d *Delegate) DidOpenUnknownAction(action string, notification map[any]any, responseText *string) {
	data := map[string]any{
		"notification": platform.StringKeys(notification),
		"action":       action,
	}
	if responseText != nil {
		data["responseText"] = *responseText
	}
	d.emit(adapters.EventUnknownNotificationActionOpened, platform.Value(data))
}

// DidChangeNotificationSettings forwards whether notifications are allowed.
func (d *Delegate) DidChangeNotificationSettings(granted bool) {
	d.emit(adapters.EventNotificationSettingsChanged, platform.Value(granted))
}

// ShouldOpenSettings is raised from the system notification settings. The
// notification is nil when the request did not come from one.
func (d *Delegate) ShouldOpenSettings(notification platform.Model) {
	d.emit(adapters.EventShouldOpenNotificationSettings, model(notification))
}

// DidFailToRegisterForRemoteNotifications forwards the error message. A nil
// error is reported as ErrRegistrationFailed.
func (d *Delegate) DidFailToRegisterForRemoteNotifications(err error) {
	if err == nil {
		d.logger.Warn("Remote notification registration failed without an error.")
		err = ErrRegistrationFailed
	}
	d.emit(adapters.EventFailedToRegisterForRemoteNotifications, platform.Value(err.Error()))
}
