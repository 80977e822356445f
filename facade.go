package pushbridge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Tap30/pushbridge-go/adapters"
)

// Facade is the host-side API of the plugin: promise-style commands and
// event subscriptions. It installs a single event receiver on the bridge and
// fans events out to subscriptions, buffering events nobody subscribed to yet.
type Facade struct {
	transport TransportAdapter
	logger    LoggerAdapter
	registry  *subscriptionRegistry

	mu      sync.Mutex
	started bool
}

// NewFacade creates a façade over transport. Call Start to begin receiving
// events.
func NewFacade(config FacadeConfig) (*Facade, error) {
	if config.Transport == nil {
		return nil, errors.New("Transport is required")
	}
	if config.LoggerAdapter == nil {
		config.LoggerAdapter = adapters.NewPrintLoggerAdapter(adapters.LogLevelWarn)
	}

	return &Facade{
		transport: config.Transport,
		logger:    config.LoggerAdapter,
		registry:  newSubscriptionRegistry(config.LoggerAdapter),
	}, nil
}

// Start registers the façade's event receiver with the native side. It is
// independent of subscriptions: events arriving before any subscription are
// buffered. Calling Start again after a success is a no-op.
func (f *Facade) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started {
		return nil
	}

	if _, err := f.transport.Exec(ctx, CommandRegisterListener, nil, f.onEvent); err != nil {
		f.logger.Error("Failed to register event listener. %v", err)
		return err
	}
	f.started = true
	return nil
}

func (f *Facade) onEvent(result Result) {
	if !result.OK() {
		f.logger.Error("Failed to register event listener. %s", resultMessage(result))
		return
	}

	var msg EventMessage
	if err := adapters.Unmarshal(result.Message, &msg); err != nil {
		f.logger.Error("Discarding malformed event: %v", err)
		return
	}
	f.registry.receive(msg)
}

// Subscribe registers callback for event. Events with that name received
// before any subscription existed are replayed to callback, in arrival
// order, before Subscribe returns; later subscriptions do not see them
// again. When Subscribe is called from inside another event callback the
// replay runs right after that callback returns.
//
// Callbacks run one at a time. If another goroutine is delivering events
// when Subscribe is called, Subscribe returns without waiting and that
// goroutine runs the replay once its current callback returns.
func (f *Facade) Subscribe(event EventName, callback EventCallback) *Subscription {
	return f.registry.subscribe(event, callback)
}

// Unsubscribe removes sub. Removing a subscription twice is a no-op.
func (f *Facade) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	sub.Remove()
}

// PendingEvents returns the number of received events still waiting for a
// subscriber.
func (f *Facade) PendingEvents() int {
	return f.registry.pending()
}

// OnNotificationReceived subscribes to notifications delivered while the app
// is running.
func (f *Facade) OnNotificationReceived(callback EventCallback) *Subscription {
	return f.Subscribe(EventNotificationReceived, callback)
}

// OnNotificationInfoReceived is only emitted on Android. The payload carries
// the notification and its delivery mechanism.
func (f *Facade) OnNotificationInfoReceived(callback EventCallback) *Subscription {
	return f.Subscribe(EventNotificationInfoReceived, callback)
}

// OnSystemNotificationReceived subscribes to system notifications, the ones
// the push SDK handles itself.
func (f *Facade) OnSystemNotificationReceived(callback EventCallback) *Subscription {
	return f.Subscribe(EventSystemNotificationReceived, callback)
}

// OnUnknownNotificationReceived subscribes to notifications not sent through
// the push SDK. The payload is the raw notification data.
func (f *Facade) OnUnknownNotificationReceived(callback EventCallback) *Subscription {
	return f.Subscribe(EventUnknownNotificationReceived, callback)
}

// OnNotificationOpened subscribes to the user opening a notification.
func (f *Facade) OnNotificationOpened(callback EventCallback) *Subscription {
	return f.Subscribe(EventNotificationOpened, callback)
}

// OnUnknownNotificationOpened subscribes to the user opening a notification
// the push SDK does not know.
func (f *Facade) OnUnknownNotificationOpened(callback EventCallback) *Subscription {
	return f.Subscribe(EventUnknownNotificationOpened, callback)
}

// OnNotificationActionOpened subscribes to the user picking a notification
// action. The payload carries the notification and the action.
func (f *Facade) OnNotificationActionOpened(callback EventCallback) *Subscription {
	return f.Subscribe(EventNotificationActionOpened, callback)
}

// OnUnknownNotificationActionOpened is only emitted on iOS.
func (f *Facade) OnUnknownNotificationActionOpened(callback EventCallback) *Subscription {
	return f.Subscribe(EventUnknownNotificationActionOpened, callback)
}

// OnNotificationSettingsChanged subscribes to changes of the notification
// permission. The payload is whether notifications are allowed.
func (f *Facade) OnNotificationSettingsChanged(callback EventCallback) *Subscription {
	return f.Subscribe(EventNotificationSettingsChanged, callback)
}

// OnShouldOpenNotificationSettings is only emitted on iOS, when the user
// asks for the app's notification settings.
func (f *Facade) OnShouldOpenNotificationSettings(callback EventCallback) *Subscription {
	return f.Subscribe(EventShouldOpenNotificationSettings, callback)
}

// OnFailedToRegisterForRemoteNotifications is only emitted on iOS. The
// payload is the error message.
func (f *Facade) OnFailedToRegisterForRemoteNotifications(callback EventCallback) *Subscription {
	return f.Subscribe(EventFailedToRegisterForRemoteNotifications, callback)
}

// SetAuthorizationOptions sets the iOS authorization options. No-op on
// Android.
func (f *Facade) SetAuthorizationOptions(ctx context.Context, options []string) error {
	_, err := f.call(ctx, CommandSetAuthorizationOptions, options)
	return err
}

// SetCategoryOptions sets the iOS notification category options. No-op on
// Android.
func (f *Facade) SetCategoryOptions(ctx context.Context, options []string) error {
	_, err := f.call(ctx, CommandSetCategoryOptions, options)
	return err
}

// SetPresentationOptions sets the iOS foreground presentation options. No-op
// on Android.
func (f *Facade) SetPresentationOptions(ctx context.Context, options []string) error {
	_, err := f.call(ctx, CommandSetPresentationOptions, options)
	return err
}

// HasRemoteNotificationsEnabled reports whether the device is registered for
// remote notifications.
func (f *Facade) HasRemoteNotificationsEnabled(ctx context.Context) (bool, error) {
	return f.callBool(ctx, CommandHasRemoteNotificationsEnabled)
}

// AllowedUI reports whether notifications may be shown to the user.
func (f *Facade) AllowedUI(ctx context.Context) (bool, error) {
	return f.callBool(ctx, CommandAllowedUI)
}

// EnableRemoteNotifications registers the device for remote notifications.
func (f *Facade) EnableRemoteNotifications(ctx context.Context) error {
	_, err := f.call(ctx, CommandEnableRemoteNotifications)
	return err
}

// DisableRemoteNotifications unregisters the device.
func (f *Facade) DisableRemoteNotifications(ctx context.Context) error {
	_, err := f.call(ctx, CommandDisableRemoteNotifications)
	return err
}

// CheckPermissionStatus returns the notification permission without
// prompting.
func (f *Facade) CheckPermissionStatus(ctx context.Context) (PermissionStatus, error) {
	return f.callPermission(ctx, CommandCheckPermissionStatus)
}

// ShouldShowPermissionRationale reports whether a rationale should be shown
// before requesting the permission. Always false on iOS.
func (f *Facade) ShouldShowPermissionRationale(ctx context.Context) (bool, error) {
	return f.callBool(ctx, CommandShouldShowPermissionRationale)
}

// PresentPermissionRationale shows rationale and returns once it has been
// dismissed.
func (f *Facade) PresentPermissionRationale(ctx context.Context, rationale Rationale) error {
	_, err := f.call(ctx, CommandPresentPermissionRationale, rationale)
	return err
}

// RequestPermission prompts for the notification permission and returns the
// resulting status.
func (f *Facade) RequestPermission(ctx context.Context) (PermissionStatus, error) {
	return f.callPermission(ctx, CommandRequestPermission)
}

// OpenAppSettings opens the system settings of the app.
func (f *Facade) OpenAppSettings(ctx context.Context) error {
	_, err := f.call(ctx, CommandOpenAppSettings)
	return err
}

// call executes a one-shot command and waits for its first result. The
// handler is released if ctx ends first.
func (f *Facade) call(ctx context.Context, action string, args ...any) (Result, error) {
	results := make(chan Result, 1)
	release, err := f.transport.Exec(ctx, action, args, func(result Result) {
		select {
		case results <- result:
		default:
			f.logger.Debug("Ignoring extra result for '%s'.", action)
		}
	})
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", action, err)
	}

	select {
	case result := <-results:
		if !result.OK() {
			return result, &CommandError{Action: action, Message: resultMessage(result)}
		}
		return result, nil
	case <-ctx.Done():
		release()
		return Result{}, ctx.Err()
	}
}

func (f *Facade) callBool(ctx context.Context, action string) (bool, error) {
	result, err := f.call(ctx, action)
	if err != nil {
		return false, err
	}
	var v bool
	if err := adapters.Unmarshal(result.Message, &v); err != nil {
		return false, fmt.Errorf("%s: unexpected result %s: %w", action, result.Message, err)
	}
	return v, nil
}

// callPermission accepts both a bare status string and the {"result": status}
// object some hosts answer requestPermission with.
func (f *Facade) callPermission(ctx context.Context, action string) (PermissionStatus, error) {
	result, err := f.call(ctx, action)
	if err != nil {
		return "", err
	}

	var raw string
	if err := adapters.Unmarshal(result.Message, &raw); err != nil {
		var wrapped struct {
			Result string `json:"result"`
		}
		if err := adapters.Unmarshal(result.Message, &wrapped); err != nil {
			return "", fmt.Errorf("%s: unexpected result %s: %w", action, result.Message, err)
		}
		raw = wrapped.Result
	}
	return ParsePermissionStatus(raw)
}

func resultMessage(result Result) string {
	if len(result.Message) == 0 {
		return "unknown error"
	}
	var s string
	if err := adapters.Unmarshal(result.Message, &s); err == nil {
		return s
	}
	return string(result.Message)
}
