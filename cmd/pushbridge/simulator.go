package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	pushbridge "github.com/Tap30/pushbridge-go"
	"github.com/Tap30/pushbridge-go/platform"
	"github.com/Tap30/pushbridge-go/platform/android"
	"github.com/Tap30/pushbridge-go/platform/ios"
)

// device is the state a real push SDK and OS would keep. It backs both the
// Android and the iOS simulations.
type device struct {
	mu            sync.Mutex
	remoteEnabled bool
	allowedUI     bool
	granted       bool
	asked         bool

	authorization ios.AuthorizationOptions
	category      ios.CategoryOptions
	presentation  ios.PresentationOptions

	logger zerolog.Logger
	// settingsChanged is called outside the lock whenever allowedUI flips.
	settingsChanged func(allowed bool)
}

func (d *device) setRemote(enabled bool) {
	d.mu.Lock()
	d.remoteEnabled = enabled
	changed := d.allowedUI != (enabled && d.granted)
	d.allowedUI = enabled && d.granted
	allowed := d.allowedUI
	notify := d.settingsChanged
	d.mu.Unlock()

	d.logger.Info().Bool("enabled", enabled).Msg("Remote notifications toggled")
	if changed && notify != nil {
		notify(allowed)
	}
}

func (d *device) grant(granted bool) {
	d.mu.Lock()
	d.granted = granted
	d.asked = true
	d.mu.Unlock()
	d.logger.Info().Bool("granted", granted).Msg("Notification permission answered")
}

func (d *device) state() (remote, allowed, granted, asked bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.remoteEnabled, d.allowedUI, d.granted, d.asked
}

// androidDevice adapts device to the Android SDK and OS surfaces.
type androidDevice struct{ *device }

var (
	_ android.SDK = androidDevice{}
	_ android.OS  = androidDevice{}
)

func (a androidDevice) HasRemoteNotificationsEnabled() bool {
	remote, _, _, _ := a.state()
	return remote
}

func (a androidDevice) AllowedUI() bool {
	_, allowed, _, _ := a.state()
	return allowed
}

func (a androidDevice) EnableRemoteNotifications() error {
	a.setRemote(true)
	return nil
}

func (a androidDevice) DisableRemoteNotifications() error {
	a.setRemote(false)
	return nil
}

func (a androidDevice) SDKVersion() int { return 34 }

func (a androidDevice) NotificationsEnabled() bool {
	_, _, granted, _ := a.state()
	return granted
}

func (a androidDevice) PermissionGranted(string) bool {
	_, _, granted, _ := a.state()
	return granted
}

func (a androidDevice) ShouldShowRequestPermissionRationale(string) bool {
	_, _, granted, asked := a.state()
	return asked && !granted
}

// LaunchPermissionRequest answers like a user tapping "Allow" after a short
// pause.
func (a androidDevice) LaunchPermissionRequest(_ string, result func(bool)) error {
	time.AfterFunc(300*time.Millisecond, func() {
		a.grant(true)
		result(true)
	})
	return nil
}

func (a androidDevice) ShowAlert(_ context.Context, title, message, buttonText string) error {
	a.logger.Info().Str("title", title).Str("message", message).Str("button", buttonText).Msg("Rationale alert dismissed")
	return nil
}

func (a androidDevice) DefaultButtonText() string { return "OK" }

func (a androidDevice) OpenAppSettings() error {
	a.logger.Info().Msg("App settings opened")
	return nil
}

// iosDevice adapts device to the iOS SDK and notification center surfaces.
type iosDevice struct{ *device }

var (
	_ ios.SDK                = iosDevice{}
	_ ios.NotificationCenter = iosDevice{}
)

func (i iosDevice) SetAuthorizationOptions(o ios.AuthorizationOptions) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.authorization = o
}

func (i iosDevice) AuthorizationOptions() ios.AuthorizationOptions {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.authorization
}

func (i iosDevice) SetCategoryOptions(o ios.CategoryOptions) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.category = o
}

func (i iosDevice) SetPresentationOptions(o ios.PresentationOptions) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.presentation = o
}

func (i iosDevice) HasRemoteNotificationsEnabled() bool {
	remote, _, _, _ := i.state()
	return remote
}

func (i iosDevice) AllowedUI() bool {
	_, allowed, _, _ := i.state()
	return allowed
}

func (i iosDevice) EnableRemoteNotifications(context.Context) error {
	i.setRemote(true)
	return nil
}

func (i iosDevice) DisableRemoteNotifications() {
	i.setRemote(false)
}

func (i iosDevice) Version() ios.Version { return 17 }

func (i iosDevice) AuthorizationStatus(context.Context) (ios.AuthorizationStatus, error) {
	_, _, granted, asked := i.state()
	switch {
	case granted:
		return ios.AuthorizationAuthorized, nil
	case asked:
		return ios.AuthorizationDenied, nil
	default:
		return ios.AuthorizationNotDetermined, nil
	}
}

func (i iosDevice) RequestAuthorization(ctx context.Context, options ios.AuthorizationOptions) (bool, error) {
	select {
	case <-time.After(300 * time.Millisecond):
	case <-ctx.Done():
		return false, ctx.Err()
	}
	i.logger.Info().Uint("options", uint(options)).Msg("Authorization requested")
	i.grant(true)
	return true, nil
}

func (i iosDevice) OpenSettings(context.Context) (bool, error) {
	i.logger.Info().Msg("Settings opened")
	return true, nil
}

// simulation drives a platform surface the way the push SDK would.
type simulation struct {
	push pushbridge.PushService
	// emit raises the n-th scripted SDK callback.
	emit func(n int)
}

func notification(n int) platform.JSONModel {
	return platform.JSONModel{
		"id":      uuid.NewString(),
		"type":    "re.notifica.notification.Alert",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"title":   fmt.Sprintf("Notification #%d", n),
		"message": "Hello from the simulated push SDK",
		"partial": false,
	}
}

func action() platform.JSONModel {
	return platform.JSONModel{"type": "re.notifica.action.Callback", "label": "Open"}
}

func newAndroidSimulation(d *device, dispatcher platform.Dispatcher, logger pushbridge.LoggerAdapter) simulation {
	receiver := android.NewReceiver(dispatcher, logger)
	d.settingsChanged = func(allowed bool) { receiver.OnAllowedUIChanged(&allowed) }
	dev := androidDevice{d}

	return simulation{
		push: android.NewService(dev, dev, logger),
		emit: func(n int) {
			note := notification(n)
			switch n % 4 {
			case 0:
				receiver.OnNotificationReceived(note, android.DeliveryStandard)
			case 1:
				receiver.OnNotificationOpened(note)
			case 2:
				receiver.OnActionOpened(note, action())
			case 3:
				receiver.OnUnknownNotificationReceived(platform.JSONModel{"messageId": uuid.NewString(), "data": map[string]any{"source": "simulator"}})
			}
		},
	}
}

func newIOSSimulation(d *device, dispatcher platform.Dispatcher, logger pushbridge.LoggerAdapter) simulation {
	delegate := ios.NewDelegate(dispatcher, logger)
	d.settingsChanged = delegate.DidChangeNotificationSettings
	dev := iosDevice{d}

	return simulation{
		push: ios.NewService(dev, dev, logger),
		emit: func(n int) {
			note := notification(n)
			switch n % 5 {
			case 0:
				delegate.DidReceiveNotification(note)
				delegate.DidReceiveNotificationWithDeliveryMechanism(note, ios.DeliveryStandard)
			case 1:
				delegate.DidOpenNotification(note)
			case 2:
				delegate.DidOpenAction(action(), note)
			case 3:
				delegate.DidReceiveUnknownNotification(map[any]any{"aps": map[string]any{"badge": n}})
			case 4:
				delegate.ShouldOpenSettings(nil)
			}
		},
	}
}

// run emits one scripted callback per tick until ctx is done.
func (s simulation) run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for n := 0; ; n++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.emit(n)
		}
	}
}
