package android

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pushbridge "github.com/Tap30/pushbridge-go"
	"github.com/Tap30/pushbridge-go/adapters"
	"github.com/Tap30/pushbridge-go/platform"
)

type dispatch struct {
	name    adapters.EventName
	payload any
}

type recordingDispatcher struct {
	calls []dispatch
}

func (d *recordingDispatcher) Dispatch(name adapters.EventName, payload any) error {
	if !name.Valid() {
		return adapters.ErrUnknownEvent
	}
	d.calls = append(d.calls, dispatch{name, payload})
	return nil
}

func TestReceiver_NotificationReceivedEmitsTwoEvents(t *testing.T) {
	d := &recordingDispatcher{}
	r := NewReceiver(d, adapters.NewNoOpLoggerAdapter())
	n := platform.JSONModel{"id": "n1", "message": "hello"}

	r.OnNotificationReceived(n, DeliveryStandard)

	require.Len(t, d.calls, 2)
	assert.Equal(t, adapters.EventNotificationReceived, d.calls[0].name)
	assert.Equal(t, map[string]any{"id": "n1", "message": "hello"}, d.calls[0].payload)
	assert.Equal(t, adapters.EventNotificationInfoReceived, d.calls[1].name)
	assert.Equal(t, map[string]any{
		"notification":      map[string]any{"id": "n1", "message": "hello"},
		"deliveryMechanism": "standard",
	}, d.calls[1].payload)
}

func TestReceiver_OneDispatchPerCallback(t *testing.T) {
	d := &recordingDispatcher{}
	r := NewReceiver(d, adapters.NewNoOpLoggerAdapter())
	n := platform.JSONModel{"id": "n1"}
	allowed := true

	r.OnSystemNotificationReceived(platform.JSONModel{"type": "re.notifica.notification.system.Inbox"})
	r.OnUnknownNotificationReceived(platform.JSONModel{"messageId": "m1"})
	r.OnNotificationOpened(n)
	r.OnActionOpened(n, platform.JSONModel{"label": "Open"})
	r.OnAllowedUIChanged(nil)
	r.OnAllowedUIChanged(&allowed)

	names := make([]adapters.EventName, len(d.calls))
	for i, c := range d.calls {
		names[i] = c.name
	}
	assert.Equal(t, []adapters.EventName{
		adapters.EventSystemNotificationReceived,
		adapters.EventUnknownNotificationReceived,
		adapters.EventNotificationOpened,
		adapters.EventNotificationActionOpened,
		adapters.EventNotificationSettingsChanged,
	}, names)
	assert.Equal(t, map[string]any{
		"notification": map[string]any{"id": "n1"},
		"action":       map[string]any{"label": "Open"},
	}, d.calls[3].payload)
	assert.Equal(t, true, d.calls[4].payload)
}

type fakeSDK struct {
	remoteEnabled bool
	allowedUI     bool
}

func (s *fakeSDK) HasRemoteNotificationsEnabled() bool { return s.remoteEnabled }
func (s *fakeSDK) AllowedUI() bool                     { return s.allowedUI }
func (s *fakeSDK) EnableRemoteNotifications() error    { s.remoteEnabled = true; return nil }
func (s *fakeSDK) DisableRemoteNotifications() error   { s.remoteEnabled = false; return nil }

type fakeOS struct {
	mu sync.Mutex

	sdkVersion           int
	notificationsEnabled bool
	granted              bool
	rationaleBefore      bool
	rationaleAfter       bool
	answered             bool

	// answer is sent to the pending request when set; otherwise the test
	// answers through respond.
	answer    *bool
	pending   func(bool)
	launches  int
	alert     []string
	alertErr  error
	settings  int
	launchErr error
}

func (o *fakeOS) SDKVersion() int            { return o.sdkVersion }
func (o *fakeOS) NotificationsEnabled() bool { return o.notificationsEnabled }

func (o *fakeOS) PermissionGranted(string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.granted
}

func (o *fakeOS) ShouldShowRequestPermissionRationale(string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.answered {
		return o.rationaleAfter
	}
	return o.rationaleBefore
}

func (o *fakeOS) LaunchPermissionRequest(_ string, result func(bool)) error {
	o.mu.Lock()
	if o.launchErr != nil {
		o.mu.Unlock()
		return o.launchErr
	}
	o.launches++
	answer := o.answer
	o.pending = result
	o.mu.Unlock()

	if answer != nil {
		o.respond(*answer)
	}
	return nil
}

func (o *fakeOS) respond(granted bool) {
	o.mu.Lock()
	o.answered = true
	o.granted = granted
	result := o.pending
	o.pending = nil
	o.mu.Unlock()
	if result != nil {
		result(granted)
	}
}

func (o *fakeOS) hasPending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending != nil
}

func (o *fakeOS) ShowAlert(_ context.Context, title, message, buttonText string) error {
	o.alert = []string{title, message, buttonText}
	return o.alertErr
}

func (o *fakeOS) DefaultButtonText() string { return "OK" }

func (o *fakeOS) OpenAppSettings() error {
	o.settings++
	return nil
}

func boolPtr(b bool) *bool { return &b }

func newService(os *fakeOS) *Service {
	return NewService(&fakeSDK{}, os, adapters.NewNoOpLoggerAdapter())
}

func TestService_OptionSettersAreNoOps(t *testing.T) {
	s := newService(&fakeOS{sdkVersion: 34})
	ctx := context.Background()
	assert.NoError(t, s.SetAuthorizationOptions(ctx, []string{"alert"}))
	assert.NoError(t, s.SetCategoryOptions(ctx, nil))
	assert.NoError(t, s.SetPresentationOptions(ctx, []string{"banner"}))
}

func TestService_RemoteNotifications(t *testing.T) {
	sdk := &fakeSDK{}
	s := NewService(sdk, &fakeOS{sdkVersion: 34}, nil)
	ctx := context.Background()

	require.NoError(t, s.EnableRemoteNotifications(ctx))
	enabled, err := s.HasRemoteNotificationsEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, s.DisableRemoteNotifications(ctx))
	enabled, _ = s.HasRemoteNotificationsEnabled(ctx)
	assert.False(t, enabled)
}

func TestService_CheckPermissionStatus(t *testing.T) {
	tests := []struct {
		name string
		os   *fakeOS
		want pushbridge.PermissionStatus
	}{
		{"legacy enabled", &fakeOS{sdkVersion: 32, notificationsEnabled: true}, pushbridge.PermissionGranted},
		{"legacy disabled", &fakeOS{sdkVersion: 32}, pushbridge.PermissionPermanentlyDenied},
		{"granted", &fakeOS{sdkVersion: 33, granted: true}, pushbridge.PermissionGranted},
		{"not granted", &fakeOS{sdkVersion: 34}, pushbridge.PermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := newService(tt.os).CheckPermissionStatus(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, status)
		})
	}
}

func TestService_ShouldShowPermissionRationale(t *testing.T) {
	show, err := newService(&fakeOS{sdkVersion: 32, rationaleBefore: true}).ShouldShowPermissionRationale(context.Background())
	require.NoError(t, err)
	assert.False(t, show)

	show, err = newService(&fakeOS{sdkVersion: 33, rationaleBefore: true}).ShouldShowPermissionRationale(context.Background())
	require.NoError(t, err)
	assert.True(t, show)
}

func TestService_RequestPermissionOutcomes(t *testing.T) {
	tests := []struct {
		name string
		os   *fakeOS
		want pushbridge.PermissionStatus
	}{
		{"legacy", &fakeOS{sdkVersion: 30, notificationsEnabled: true}, pushbridge.PermissionGranted},
		{"already granted", &fakeOS{sdkVersion: 33, granted: true}, pushbridge.PermissionGranted},
		{"granted", &fakeOS{sdkVersion: 33, answer: boolPtr(true)}, pushbridge.PermissionGranted},
		{"denied with rationale after", &fakeOS{sdkVersion: 33, answer: boolPtr(false), rationaleAfter: true}, pushbridge.PermissionDenied},
		{"denied with rationale before", &fakeOS{sdkVersion: 33, answer: boolPtr(false), rationaleBefore: true}, pushbridge.PermissionDenied},
		{"denied without rationale", &fakeOS{sdkVersion: 33, answer: boolPtr(false)}, pushbridge.PermissionPermanentlyDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := newService(tt.os).RequestPermission(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, status)
		})
	}
}

func TestService_RequestPermissionWhileRunning(t *testing.T) {
	os := &fakeOS{sdkVersion: 34}
	s := newService(os)

	done := make(chan pushbridge.PermissionStatus, 1)
	go func() {
		status, _ := s.RequestPermission(context.Background())
		done <- status
	}()
	require.Eventually(t, os.hasPending, time.Second, 5*time.Millisecond)

	_, err := s.RequestPermission(context.Background())
	assert.ErrorIs(t, err, ErrPermissionRequestRunning)

	os.respond(true)
	assert.Equal(t, pushbridge.PermissionGranted, <-done)

	// The flow is reset once the first request finished.
	status, err := s.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pushbridge.PermissionGranted, status)
	assert.Equal(t, 1, os.launches)
}

func TestService_RequestPermissionCancelled(t *testing.T) {
	os := &fakeOS{sdkVersion: 34}
	s := newService(os)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := s.RequestPermission(ctx)
		done <- err
	}()
	require.Eventually(t, os.hasPending, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	// The late answer still clears the running request.
	os.respond(false)
	os.answer = boolPtr(true)
	status, err := s.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pushbridge.PermissionGranted, status)
}

func TestService_RequestPermissionLaunchFailure(t *testing.T) {
	os := &fakeOS{sdkVersion: 34, launchErr: errors.New("no activity")}
	s := newService(os)

	_, err := s.RequestPermission(context.Background())
	assert.Error(t, err)

	os.launchErr = nil
	os.answer = boolPtr(true)
	status, err := s.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pushbridge.PermissionGranted, status)
}

func TestService_PresentPermissionRationale(t *testing.T) {
	os := &fakeOS{sdkVersion: 34}
	s := newService(os)

	require.NoError(t, s.PresentPermissionRationale(context.Background(), pushbridge.Rationale{Title: "Hi", Message: "Please"}))
	assert.Equal(t, []string{"Hi", "Please", "OK"}, os.alert)

	os.alertErr = errors.New("window gone")
	assert.ErrorIs(t, s.PresentPermissionRationale(context.Background(), pushbridge.Rationale{Message: "Please"}), ErrRationaleUnavailable)
}

func TestService_OpenAppSettings(t *testing.T) {
	os := &fakeOS{sdkVersion: 34}
	require.NoError(t, newService(os).OpenAppSettings(context.Background()))
	assert.Equal(t, 1, os.settings)
}

func TestService_ThroughPlugin(t *testing.T) {
	os := &fakeOS{sdkVersion: 34, answer: boolPtr(false)}
	bridge, err := pushbridge.NewBridge(pushbridge.BridgeConfig{
		Push:          newService(os),
		LoggerAdapter: adapters.NewNoOpLoggerAdapter(),
	})
	require.NoError(t, err)
	defer bridge.Dispose()

	facade, err := pushbridge.NewFacade(pushbridge.FacadeConfig{Transport: bridge.Transport()})
	require.NoError(t, err)

	status, err := facade.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pushbridge.PermissionPermanentlyDenied, status)

	var got []pushbridge.Payload
	facade.OnNotificationInfoReceived(func(data pushbridge.Payload) { got = append(got, data) })
	require.NoError(t, facade.Start(context.Background()))
	NewReceiver(bridge, nil).OnNotificationReceived(platform.JSONModel{"id": "n1"}, DeliverySilent)

	require.Len(t, got, 1)
	assert.Equal(t, adapters.MustPayload(map[string]any{
		"notification":      map[string]any{"id": "n1"},
		"deliveryMechanism": "silent",
	}), got[0])
}
