package android

import (
	"context"
	"errors"
	"sync"

	pushbridge "github.com/Tap30/pushbridge-go"
	"github.com/Tap30/pushbridge-go/adapters"
)

const (
	// PushPermission is the runtime permission guarding notifications.
	PushPermission = "android.permission.POST_NOTIFICATIONS"

	// Tiramisu is the first SDK level with a notifications runtime
	// permission.
	Tiramisu = 33
)

var (
	ErrPermissionRequestRunning = errors.New("A request for permissions is already running, please wait for it to finish before doing another request.")
	ErrRationaleUnavailable     = errors.New("Unable to present the rationale alert.")
	ErrAppSettingsUnavailable   = errors.New("Unable to open the app settings.")
)

// SDK is the part of the Android push SDK the plugin drives.
type SDK interface {
	HasRemoteNotificationsEnabled() bool
	AllowedUI() bool
	EnableRemoteNotifications() error
	DisableRemoteNotifications() error
}

// OS is the part of the Android runtime the permission flow needs.
type OS interface {
	SDKVersion() int
	// NotificationsEnabled reports the app-level notifications switch, the
	// only signal available below Tiramisu.
	NotificationsEnabled() bool
	PermissionGranted(permission string) bool
	ShouldShowRequestPermissionRationale(permission string) bool
	// LaunchPermissionRequest shows the system dialog. result is called once
	// the user answered.
	LaunchPermissionRequest(permission string, result func(granted bool)) error
	// ShowAlert presents a non-cancelable alert and returns once it has been
	// dismissed.
	ShowAlert(ctx context.Context, title, message, buttonText string) error
	DefaultButtonText() string
	OpenAppSettings() error
}

// Service implements the plugin commands on Android. The iOS-only option
// setters are accepted and ignored.
type Service struct {
	sdk    SDK
	os     OS
	logger adapters.LoggerAdapter

	mu                  sync.Mutex
	requestRunning      bool
	shouldShowRationale bool
}

var _ pushbridge.PushService = (*Service)(nil)

// NewService creates the Android command surface.
func NewService(sdk SDK, os OS, logger adapters.LoggerAdapter) *Service {
	if logger == nil {
		logger = adapters.NewPrintLoggerAdapter(adapters.LogLevelWarn)
	}
	return &Service{sdk: sdk, os: os, logger: logger}
}

// The option setters only apply on iOS.
func (s *Service) SetAuthorizationOptions(context.Context, []string) error { return nil }
func (s *Service) SetCategoryOptions(context.Context, []string) error      { return nil }
func (s *Service) SetPresentationOptions(context.Context, []string) error  { return nil }

// HasRemoteNotificationsEnabled asks the push SDK.
func (s *Service) HasRemoteNotificationsEnabled(context.Context) (bool, error) {
	return s.sdk.HasRemoteNotificationsEnabled(), nil
}

func (s *Service) AllowedUI(context.Context) (bool, error) {
	return s.sdk.AllowedUI(), nil
}

func (s *Service) EnableRemoteNotifications(context.Context) error {
	return s.sdk.EnableRemoteNotifications()
}

func (s *Service) DisableRemoteNotifications(context.Context) error {
	return s.sdk.DisableRemoteNotifications()
}

// CheckPermissionStatus never reports permanently_denied on Tiramisu and
// later: that state is only known after a request.
func (s *Service) CheckPermissionStatus(context.Context) (pushbridge.PermissionStatus, error) {
	if s.os.SDKVersion() < Tiramisu {
		return s.legacyStatus(), nil
	}
	if s.os.PermissionGranted(PushPermission) {
		return pushbridge.PermissionGranted, nil
	}
	return pushbridge.PermissionDenied, nil
}

func (s *Service) legacyStatus() pushbridge.PermissionStatus {
	if s.os.NotificationsEnabled() {
		return pushbridge.PermissionGranted
	}
	return pushbridge.PermissionPermanentlyDenied
}

// ShouldShowPermissionRationale is always false before Tiramisu, where the
// permission does not exist.
func (s *Service) ShouldShowPermissionRationale(context.Context) (bool, error) {
	if s.os.SDKVersion() < Tiramisu {
		return false, nil
	}
	return s.os.ShouldShowRequestPermissionRationale(PushPermission), nil
}

// PresentPermissionRationale shows an alert and waits for it to be
// dismissed. An empty button text falls back to the system default.
func (s *Service) PresentPermissionRationale(ctx context.Context, rationale pushbridge.Rationale) error {
	buttonText := rationale.ButtonText
	if buttonText == "" {
		buttonText = s.os.DefaultButtonText()
	}

	s.logger.Debug("Presenting permission rationale for notifications.")
	if err := s.os.ShowAlert(ctx, rationale.Title, rationale.Message, buttonText); err != nil {
		s.logger.Warn("Failed to present the permission rationale: %v", err)
		return ErrRationaleUnavailable
	}
	return nil
}

// RequestPermission asks for the notifications permission and waits for the
// answer. A denial without a rationale before or after the request means the
// user checked "don't ask again".
func (s *Service) RequestPermission(ctx context.Context) (pushbridge.PermissionStatus, error) {
	if s.os.SDKVersion() < Tiramisu {
		return s.legacyStatus(), nil
	}

	s.mu.Lock()
	if s.requestRunning {
		s.mu.Unlock()
		s.logger.Warn(ErrPermissionRequestRunning.Error())
		return "", ErrPermissionRequestRunning
	}
	if s.os.PermissionGranted(PushPermission) {
		s.mu.Unlock()
		return pushbridge.PermissionGranted, nil
	}
	s.shouldShowRationale = s.os.ShouldShowRequestPermissionRationale(PushPermission)
	s.requestRunning = true
	s.mu.Unlock()

	results := make(chan pushbridge.PermissionStatus, 1)
	err := s.os.LaunchPermissionRequest(PushPermission, func(granted bool) {
		results <- s.onPermissionResult(granted)
	})
	if err != nil {
		s.mu.Lock()
		s.requestRunning = false
		s.shouldShowRationale = false
		s.mu.Unlock()
		return "", err
	}

	select {
	case status := <-results:
		return status, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Service) onPermissionResult(granted bool) pushbridge.PermissionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := pushbridge.PermissionDenied
	switch {
	case granted:
		status = pushbridge.PermissionGranted
	case !s.shouldShowRationale && !s.os.ShouldShowRequestPermissionRationale(PushPermission):
		status = pushbridge.PermissionPermanentlyDenied
	}

	s.shouldShowRationale = false
	s.requestRunning = false
	return status
}

// OpenAppSettings opens the app details screen.
func (s *Service) OpenAppSettings(context.Context) error {
	if err := s.os.OpenAppSettings(); err != nil {
		s.logger.Warn("Failed to open the app settings: %v", err)
		return ErrAppSettingsUnavailable
	}
	return nil
}
