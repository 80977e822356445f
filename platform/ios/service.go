package ios

import (
	"context"
	"errors"
	"fmt"

	pushbridge "github.com/Tap30/pushbridge-go"
	"github.com/Tap30/pushbridge-go/adapters"
)

var (
	ErrNotImplemented         = errors.New("This method is not implemented in iOS.")
	ErrPermissionRequest      = errors.New("Unable to request notifications permission.")
	ErrAppSettingsUnavailable = errors.New("Unable to open the application settings.")

	// ErrRegistrationFailed stands in for a registration failure the SDK
	// reported without an error.
	ErrRegistrationFailed = errors.New("Unable to register for remote notifications.")
)

// AuthorizationStatus mirrors UNAuthorizationStatus.
type AuthorizationStatus int

const (
	AuthorizationNotDetermined AuthorizationStatus = iota
	AuthorizationDenied
	AuthorizationAuthorized
	AuthorizationProvisionalStatus
	AuthorizationEphemeral
)

// SDK is the part of the iOS push SDK the plugin drives.
type SDK interface {
	SetAuthorizationOptions(options AuthorizationOptions)
	AuthorizationOptions() AuthorizationOptions
	SetCategoryOptions(options CategoryOptions)
	SetPresentationOptions(options PresentationOptions)
	HasRemoteNotificationsEnabled() bool
	AllowedUI() bool
	EnableRemoteNotifications(ctx context.Context) error
	DisableRemoteNotifications()
}

// NotificationCenter is the part of UNUserNotificationCenter and UIApplication
// the permission flow needs.
type NotificationCenter interface {
	Version() Version
	AuthorizationStatus(ctx context.Context) (AuthorizationStatus, error)
	RequestAuthorization(ctx context.Context, options AuthorizationOptions) (bool, error)
	OpenSettings(ctx context.Context) (bool, error)
}

// Service implements the plugin commands on iOS.
type Service struct {
	sdk    SDK
	center NotificationCenter
	logger adapters.LoggerAdapter
}

var _ pushbridge.PushService = (*Service)(nil)

// NewService creates the iOS command surface.
func NewService(sdk SDK, center NotificationCenter, logger adapters.LoggerAdapter) *Service {
	if logger == nil {
		logger = adapters.NewPrintLoggerAdapter(adapters.LogLevelWarn)
	}
	return &Service{sdk: sdk, center: center, logger: logger}
}

// SetAuthorizationOptions parses options for the running iOS version and
// hands them to the SDK. Unknown or unsupported names are skipped.
func (s *Service) SetAuthorizationOptions(_ context.Context, options []string) error {
	s.sdk.SetAuthorizationOptions(ParseAuthorizationOptions(options, s.center.Version()))
	return nil
}

func (s *Service) SetCategoryOptions(_ context.Context, options []string) error {
	s.sdk.SetCategoryOptions(ParseCategoryOptions(options, s.center.Version()))
	return nil
}

func (s *Service) SetPresentationOptions(_ context.Context, options []string) error {
	s.sdk.SetPresentationOptions(ParsePresentationOptions(options, s.center.Version()))
	return nil
}

func (s *Service) HasRemoteNotificationsEnabled(context.Context) (bool, error) {
	return s.sdk.HasRemoteNotificationsEnabled(), nil
}

func (s *Service) AllowedUI(context.Context) (bool, error) {
	return s.sdk.AllowedUI(), nil
}

func (s *Service) EnableRemoteNotifications(ctx context.Context) error {
	return s.sdk.EnableRemoteNotifications(ctx)
}

func (s *Service) DisableRemoteNotifications(context.Context) error {
	s.sdk.DisableRemoteNotifications()
	return nil
}

// CheckPermissionStatus maps authorized to granted and denied to
// permanently_denied. Every other state, provisional included, is denied.
func (s *Service) CheckPermissionStatus(ctx context.Context) (pushbridge.PermissionStatus, error) {
	status, err := s.center.AuthorizationStatus(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read notification settings: %w", err)
	}
	switch status {
	case AuthorizationAuthorized:
		return pushbridge.PermissionGranted, nil
	case AuthorizationDenied:
		return pushbridge.PermissionPermanentlyDenied, nil
	default:
		return pushbridge.PermissionDenied, nil
	}
}

// ShouldShowPermissionRationale is always false: iOS has no rationale flow.
func (s *Service) ShouldShowPermissionRationale(context.Context) (bool, error) {
	return false, nil
}

// PresentPermissionRationale is not available on iOS.
func (s *Service) PresentPermissionRationale(context.Context, pushbridge.Rationale) error {
	return ErrNotImplemented
}

// RequestPermission asks for authorization with the options configured on the
// SDK, unless the user already decided.
func (s *Service) RequestPermission(ctx context.Context) (pushbridge.PermissionStatus, error) {
	status, err := s.CheckPermissionStatus(ctx)
	if err != nil {
		return "", err
	}
	if status == pushbridge.PermissionGranted || status == pushbridge.PermissionPermanentlyDenied {
		return status, nil
	}

	granted, err := s.center.RequestAuthorization(ctx, s.sdk.AuthorizationOptions())
	if err != nil {
		s.logger.Warn("Notification authorization request failed: %v", err)
		return "", ErrPermissionRequest
	}
	if granted {
		return pushbridge.PermissionGranted, nil
	}
	return pushbridge.PermissionDenied, nil
}

// OpenAppSettings opens the app's page in the Settings app.
func (s *Service) OpenAppSettings(ctx context.Context) error {
	opened, err := s.center.OpenSettings(ctx)
	if err != nil || !opened {
		return ErrAppSettingsUnavailable
	}
	return nil
}
