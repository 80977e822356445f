package pushbridge

import (
	"context"
	"fmt"
)

// PermissionStatus is the notification permission state reported to the
// host. The string values cross the bridge unchanged.
type PermissionStatus string

const (
	PermissionDenied            PermissionStatus = "denied"
	PermissionGranted           PermissionStatus = "granted"
	PermissionPermanentlyDenied PermissionStatus = "permanently_denied"
)

// ParsePermissionStatus parses one of the three status literals.
func ParsePermissionStatus(s string) (PermissionStatus, error) {
	switch status := PermissionStatus(s); status {
	case PermissionDenied, PermissionGranted, PermissionPermanentlyDenied:
		return status, nil
	}
	return "", fmt.Errorf("unknown permission status %q", s)
}

// Rationale is the explanation shown before asking for the notifications
// permission. Message is required; an empty ButtonText means the platform
// default.
type Rationale struct {
	Title      string `json:"title,omitempty"`
	Message    string `json:"message"`
	ButtonText string `json:"buttonText,omitempty"`
}

// PushService is the platform side of the plugin's one-shot commands.
// Android and iOS provide their own implementations.
type PushService interface {
	SetAuthorizationOptions(ctx context.Context, options []string) error
	SetCategoryOptions(ctx context.Context, options []string) error
	SetPresentationOptions(ctx context.Context, options []string) error

	HasRemoteNotificationsEnabled(ctx context.Context) (bool, error)
	AllowedUI(ctx context.Context) (bool, error)
	EnableRemoteNotifications(ctx context.Context) error
	DisableRemoteNotifications(ctx context.Context) error

	CheckPermissionStatus(ctx context.Context) (PermissionStatus, error)
	ShouldShowPermissionRationale(ctx context.Context) (bool, error)
	PresentPermissionRationale(ctx context.Context, rationale Rationale) error
	RequestPermission(ctx context.Context) (PermissionStatus, error)
	OpenAppSettings(ctx context.Context) error
}
