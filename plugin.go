package pushbridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/Tap30/pushbridge-go/adapters"
)

// Command names understood by Plugin.Execute.
const (
	CommandSetAuthorizationOptions       = "setAuthorizationOptions"
	CommandSetCategoryOptions            = "setCategoryOptions"
	CommandSetPresentationOptions        = "setPresentationOptions"
	CommandHasRemoteNotificationsEnabled = "hasRemoteNotificationsEnabled"
	CommandAllowedUI                     = "allowedUI"
	CommandEnableRemoteNotifications     = "enableRemoteNotifications"
	CommandDisableRemoteNotifications    = "disableRemoteNotifications"
	CommandCheckPermissionStatus         = "checkPermissionStatus"
	CommandShouldShowPermissionRationale = "shouldShowPermissionRationale"
	CommandPresentPermissionRationale    = "presentPermissionRationale"
	CommandRequestPermission             = "requestPermission"
	CommandOpenAppSettings               = "openAppSettings"
	CommandRegisterListener              = "registerListener"
)

// Commands lists every command the plugin routes.
var Commands = []string{
	CommandSetAuthorizationOptions,
	CommandSetCategoryOptions,
	CommandSetPresentationOptions,
	CommandHasRemoteNotificationsEnabled,
	CommandAllowedUI,
	CommandEnableRemoteNotifications,
	CommandDisableRemoteNotifications,
	CommandCheckPermissionStatus,
	CommandShouldShowPermissionRationale,
	CommandPresentPermissionRationale,
	CommandRequestPermission,
	CommandOpenAppSettings,
	CommandRegisterListener,
}

// Plugin routes commands coming from the host to the push service and to the
// event broker.
type Plugin struct {
	broker      *EventBroker
	push        PushService
	preferences PreferencesAdapter
	logger      LoggerAdapter
}

// NewPlugin creates a command dispatcher.
func NewPlugin(config PluginConfig) (*Plugin, error) {
	if config.Broker == nil {
		return nil, errors.New("Broker is required")
	}
	if config.Push == nil {
		return nil, errors.New("Push is required")
	}
	if config.Preferences == nil {
		config.Preferences = adapters.NewMapPreferencesAdapter(nil)
	}
	if config.LoggerAdapter == nil {
		config.LoggerAdapter = adapters.NewPrintLoggerAdapter(adapters.LogLevelWarn)
	}

	return &Plugin{
		broker:      config.Broker,
		push:        config.Push,
		preferences: config.Preferences,
		logger:      config.LoggerAdapter,
	}, nil
}

// Execute runs action and reports its outcome through cb. It returns false
// for unknown actions, after sending an error result.
func (p *Plugin) Execute(ctx context.Context, action string, args Args, cb CallbackContext) bool {
	var err error
	switch action {
	case CommandSetAuthorizationOptions:
		err = p.setOptions(ctx, args, cb, p.push.SetAuthorizationOptions)
	case CommandSetCategoryOptions:
		err = p.setOptions(ctx, args, cb, p.push.SetCategoryOptions)
	case CommandSetPresentationOptions:
		err = p.setOptions(ctx, args, cb, p.push.SetPresentationOptions)
	case CommandHasRemoteNotificationsEnabled:
		err = p.getBool(ctx, cb, p.push.HasRemoteNotificationsEnabled)
	case CommandAllowedUI:
		err = p.getBool(ctx, cb, p.push.AllowedUI)
	case CommandEnableRemoteNotifications:
		err = p.run(ctx, cb, p.push.EnableRemoteNotifications)
	case CommandDisableRemoteNotifications:
		err = p.run(ctx, cb, p.push.DisableRemoteNotifications)
	case CommandCheckPermissionStatus:
		err = p.permissionStatus(ctx, cb, p.push.CheckPermissionStatus)
	case CommandShouldShowPermissionRationale:
		err = p.getBool(ctx, cb, p.push.ShouldShowPermissionRationale)
	case CommandPresentPermissionRationale:
		err = p.presentPermissionRationale(ctx, args, cb)
	case CommandRequestPermission:
		err = p.permissionStatus(ctx, cb, p.push.RequestPermission)
	case CommandOpenAppSettings:
		err = p.run(ctx, cb, p.push.OpenAppSettings)
	case CommandRegisterListener:
		err = p.registerListener(cb)
	default:
		if err := fail(cb, fmt.Sprintf("No implementation for action '%s'.", action)); err != nil {
			p.logger.Debug("Could not report unknown action '%s': %v", action, err)
		}
		return false
	}

	if err != nil {
		p.logger.Debug("Could not send the result of '%s': %v", action, err)
	}
	return true
}

func (p *Plugin) setOptions(ctx context.Context, args Args, cb CallbackContext, set func(context.Context, []string) error) error {
	options, err := args.StringSlice(0)
	if err != nil {
		if errors.Is(err, ErrMissingArgument) {
			return fail(cb, "Missing options parameter.")
		}
		return fail(cb, err.Error())
	}
	if err := set(ctx, options); err != nil {
		return fail(cb, err.Error())
	}
	return void(cb)
}

func (p *Plugin) getBool(ctx context.Context, cb CallbackContext, get func(context.Context) (bool, error)) error {
	v, err := get(ctx)
	if err != nil {
		return fail(cb, err.Error())
	}
	return success(cb, v)
}

func (p *Plugin) run(ctx context.Context, cb CallbackContext, op func(context.Context) error) error {
	if err := op(ctx); err != nil {
		return fail(cb, err.Error())
	}
	return void(cb)
}

func (p *Plugin) permissionStatus(ctx context.Context, cb CallbackContext, get func(context.Context) (PermissionStatus, error)) error {
	status, err := get(ctx)
	if err != nil {
		return fail(cb, err.Error())
	}
	return success(cb, string(status))
}

func (p *Plugin) presentPermissionRationale(ctx context.Context, args Args, cb CallbackContext) error {
	obj, err := args.Object(0)
	if err != nil {
		if errors.Is(err, ErrMissingArgument) {
			return fail(cb, "Missing rationale parameter.")
		}
		return fail(cb, err.Error())
	}

	message, ok := obj["message"].(string)
	if !ok {
		return fail(cb, "Missing message parameter.")
	}
	rationale := Rationale{Message: message}
	if title, ok := obj["title"].(string); ok {
		rationale.Title = title
	}
	if buttonText, ok := obj["buttonText"].(string); ok {
		rationale.ButtonText = buttonText
	}

	p.logger.Debug("Presenting permission rationale for notifications.")
	if err := p.push.PresentPermissionRationale(ctx, rationale); err != nil {
		return fail(cb, err.Error())
	}
	return void(cb)
}

// registerListener makes cb the broker's consumer. The callback stays open
// and receives one result per event.
func (p *Plugin) registerListener(cb CallbackContext) error {
	consumer := ConsumerFunc(func(event Event) error {
		return cb.SendPluginResult(PluginResult{
			Status:       adapters.StatusOK,
			Message:      event.Message(),
			KeepCallback: true,
		})
	})

	if err := p.broker.Setup(p.preferences, consumer); err != nil {
		return fail(cb, err.Error())
	}
	return nil
}
