package pushbridge

import "github.com/Tap30/pushbridge-go/adapters"

// CallbackContext sends results for one command invocation back across the
// bridge.
type CallbackContext interface {
	// SendPluginResult delivers result. It returns ErrTransportClosed once the
	// other side is gone.
	SendPluginResult(result PluginResult) error
}

// CallbackFunc adapts a function to the CallbackContext interface.
type CallbackFunc func(result PluginResult) error

// SendPluginResult calls f(result).
func (f CallbackFunc) SendPluginResult(result PluginResult) error {
	return f(result)
}

func success(cb CallbackContext, message any) error {
	return cb.SendPluginResult(PluginResult{Status: adapters.StatusOK, Message: message})
}

func void(cb CallbackContext) error {
	return cb.SendPluginResult(PluginResult{Status: adapters.StatusOK})
}

func fail(cb CallbackContext, message string) error {
	return cb.SendPluginResult(PluginResult{Status: adapters.StatusError, Message: message})
}
