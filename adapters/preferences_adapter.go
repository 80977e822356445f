package adapters

// HoldEventsUntilReadyPreference makes the broker queue events until the push
// SDK reports it is ready.
const HoldEventsUntilReadyPreference = "hold_events_until_ready"

// CordovaPreferencePrefix is the namespace Cordova hosts use for the plugin's
// preferences in config.xml.
const CordovaPreferencePrefix = "re.notifica.cordova."

// PreferencesAdapter exposes host-provided plugin preferences.
// Implement this interface to read preferences from the host's own store.
type PreferencesAdapter interface {
	// GetBool returns the boolean stored under key, or def when the key is
	// missing or cannot be read as a boolean.
	GetBool(key string, def bool) bool

	// GetString returns the string stored under key, or def when missing.
	GetString(key string, def string) string
}
