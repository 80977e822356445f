package adapters

import (
	"strings"

	"github.com/spf13/viper"
)

// ViperPreferencesAdapter reads plugin preferences from a viper instance:
// config files, PUSHBRIDGE_* environment variables and bound flags.
type ViperPreferencesAdapter struct {
	v *viper.Viper
}

var _ PreferencesAdapter = (*ViperPreferencesAdapter)(nil)

// NewViperPreferencesAdapter wraps v. A nil v creates a fresh instance that
// only reads the environment.
func NewViperPreferencesAdapter(v *viper.Viper) *ViperPreferencesAdapter {
	if v == nil {
		v = viper.New()
		v.SetEnvPrefix("PUSHBRIDGE")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		v.AutomaticEnv()
	}
	return &ViperPreferencesAdapter{v: v}
}

// LoadViperPreferences reads the preferences file at path (any format viper
// understands) with environment overrides.
func LoadViperPreferences(path string) (*ViperPreferencesAdapter, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("PUSHBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return &ViperPreferencesAdapter{v: v}, nil
}

func (a *ViperPreferencesAdapter) key(key string) (string, bool) {
	if a.v.IsSet(key) {
		return key, true
	}
	if prefixed := CordovaPreferencePrefix + key; a.v.IsSet(prefixed) {
		return prefixed, true
	}
	return "", false
}

// GetBool returns the boolean stored under key or its Cordova-prefixed form.
func (a *ViperPreferencesAdapter) GetBool(key string, def bool) bool {
	k, ok := a.key(key)
	if !ok {
		return def
	}
	return a.v.GetBool(k)
}

// GetString returns the string stored under key or its Cordova-prefixed form.
func (a *ViperPreferencesAdapter) GetString(key string, def string) string {
	k, ok := a.key(key)
	if !ok {
		return def
	}
	return a.v.GetString(k)
}
