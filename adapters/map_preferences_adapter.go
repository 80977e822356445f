package adapters

import (
	"fmt"
	"strconv"
	"sync"
)

// MapPreferencesAdapter is an in-memory PreferencesAdapter.
// Values may be booleans or strings ("true"/"false" as iOS hosts send them).
type MapPreferencesAdapter struct {
	values map[string]any
	mu     sync.RWMutex
}

var _ PreferencesAdapter = (*MapPreferencesAdapter)(nil)

// NewMapPreferencesAdapter creates an adapter holding a copy of values.
func NewMapPreferencesAdapter(values map[string]any) *MapPreferencesAdapter {
	m := &MapPreferencesAdapter{values: make(map[string]any, len(values))}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

// Set stores a preference value.
func (m *MapPreferencesAdapter) Set(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Delete removes a preference.
func (m *MapPreferencesAdapter) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}

func (m *MapPreferencesAdapter) lookup(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.values[key]; ok {
		return v, true
	}
	v, ok := m.values[CordovaPreferencePrefix+key]
	return v, ok
}

// GetBool returns the boolean stored under key or its Cordova-prefixed form.
func (m *MapPreferencesAdapter) GetBool(key string, def bool) bool {
	v, ok := m.lookup(key)
	if !ok {
		return def
	}
	switch v := v.(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return def
		}
		return b
	default:
		return def
	}
}

// GetString returns the value stored under key formatted as a string.
func (m *MapPreferencesAdapter) GetString(key string, def string) string {
	v, ok := m.lookup(key)
	if !ok {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
