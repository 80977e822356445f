// Package platform holds what the Android and iOS native surfaces share: the
// dispatcher they emit into and the model contract of the push SDK objects
// they forward.
package platform

import (
	"fmt"
	"reflect"

	"github.com/Tap30/pushbridge-go/adapters"
)

// Dispatcher receives native events. *pushbridge.EventBroker and
// *pushbridge.Bridge both satisfy it.
type Dispatcher interface {
	Dispatch(name adapters.EventName, payload any) error
}

// Model is a push SDK object that knows its JSON representation.
type Model interface {
	ToJSON() (map[string]any, error)
}

// JSONModel is a Model already in its JSON form, as produced by decoding an
// SDK object received from elsewhere.
type JSONModel map[string]any

// ToJSON returns m unchanged.
func (m JSONModel) ToJSON() (map[string]any, error) {
	return map[string]any(m), nil
}

// ModelJSON serialises m. A nil model, including a nil pointer or map held
// in the interface, yields a nil payload.
func ModelJSON(m Model) (any, error) {
	if isNil(m) {
		return nil, nil
	}
	v, err := m.ToJSON()
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v, nil
}

func isNil(m Model) bool {
	if m == nil {
		return true
	}
	switch rv := reflect.ValueOf(m); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// Emit builds a payload and dispatches it as name. Failures are logged and
// swallowed: one broken event must not stop the SDK callback that raised it.
// It reports whether the event was dispatched.
func Emit(d Dispatcher, logger adapters.LoggerAdapter, name adapters.EventName, build func() (any, error)) bool {
	payload, err := build()
	if err == nil {
		err = d.Dispatch(name, payload)
	}
	if err != nil {
		logger.Error("Failed to emit the %s event. %v", name, err)
		return false
	}
	return true
}

// Value returns a build func for an already known payload.
func Value(payload any) func() (any, error) {
	return func() (any, error) {
		return payload, nil
	}
}

// StringKeys keeps the entries of m whose key is a string. Native dictionaries
// may carry keys of other types that cannot cross the bridge.
func StringKeys(m map[any]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if key, ok := k.(string); ok {
			out[key] = v
		}
	}
	return out
}

// Fields builds an object payload from model fields, failing on the first
// model that cannot be serialised.
func Fields(fields map[string]Model) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for key, m := range fields {
		v, err := ModelJSON(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out[key] = v
	}
	return out, nil
}
