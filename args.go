package pushbridge

import (
	"errors"
	"fmt"
)

// ErrMissingArgument is returned when a command argument is absent or null.
var ErrMissingArgument = errors.New("missing argument")

// Args are the positional arguments of a plugin command as decoded from the
// bridge.
type Args []any

// IsNull reports whether the argument at i is absent or null.
func (a Args) IsNull(i int) bool {
	return i < 0 || i >= len(a) || a[i] == nil
}

// StringSlice returns the argument at i as a list of strings.
func (a Args) StringSlice(i int) ([]string, error) {
	if a.IsNull(i) {
		return nil, fmt.Errorf("argument %d: %w", i, ErrMissingArgument)
	}
	switch v := a[i].(type) {
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for j, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("argument %d: element %d is %T, not a string", i, j, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("argument %d: expected a list of strings, got %T", i, a[i])
	}
}

// Object returns the argument at i as a JSON object.
func (a Args) Object(i int) (map[string]any, error) {
	if a.IsNull(i) {
		return nil, fmt.Errorf("argument %d: %w", i, ErrMissingArgument)
	}
	switch v := a[i].(type) {
	case map[string]any:
		return v, nil
	case map[string]string:
		out := make(map[string]any, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("argument %d: expected an object, got %T", i, a[i])
	}
}
