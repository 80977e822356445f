package adapters

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Payload.
type Kind int

const (
	KindBool Kind = iota + 1
	KindInt
	KindFloat
	KindString
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Payload is the value attached to an event. It is one of Bool, Int, Float,
// String, Object or Array. A nil Payload means the event has no payload,
// which is different from an empty Object.
type Payload interface {
	Kind() Kind
	// Value returns the payload as plain Go values (bool, int64, float64,
	// string, map[string]any, []any).
	Value() any
}

type (
	Bool   bool
	Int    int64
	Float  float64
	String string
	// Object values may hold nil entries, which encode as JSON null.
	Object map[string]Payload
	Array  []Payload
)

func (Bool) Kind() Kind   { return KindBool }
func (Int) Kind() Kind    { return KindInt }
func (Float) Kind() Kind  { return KindFloat }
func (String) Kind() Kind { return KindString }
func (Object) Kind() Kind { return KindObject }
func (Array) Kind() Kind  { return KindArray }

func (b Bool) Value() any   { return bool(b) }
func (i Int) Value() any    { return int64(i) }
func (f Float) Value() any  { return float64(f) }
func (s String) Value() any { return string(s) }

func (o Object) Value() any {
	out := make(map[string]any, len(o))
	for k, v := range o {
		out[k] = valueOf(v)
	}
	return out
}

func (a Array) Value() any {
	out := make([]any, len(a))
	for i, v := range a {
		out[i] = valueOf(v)
	}
	return out
}

func valueOf(p Payload) any {
	if p == nil {
		return nil
	}
	return p.Value()
}

// MarshalJSON always writes a fraction or exponent so the value decodes as a
// Float on the other side.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &UnsupportedPayloadError{Type: "float", Reason: "not a finite number"}
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return []byte(s), nil
}

// UnsupportedPayloadError is returned when a value cannot be carried by an
// event payload.
type UnsupportedPayloadError struct {
	Type   string
	Reason string
}

func (e *UnsupportedPayloadError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported event payload of type '%s': %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("unsupported event payload of type '%s'", e.Type)
}

// NewPayload converts a Go value into a Payload. nil yields a nil Payload.
// Maps must have string keys. Values that contain themselves are rejected.
// The result never shares memory with v.
func NewPayload(v any) (Payload, error) {
	var c converter
	return c.convert(v)
}

// converter remembers the maps, slices and pointers on the current path so
// cyclic values fail instead of recursing forever.
type converter struct {
	path map[visit]struct{}
}

type visit struct {
	typ reflect.Type
	ptr uintptr
	len int
}

// enter records rv on the path. It returns false when rv is already being
// converted further up.
func (c *converter) enter(rv reflect.Value) (visit, bool) {
	key := visit{typ: rv.Type(), ptr: rv.Pointer()}
	if rv.Kind() != reflect.Pointer {
		key.len = rv.Len()
	}
	if c.path == nil {
		c.path = make(map[visit]struct{})
	}
	if _, ok := c.path[key]; ok {
		return key, false
	}
	c.path[key] = struct{}{}
	return key, true
}

func (c *converter) leave(key visit) {
	delete(c.path, key)
}

func cyclic(rv reflect.Value) error {
	return &UnsupportedPayloadError{Type: rv.Type().String(), Reason: "cyclic value"}
}

func (c *converter) convert(v any) (Payload, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case Bool, Int, Float, String:
		if f, ok := v.(Float); ok {
			return newFloat(float64(f))
		}
		return v.(Payload), nil
	case Object:
		if len(v) == 0 {
			return Object{}, nil
		}
		key, ok := c.enter(reflect.ValueOf(v))
		if !ok {
			return nil, cyclic(reflect.ValueOf(v))
		}
		defer c.leave(key)
		out := make(Object, len(v))
		for k, item := range v {
			p, err := c.convert(item)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = p
		}
		return out, nil
	case Array:
		if len(v) == 0 {
			return Array{}, nil
		}
		key, ok := c.enter(reflect.ValueOf(v))
		if !ok {
			return nil, cyclic(reflect.ValueOf(v))
		}
		defer c.leave(key)
		out := make(Array, len(v))
		for i, item := range v {
			p, err := c.convert(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = p
		}
		return out, nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case int:
		return Int(v), nil
	case int8:
		return Int(v), nil
	case int16:
		return Int(v), nil
	case int32:
		return Int(v), nil
	case int64:
		return Int(v), nil
	case uint8:
		return Int(v), nil
	case uint16:
		return Int(v), nil
	case uint32:
		return Int(v), nil
	case uint:
		return newUint(uint64(v))
	case uint64:
		return newUint(v)
	case float32:
		return newFloat(float64(v))
	case float64:
		return newFloat(v)
	case number:
		return numberPayload(v)
	case []byte:
		return nil, &UnsupportedPayloadError{Type: "[]byte"}
	}

	return c.convertValue(reflect.ValueOf(v))
}

// MustPayload is like NewPayload but panics on unsupported values. It is
// meant for literals in tests and examples.
func MustPayload(v any) Payload {
	p, err := NewPayload(v)
	if err != nil {
		panic(err)
	}
	return p
}

func newUint(v uint64) (Payload, error) {
	if v > math.MaxInt64 {
		return nil, &UnsupportedPayloadError{Type: "uint64", Reason: "value overflows int64"}
	}
	return Int(int64(v)), nil
}

func newFloat(v float64) (Payload, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &UnsupportedPayloadError{Type: "float64", Reason: "not a finite number"}
	}
	return Float(v), nil
}

// number is satisfied by encoding/json and json-iterator numbers.
type number interface {
	String() string
	Int64() (int64, error)
	Float64() (float64, error)
}

func numberPayload(n number) (Payload, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(i), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, &UnsupportedPayloadError{Type: "json.Number", Reason: err.Error()}
	}
	return newFloat(f)
}

func (c *converter) convertValue(rv reflect.Value) (Payload, error) {
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
		key, ok := c.enter(rv)
		if !ok {
			return nil, cyclic(rv)
		}
		defer c.leave(key)
		return c.convert(rv.Elem().Interface())
	case reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return c.convert(rv.Elem().Interface())
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, &UnsupportedPayloadError{Type: rv.Type().String(), Reason: "map keys must be strings"}
		}
		if rv.IsNil() {
			return nil, nil
		}
		key, ok := c.enter(rv)
		if !ok {
			return nil, cyclic(rv)
		}
		defer c.leave(key)
		out := make(Object, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			name := iter.Key().String()
			p, err := c.convert(iter.Value().Interface())
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", name, err)
			}
			out[name] = p
		}
		return out, nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, nil
		}
		if rv.Kind() == reflect.Slice && rv.Len() > 0 {
			key, ok := c.enter(rv)
			if !ok {
				return nil, cyclic(rv)
			}
			defer c.leave(key)
		}
		out := make(Array, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			p, err := c.convert(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = p
		}
		return out, nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return newUint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return newFloat(rv.Float())
	}

	return nil, &UnsupportedPayloadError{Type: rv.Type().String()}
}

// DecodePayload decodes a JSON document into a Payload. JSON null decodes
// to a nil Payload.
func DecodePayload(data []byte) (Payload, error) {
	var v any
	if err := exactJSON.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return NewPayload(v)
}
