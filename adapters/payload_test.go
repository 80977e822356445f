package adapters

import (
	stdjson "encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct{ Name string }

type alias string

func TestNewPayload(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Payload
	}{
		{"nil", nil, nil},
		{"bool", true, Bool(true)},
		{"string", "hi", String("hi")},
		{"named string", alias("hi"), String("hi")},
		{"int", 42, Int(42)},
		{"int8", int8(-3), Int(-3)},
		{"uint32", uint32(7), Int(7)},
		{"uint64", uint64(9), Int(9)},
		{"float32", float32(0.5), Float(0.5)},
		{"whole float stays float", 2.0, Float(2)},
		{"json number int", stdjson.Number("12"), Int(12)},
		{"json number float", stdjson.Number("1.5"), Float(1.5)},
		{"payload passthrough", Int(5), Int(5)},
		{"empty map", map[string]any{}, Object{}},
		{"nested null", map[string]any{"a": nil}, Object{"a": nil}},
		{"typed map", map[string]int{"a": 1}, Object{"a": Int(1)}},
		{"slice", []any{"a", 1, 1.5}, Array{String("a"), Int(1), Float(1.5)}},
		{"typed slice", []string{"a", "b"}, Array{String("a"), String("b")}},
		{"array", [2]bool{true, false}, Array{Bool(true), Bool(false)}},
		{"nil map", map[string]any(nil), nil},
		{"nil pointer", (*int)(nil), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPayload(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewPayload_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"channel", make(chan int)},
		{"func", func() {}},
		{"struct", sample{Name: "x"}},
		{"bytes", []byte("x")},
		{"non string keys", map[int]string{1: "a"}},
		{"nan", math.NaN()},
		{"inf", math.Inf(1)},
		{"uint overflow", uint64(math.MaxUint64)},
		{"nested", map[string]any{"a": []any{make(chan int)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPayload(tt.in)
			var unsupported *UnsupportedPayloadError
			assert.ErrorAs(t, err, &unsupported)
		})
	}
}

func TestNewPayload_Copies(t *testing.T) {
	src := map[string]any{"list": []any{"a"}}
	p, err := NewPayload(src)
	require.NoError(t, err)

	src["list"].([]any)[0] = "b"
	src["extra"] = 1

	assert.Equal(t, Object{"list": Array{String("a")}}, p)
}

func TestPayload_Value(t *testing.T) {
	p := MustPayload(map[string]any{"n": 1, "f": 0.5, "l": []any{true, nil}})
	assert.Equal(t, KindObject, p.Kind())
	assert.Equal(t, map[string]any{"n": int64(1), "f": 0.5, "l": []any{true, nil}}, p.Value())
	assert.Equal(t, "object", p.Kind().String())
}

func TestFloat_MarshalJSON(t *testing.T) {
	data, err := Marshal(Array{Float(1), Float(1.25), Float(1e21)})
	require.NoError(t, err)
	assert.Equal(t, `[1.0,1.25,1e+21]`, string(data))
}

func TestDecodePayload(t *testing.T) {
	p, err := DecodePayload([]byte(`{"i":1,"f":1.0,"s":"x","n":null,"a":[]}`))
	require.NoError(t, err)
	assert.Equal(t, Object{"i": Int(1), "f": Float(1), "s": String("x"), "n": nil, "a": Array{}}, p)

	p, err = DecodePayload([]byte(`null`))
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = DecodePayload([]byte(`{`))
	assert.Error(t, err)
}

func TestMustPayload_Panics(t *testing.T) {
	assert.Panics(t, func() { MustPayload(make(chan int)) })
}

func TestNewPayload_Cyclic(t *testing.T) {
	selfMap := map[string]any{}
	selfMap["self"] = selfMap

	selfSlice := []any{nil}
	selfSlice[0] = selfSlice

	selfObject := Object{}
	selfObject["self"] = selfObject

	indirect := map[string]any{}
	indirect["list"] = []any{map[string]any{"back": indirect}}

	selfPointer := new(any)
	*selfPointer = selfPointer

	tests := map[string]any{
		"map":      selfMap,
		"slice":    selfSlice,
		"object":   selfObject,
		"indirect": indirect,
		"pointer":  selfPointer,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewPayload(in)
			var unsupported *UnsupportedPayloadError
			require.ErrorAs(t, err, &unsupported)
			assert.Equal(t, "cyclic value", unsupported.Reason)
		})
	}
}

func TestNewPayload_SharedValueIsNotCyclic(t *testing.T) {
	shared := map[string]any{"id": "1"}
	p, err := NewPayload(map[string]any{"a": shared, "b": []any{shared, shared}})
	require.NoError(t, err)

	want := Object{"id": String("1")}
	assert.Equal(t, Object{"a": want, "b": Array{want, want}}, p)
}
