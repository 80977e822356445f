package platform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Tap30/pushbridge-go/adapters"
)

type dispatch struct {
	name    adapters.EventName
	payload any
}

type recordingDispatcher struct {
	calls []dispatch
	err   error
}

func (d *recordingDispatcher) Dispatch(name adapters.EventName, payload any) error {
	if d.err != nil {
		return d.err
	}
	d.calls = append(d.calls, dispatch{name, payload})
	return nil
}

type brokenModel struct{}

func (brokenModel) ToJSON() (map[string]any, error) {
	return nil, errors.New("cannot serialise")
}

func TestEmit(t *testing.T) {
	d := &recordingDispatcher{}

	ok := Emit(d, adapters.NewNoOpLoggerAdapter(), adapters.EventNotificationOpened, Value("x"))

	assert.True(t, ok)
	assert.Equal(t, []dispatch{{adapters.EventNotificationOpened, "x"}}, d.calls)
}

func TestEmit_BuildFailure(t *testing.T) {
	d := &recordingDispatcher{}

	ok := Emit(d, adapters.NewNoOpLoggerAdapter(), adapters.EventNotificationOpened, func() (any, error) {
		return ModelJSON(brokenModel{})
	})

	assert.False(t, ok)
	assert.Empty(t, d.calls)
}

func TestEmit_DispatchFailure(t *testing.T) {
	d := &recordingDispatcher{err: adapters.ErrUnknownEvent}
	assert.False(t, Emit(d, adapters.NewNoOpLoggerAdapter(), "bogus", Value(nil)))
}

func TestModelJSON(t *testing.T) {
	v, err := ModelJSON(nil)
	assert.NoError(t, err)
	assert.Nil(t, v)

	v, err = ModelJSON(JSONModel{"id": "n1"})
	assert.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "n1"}, v)
}

type pointerModel struct{ id string }

func (m *pointerModel) ToJSON() (map[string]any, error) {
	return map[string]any{"id": m.id}, nil
}

func TestModelJSON_NilInsideInterface(t *testing.T) {
	var p *pointerModel
	v, err := ModelJSON(p)
	assert.NoError(t, err)
	assert.Nil(t, v)

	var m JSONModel
	v, err = ModelJSON(m)
	assert.NoError(t, err)
	assert.Nil(t, v)

	out, err := Fields(map[string]Model{"action": p})
	assert.NoError(t, err)
	assert.Equal(t, map[string]any{"action": nil}, out)
}

func TestStringKeys(t *testing.T) {
	out := StringKeys(map[any]any{"aps": map[string]any{"badge": 1}, 7: "dropped"})
	assert.Equal(t, map[string]any{"aps": map[string]any{"badge": 1}}, out)
}

func TestFields(t *testing.T) {
	out, err := Fields(map[string]Model{"notification": JSONModel{"id": "n1"}, "action": nil})
	assert.NoError(t, err)
	assert.Equal(t, map[string]any{"notification": map[string]any{"id": "n1"}, "action": nil}, out)

	_, err = Fields(map[string]Model{"action": brokenModel{}})
	assert.Error(t, err)
}
