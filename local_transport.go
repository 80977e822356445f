package pushbridge

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Tap30/pushbridge-go/adapters"
)

// LocalTransport connects a Facade to a Plugin in the same process. Arguments
// and results go through the bridge codec so both ends see the same shapes a
// remote host would.
type LocalTransport struct {
	plugin *Plugin

	mu     sync.RWMutex
	closed bool
}

var _ TransportAdapter = (*LocalTransport)(nil)

// NewLocalTransport creates a transport executing commands on plugin.
func NewLocalTransport(plugin *Plugin) *LocalTransport {
	return &LocalTransport{plugin: plugin}
}

// Exec runs action on the plugin synchronously. Results of long-lived
// commands keep flowing to handler until the call is released or the
// transport is closed.
func (t *LocalTransport) Exec(ctx context.Context, action string, args []any, handler ResultHandler) (func(), error) {
	if t.isClosed() {
		return nil, ErrTransportClosed
	}

	decoded, err := roundTripArgs(args)
	if err != nil {
		return nil, err
	}

	var released atomic.Bool
	cb := CallbackFunc(func(result PluginResult) error {
		if released.Load() || t.isClosed() {
			return ErrTransportClosed
		}
		encoded, err := adapters.EncodeResult(result)
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		handler(encoded)
		return nil
	})

	t.plugin.Execute(ctx, action, decoded, cb)
	return func() { released.Store(true) }, nil
}

func (t *LocalTransport) isClosed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.closed
}

// Close detaches every open callback. Events dispatched afterwards stay in
// the broker until a new listener registers.
func (t *LocalTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

func roundTripArgs(args []any) (Args, error) {
	if len(args) == 0 {
		return Args{}, nil
	}
	data, err := adapters.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode arguments: %w", err)
	}
	var decoded []any
	if err := adapters.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode arguments: %w", err)
	}
	return Args(decoded), nil
}
